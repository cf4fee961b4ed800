// Package exitcode provides standardized exit codes for cfops
package exitcode

// Exit codes for the cfops CLI
const (
	Success           = 0
	GeneralError      = 1
	ConfigError       = 2
	AuthError         = 3
	NetworkError      = 4
	RateLimitExceeded = 5
	ValidationError   = 6
	ReportError       = 7
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case RateLimitExceeded:
		return "Rate limit exceeded"
	case ValidationError:
		return "Validation error"
	case ReportError:
		return "Report write error"
	default:
		return "Unknown error"
	}
}
