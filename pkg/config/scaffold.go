package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// scaffold mirrors Config with yaml tags so `cfops init` can emit a starter
// file whose keys match what Load expects.
type scaffold struct {
	Contentful struct {
		Token             string  `yaml:"token"`
		SpaceID           string  `yaml:"space_id"`
		EnvironmentID     string  `yaml:"environment_id"`
		BaseURL           string  `yaml:"base_url"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"contentful"`
	Pager struct {
		PageSize    int `yaml:"page_size"`
		PageDelayMS int `yaml:"page_delay_ms"`
	} `yaml:"pager"`
	Retry struct {
		MaxAttempts int `yaml:"max_attempts"`
		BaseDelayMS int `yaml:"base_delay_ms"`
		MaxDelayMS  int `yaml:"max_delay_ms"`
	} `yaml:"retry"`
	Report struct {
		Dir string `yaml:"dir"`
	} `yaml:"report"`
	LogLevel string `yaml:"log_level"`
}

// Scaffold renders a starter .cfops.yaml with documented defaults. The token
// is intentionally left blank; it belongs in the environment, not on disk.
func Scaffold(spaceID, envID string) ([]byte, error) {
	var s scaffold
	s.Contentful.SpaceID = spaceID
	s.Contentful.EnvironmentID = envID
	s.Contentful.BaseURL = "https://api.contentful.com"
	s.Contentful.TimeoutSeconds = 30
	s.Contentful.RequestsPerSecond = 7.0
	s.Pager.PageSize = 100
	s.Pager.PageDelayMS = 200
	s.Retry.MaxAttempts = 5
	s.Retry.BaseDelayMS = 1000
	s.Retry.MaxDelayMS = 30000
	s.Report.Dir = "reports"
	s.LogLevel = "info"

	body, err := yaml.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("failed to render config scaffold: %w", err)
	}

	header := "# cfops configuration. Token is read from CONTENTFUL_MANAGEMENT_TOKEN;\n" +
		"# avoid committing it here.\n"
	return append([]byte(header), body...), nil
}
