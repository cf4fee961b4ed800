// Package report accumulates run outcomes and writes the audit artifacts: a
// schema-validated JSON report plus a rendered Markdown summary. The report
// is write-once; nothing reads it back.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/fulmenhq/cfops/internal/contentful"
)

// ValidationError records one failed write with the vendor's sub-errors.
type ValidationError struct {
	EntryID     string                   `json:"entryId"`
	ContentType string                   `json:"contentType"`
	Errors      []contentful.ErrorDetail `json:"errors"`
}

// DeletedEntry records one entry removed after the referrer-unlink pass.
type DeletedEntry struct {
	EntryID           string   `json:"entryId"`
	ContentType       string   `json:"contentType"`
	Reason            string   `json:"reason"`
	UnlinkedReferrers []string `json:"unlinkedReferrers,omitempty"`
}

// Failure records one entry whose processing was aborted and skipped.
type Failure struct {
	EntryID   string `json:"entryId"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// Summary aggregates the run's counters.
type Summary struct {
	TotalValidationErrors      int `json:"totalValidationErrors"`
	TotalDeletedEntries        int `json:"totalDeletedEntries"`
	MissingRequiredFieldErrors int `json:"missingRequiredFieldErrors"`
	EntriesProcessed           int `json:"entriesProcessed"`
	LinksRemoved               int `json:"linksRemoved"`
	EntryLinksRemoved          int `json:"entryLinksRemoved"`
	AssetLinksRemoved          int `json:"assetLinksRemoved"`
	EntriesUpdated             int `json:"entriesUpdated"`
	EntriesPublished           int `json:"entriesPublished"`
	AssetsPublished            int `json:"assetsPublished"`
	Failures                   int `json:"failures"`
}

// Report is the serialized audit artifact for one run.
type Report struct {
	ReportGenerated  time.Time         `json:"reportGenerated"`
	RunID            string            `json:"runId"`
	Command          string            `json:"command"`
	SpaceID          string            `json:"spaceId"`
	Environment      string            `json:"environment"`
	DryRun           bool              `json:"dryRun"`
	Summary          Summary           `json:"summary"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	DeletedEntries   []DeletedEntry    `json:"deletedEntries"`
	Failures         []Failure         `json:"failures,omitempty"`
}

// Builder accumulates outcomes during a run. Appended to by the single
// control flow only; no locking.
type Builder struct {
	command     string
	spaceID     string
	environment string
	dryRun      bool

	summary          Summary
	validationErrors []ValidationError
	deletedEntries   []DeletedEntry
	failures         []Failure
}

// NewBuilder starts a report for one command invocation.
func NewBuilder(command, spaceID, environment string, dryRun bool) *Builder {
	return &Builder{
		command:     command,
		spaceID:     spaceID,
		environment: environment,
		dryRun:      dryRun,
	}
}

// EntryProcessed counts one entry entering the pipeline.
func (b *Builder) EntryProcessed() {
	b.summary.EntriesProcessed++
}

// AddRemovals counts links removed from one entry.
func (b *Builder) AddRemovals(entryLinks, assetLinks int) {
	b.summary.EntryLinksRemoved += entryLinks
	b.summary.AssetLinksRemoved += assetLinks
	b.summary.LinksRemoved += entryLinks + assetLinks
}

// EntryUpdated counts one successful (or dry-run) update write.
func (b *Builder) EntryUpdated() {
	b.summary.EntriesUpdated++
}

// EntryPublished counts one successful (or dry-run) entry publish.
func (b *Builder) EntryPublished() {
	b.summary.EntriesPublished++
}

// AssetPublished counts one successful (or dry-run) asset publish.
func (b *Builder) AssetPublished() {
	b.summary.AssetsPublished++
}

// AddValidationError records a failed write. missingRequired marks the
// classifier outcome that gates the delete path.
func (b *Builder) AddValidationError(rec ValidationError, missingRequired bool) {
	b.validationErrors = append(b.validationErrors, rec)
	b.summary.TotalValidationErrors++
	if missingRequired {
		b.summary.MissingRequiredFieldErrors++
	}
}

// AddDeletedEntry records an entry deleted after unlinking its referrers.
func (b *Builder) AddDeletedEntry(rec DeletedEntry) {
	b.deletedEntries = append(b.deletedEntries, rec)
	b.summary.TotalDeletedEntries++
}

// AddFailure records an entry whose processing was aborted.
func (b *Builder) AddFailure(entryID, operation string, err error) {
	b.failures = append(b.failures, Failure{
		EntryID:   entryID,
		Operation: operation,
		Error:     err.Error(),
	})
	b.summary.Failures++
}

// Finalize stamps time and run id. The result is never mutated afterwards.
func (b *Builder) Finalize() *Report {
	r := &Report{
		ReportGenerated:  time.Now().UTC(),
		RunID:            uuid.NewString(),
		Command:          b.command,
		SpaceID:          b.spaceID,
		Environment:      b.environment,
		DryRun:           b.dryRun,
		Summary:          b.summary,
		ValidationErrors: b.validationErrors,
		DeletedEntries:   b.deletedEntries,
		Failures:         b.failures,
	}
	if r.ValidationErrors == nil {
		r.ValidationErrors = []ValidationError{}
	}
	if r.DeletedEntries == nil {
		r.DeletedEntries = []DeletedEntry{}
	}
	return r
}
