package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/xeipuuv/gojsonschema"

	"github.com/fulmenhq/cfops/pkg/safeio"
)

//go:embed assets/report.schema.json
var reportSchemaJSON []byte

//go:embed assets/summary.md.hbs
var summaryTemplate string

// Validate checks the serialized report against the embedded JSON schema.
// A report that fails its own schema is a bug; the write is aborted.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(reportSchemaJSON)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed to run: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("report does not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// RenderSummary renders the Markdown companion from the report.
func RenderSummary(r *Report) (string, error) {
	// Round-trip through JSON so template keys match the wire names.
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report for template: %w", err)
	}
	var ctx map[string]interface{}
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return "", fmt.Errorf("failed to build template context: %w", err)
	}

	out, err := raymond.Render(summaryTemplate, ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return out, nil
}

// Write serializes the report into dir as cfops-report-<timestamp>.json with
// a Markdown summary alongside. Returns the JSON path.
func Write(r *Report, dir string) (string, error) {
	cleanDir, err := safeio.CleanUserPath(dir)
	if err != nil {
		return "", fmt.Errorf("invalid report directory: %w", err)
	}
	if err := safeio.EnsureDir(cleanDir); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}
	if err := Validate(data); err != nil {
		return "", err
	}

	base := "cfops-report-" + r.ReportGenerated.Format("20060102-150405")
	jsonPath := filepath.Join(cleanDir, base+".json")
	if err := safeio.WriteFileContained(cleanDir, jsonPath, data); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	summary, err := RenderSummary(r)
	if err != nil {
		return "", err
	}
	mdPath := filepath.Join(cleanDir, base+".md")
	if err := safeio.WriteFileContained(cleanDir, mdPath, []byte(summary)); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	return jsonPath, nil
}
