package report

import (
	"encoding/json"
	"io"

	"github.com/leapstack-labs/varlint/pkg/lint"
)

// JSON writes a machine-readable report.
type JSON struct {
	fileOutput
}

// NewJSON returns a JSON reporter writing to path.
func NewJSON(cfg Config, path string) *JSON {
	return &JSON{fileOutput: newFileOutput(cfg, path, "JSON")}
}

// JSONReport is the document written by the JSON reporter.
type JSONReport struct {
	Tool     string        `json:"tool"`
	Version  string        `json:"version,omitempty"`
	RunID    string        `json:"run_id,omitempty"`
	Project  string        `json:"project,omitempty"`
	Variant  string        `json:"variant,omitempty"`
	Stats    JSONStats     `json:"stats"`
	Findings []JSONFinding `json:"findings"`
}

// JSONStats mirrors lint.Stats.
type JSONStats struct {
	Errors           int `json:"errors"`
	Warnings         int `json:"warnings"`
	BaselineErrors   int `json:"baseline_errors,omitempty"`
	BaselineWarnings int `json:"baseline_warnings,omitempty"`
	BaselineFixed    int `json:"baseline_fixed,omitempty"`
}

// JSONFinding is one finding.
type JSONFinding struct {
	ID          string   `json:"id"`
	Severity    string   `json:"severity"`
	Category    string   `json:"category,omitempty"`
	Message     string   `json:"message"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
	Column      int      `json:"column,omitempty"`
	Variants    []string `json:"variants,omitempty"`
	Fingerprint string   `json:"fingerprint"`
}

// Write encodes the findings.
func (j *JSON) Write(stats lint.Stats, warnings []*lint.Warning) error {
	doc := JSONReport{
		Tool:    "varlint",
		Version: j.cfg.Version,
		RunID:   j.cfg.RunID,
		Project: j.cfg.Project,
		Variant: j.cfg.Variant,
		Stats: JSONStats{
			Errors:           stats.ErrorCount,
			Warnings:         stats.WarningCount,
			BaselineErrors:   stats.BaselineErrorCount,
			BaselineWarnings: stats.BaselineWarningCount,
			BaselineFixed:    stats.BaselineFixedCount,
		},
		Findings: make([]JSONFinding, 0, len(warnings)),
	}
	for _, w := range warnings {
		f := JSONFinding{
			ID:          w.ID(),
			Severity:    w.Severity.String(),
			Message:     w.Message,
			File:        j.cfg.path(w.Location.File),
			Line:        w.Location.Line,
			Column:      w.Location.Column,
			Variants:    w.Variants,
			Fingerprint: w.Fingerprint(),
		}
		if w.Issue != nil {
			f.Category = w.Issue.Category
		}
		doc.Findings = append(doc.Findings, f)
	}
	return j.write(func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	})
}
