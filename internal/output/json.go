package output

import (
	"encoding/json"
	"io"

	"github.com/mvp-joe/doclint/internal/diag"
)

// DiagnosticJSON is one diagnostic in the JSON report.
type DiagnosticJSON struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
}

// FailureJSON is a file whose lint run was aborted.
type FailureJSON struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// ReportJSON is the root of the JSON report.
type ReportJSON struct {
	RunID       string           `json:"run_id"`
	Files       int              `json:"files"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Failures    []FailureJSON    `json:"failures"`
}

// NewReportJSON converts a report. Empty lists are encoded as [] rather
// than null.
func NewReportJSON(report *diag.Report, runID string) ReportJSON {
	out := ReportJSON{
		RunID:       runID,
		Files:       len(report.Files) + len(report.Failures),
		Diagnostics: []DiagnosticJSON{},
		Failures:    []FailureJSON{},
	}
	for _, d := range report.Diagnostics() {
		out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
			File:     d.Pos.File,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
			Severity: d.Severity.String(),
			Rule:     d.Rule,
			Message:  d.Message,
		})
	}
	for _, f := range report.Failures {
		out.Failures = append(out.Failures, FailureJSON{File: f.Path, Error: f.Err.Error()})
	}
	return out
}

// JSON writes the report as an indented JSON document tagged with runID.
func JSON(w io.Writer, report *diag.Report, runID string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReportJSON(report, runID))
}
