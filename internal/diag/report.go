package diag

import (
	"sort"
	"time"
)

// FileResult is the outcome of linting one file.
type FileResult struct {
	Path        string
	Diagnostics []Diagnostic
	Functions   int
	Types       int
	Duration    time.Duration
}

// Failure records a file whose traversal was aborted. Its partial
// diagnostics are not part of the report.
type Failure struct {
	Path string
	Err  error
}

// Report aggregates per-file results of a run.
type Report struct {
	Files    []FileResult
	Failures []Failure
}

// NewReport builds a report from per-file results and failures, ordering
// both by path.
func NewReport(files []FileResult, failures []Failure) *Report {
	r := &Report{
		Files:    append([]FileResult(nil), files...),
		Failures: append([]Failure(nil), failures...),
	}
	sort.SliceStable(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	sort.SliceStable(r.Failures, func(i, j int) bool { return r.Failures[i].Path < r.Failures[j].Path })
	return r
}

// Diagnostics concatenates the per-file sequences in path order.
func (r *Report) Diagnostics() []Diagnostic {
	var n int
	for i := range r.Files {
		n += len(r.Files[i].Diagnostics)
	}
	out := make([]Diagnostic, 0, n)
	for i := range r.Files {
		out = append(out, r.Files[i].Diagnostics...)
	}
	return out
}

// Count returns the number of diagnostics at or above threshold.
func (r *Report) Count(threshold Severity) int {
	var n int
	for i := range r.Files {
		for _, d := range r.Files[i].Diagnostics {
			if d.Severity >= threshold {
				n++
			}
		}
	}
	return n
}

// Exceeds reports whether any diagnostic is at or above threshold.
func (r *Report) Exceeds(threshold Severity) bool {
	return r.Count(threshold) > 0
}

// Failed reports whether any file was aborted.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}
