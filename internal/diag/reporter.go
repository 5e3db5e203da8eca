package diag

import "sort"

// Reporter collects the diagnostics of one file run. It is not safe for
// concurrent use; every file gets its own Reporter.
type Reporter struct {
	items []Diagnostic
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report appends d. Nothing is dropped or deduplicated.
func (r *Reporter) Report(d Diagnostic) {
	r.items = append(r.items, d)
}

// ReportAll appends every diagnostic in ds, in order.
func (r *Reporter) ReportAll(ds []Diagnostic) {
	r.items = append(r.items, ds...)
}

// Len returns the number of diagnostics reported so far.
func (r *Reporter) Len() int {
	return len(r.items)
}

// Finish returns the reported diagnostics sorted by (position, rule).
// Equal keys keep their reporting order. The returned slice is a copy.
func (r *Reporter) Finish() []Diagnostic {
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}
