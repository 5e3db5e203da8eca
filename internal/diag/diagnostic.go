// Package diag holds the diagnostic model: severities, individual
// diagnostics, the per-file Reporter and the aggregated multi-file Report.
package diag

import (
	"fmt"

	"github.com/mvp-joe/doclint/internal/source"
)

// Diagnostic is a single reported issue. It is a value: once created it is
// copied around, never updated in place.
type Diagnostic struct {
	Severity Severity
	Rule     string
	Message  string
	Pos      source.Position
}

// New creates a diagnostic.
func New(sev Severity, rule string, pos source.Position, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Rule:     rule,
		Message:  msg,
		Pos:      pos,
	}
}

// Newf creates a diagnostic with a formatted message.
func Newf(sev Severity, rule string, pos source.Position, format string, args ...any) Diagnostic {
	return New(sev, rule, pos, fmt.Sprintf(format, args...))
}

// String renders the diagnostic as "file:line:col: severity: message [rule]".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.Pos, d.Severity, d.Message, d.Rule)
}

// less orders diagnostics by position, then rule identifier.
func less(a, b Diagnostic) bool {
	if a.Pos.File != b.Pos.File {
		return a.Pos.File < b.Pos.File
	}
	if a.Pos.Line != b.Pos.Line {
		return a.Pos.Line < b.Pos.Line
	}
	if a.Pos.Column != b.Pos.Column {
		return a.Pos.Column < b.Pos.Column
	}
	return a.Rule < b.Rule
}
