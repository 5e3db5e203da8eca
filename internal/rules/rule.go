// Package rules holds the documentation checks. A rule is a pure function
// over a symbol record, a doc comment or a file's type arena; rules never
// see each other's results and may run in any order.
package rules

import (
	"github.com/mvp-joe/doclint/internal/diag"
	"github.com/mvp-joe/doclint/internal/jsdoc"
	"github.com/mvp-joe/doclint/internal/source"
	"github.com/mvp-joe/doclint/internal/symbols"
)

// Kind selects which check a rule carries.
type Kind uint8

const (
	// KindFunction rules run once per function record.
	KindFunction Kind = iota
	// KindDoc rules run once per documentation comment.
	KindDoc
	// KindType rules run once per file over all type records.
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindDoc:
		return "doc"
	case KindType:
		return "type"
	}
	return "unknown"
}

// Finding is what a check reports; the rule stamps its ID and severity.
type Finding struct {
	Pos     source.Position
	Message string
}

// FunctionCheck inspects a function and its doc block, which may be nil.
type FunctionCheck func(fn *symbols.FunctionRecord, doc *jsdoc.DocBlock) []Finding

// DocCheck inspects one documentation comment.
type DocCheck func(doc *jsdoc.DocBlock) []Finding

// TypeCheck inspects the type records of one file.
type TypeCheck func(arena *symbols.Arena) []Finding

// Rule is one check. Exactly one of Function, Doc and Types is set,
// matching Kind.
type Rule struct {
	ID          string
	Description string
	Severity    diag.Severity
	Kind        Kind

	Function FunctionCheck
	Doc      DocCheck
	Types    TypeCheck
}

// CheckFunction runs a function rule.
func (r Rule) CheckFunction(fn *symbols.FunctionRecord, doc *jsdoc.DocBlock) []diag.Diagnostic {
	if r.Function == nil || fn == nil {
		return nil
	}
	return r.stamp(r.Function(fn, doc))
}

// CheckDoc runs a doc rule.
func (r Rule) CheckDoc(doc *jsdoc.DocBlock) []diag.Diagnostic {
	if r.Doc == nil || doc == nil {
		return nil
	}
	return r.stamp(r.Doc(doc))
}

// CheckTypes runs a type rule.
func (r Rule) CheckTypes(arena *symbols.Arena) []diag.Diagnostic {
	if r.Types == nil || arena == nil {
		return nil
	}
	return r.stamp(r.Types(arena))
}

func (r Rule) stamp(findings []Finding) []diag.Diagnostic {
	if len(findings) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, len(findings))
	for i, f := range findings {
		out[i] = diag.New(r.Severity, r.ID, f.Pos, f.Message)
	}
	return out
}
