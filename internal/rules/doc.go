package rules

import (
	"fmt"

	"github.com/mvp-joe/doclint/internal/jsdoc"
)

func checkMalformedDoc(doc *jsdoc.DocBlock) []Finding {
	out := make([]Finding, 0, len(doc.Problems))
	for _, p := range doc.Problems {
		out = append(out, Finding{Pos: p.Pos, Message: p.Message})
	}
	return out
}

// typedTags returns the tags whose types carry nullability, skipping
// types that are already reported as malformed.
func typedTags(doc *jsdoc.DocBlock) []jsdoc.Tag {
	var out []jsdoc.Tag
	for _, tag := range doc.Tags {
		if !tag.Kind.TypeChecked() || !tag.HasType {
			continue
		}
		if jsdoc.CheckType(tag.Type) != "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}

func checkTypeNullability(doc *jsdoc.DocBlock) []Finding {
	var out []Finding
	for _, tag := range typedTags(doc) {
		for _, ref := range jsdoc.UnmarkedTypeNames(tag.Type) {
			out = append(out, Finding{
				Pos: tag.TypePos.Advance(ref.Offset),
				Message: fmt.Sprintf("type name %s in @%s must be marked nullable (?%s) or non-nullable (!%s)",
					ref.Name, tag.Name, ref.Name, ref.Name),
			})
		}
	}
	return out
}

func checkMisplacedNullability(doc *jsdoc.DocBlock) []Finding {
	var out []Finding
	for _, tag := range typedTags(doc) {
		at := jsdoc.MisplacedNullability(tag.Type)
		if at < 0 {
			continue
		}
		out = append(out, Finding{
			Pos:     tag.TypePos.Advance(at),
			Message: fmt.Sprintf("nullability marker %q in @%s {%s} belongs before the type", tag.Type[at], tag.Name, tag.Type),
		})
	}
	return out
}
