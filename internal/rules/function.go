package rules

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/doclint/internal/jsdoc"
	"github.com/mvp-joe/doclint/internal/symbols"
)

func describe(fn *symbols.FunctionRecord) string {
	if fn.IsConstructor() {
		if fn.Name() == "" {
			return "constructor"
		}
		return fmt.Sprintf("constructor %s", fn.Name())
	}
	if fn.Name() == "" {
		return "anonymous function"
	}
	return fmt.Sprintf("function %s", fn.Name())
}

func inherited(doc *jsdoc.DocBlock) bool {
	return doc != nil && (doc.Has(jsdoc.TagOverride) || doc.Has(jsdoc.TagInheritDoc))
}

func isVoidType(t string) bool {
	switch strings.TrimSpace(t) {
	case "void", "undefined":
		return true
	}
	return false
}

func checkMissingReturn(fn *symbols.FunctionRecord, doc *jsdoc.DocBlock) []Finding {
	if fn.IsConstructor() || !fn.ReturnsValue() || fn.HasReturnAnnotation() {
		return nil
	}
	// unnamed undocumented callbacks are left alone
	if fn.Name() == "" && doc == nil {
		return nil
	}
	if inherited(doc) {
		return nil
	}
	return []Finding{{
		Pos:     fn.Pos(),
		Message: fmt.Sprintf("%s returns a value but has no @return annotation", describe(fn)),
	}}
}

func checkConstructorReturn(fn *symbols.FunctionRecord, doc *jsdoc.DocBlock) []Finding {
	if !fn.IsConstructor() || !fn.HasReturnAnnotation() {
		return nil
	}
	pos := fn.Pos()
	if doc != nil {
		if tag, ok := doc.Tag(jsdoc.TagReturn); ok {
			pos = tag.Pos
		}
	}
	return []Finding{{
		Pos:     pos,
		Message: fmt.Sprintf("%s must not declare @return", describe(fn)),
	}}
}

func checkUnexpectedReturn(fn *symbols.FunctionRecord, doc *jsdoc.DocBlock) []Finding {
	if doc == nil || fn.IsConstructor() || fn.ReturnsValue() {
		return nil
	}
	tag, ok := doc.Tag(jsdoc.TagReturn)
	if !ok || !tag.HasType || isVoidType(tag.Type) {
		return nil
	}
	if fn.IsAbstract() || fn.IsAsync() || fn.Kind() == symbols.FuncGenerator || fn.HasEmptyBody() {
		return nil
	}
	return []Finding{{
		Pos:     tag.Pos,
		Message: fmt.Sprintf("%s declares @return {%s} but never returns a value", describe(fn), tag.Type),
	}}
}

func checkAnonymousTopLevel(fn *symbols.FunctionRecord, _ *jsdoc.DocBlock) []Finding {
	if !fn.IsTopLevelFunction() || fn.Name() != "" || fn.IsConstructor() {
		return nil
	}
	return []Finding{{
		Pos:     fn.Pos(),
		Message: fmt.Sprintf("top-level function has no name (%s)", fn.Kind()),
	}}
}

func checkConstructorName(fn *symbols.FunctionRecord, _ *jsdoc.DocBlock) []Finding {
	if !fn.IsConstructor() {
		return nil
	}
	typ := fn.EnclosingType()
	if typ == nil || typ.Name() == fn.Name() {
		return nil
	}
	return []Finding{{
		Pos:     fn.Pos(),
		Message: fmt.Sprintf("constructor name %q does not match enclosing type %q", fn.Name(), typ.Name()),
	}}
}

// documentedParams maps the root of each @param name ("opts" for
// "opts.verbose") to its tag.
func documentedParams(doc *jsdoc.DocBlock) map[string]jsdoc.Tag {
	out := make(map[string]jsdoc.Tag)
	for _, tag := range doc.TagsOf(jsdoc.TagParam) {
		if tag.ParamName == "" {
			continue
		}
		root, _, _ := strings.Cut(tag.ParamName, ".")
		if _, seen := out[root]; !seen {
			out[root] = tag
		}
	}
	return out
}

func checkMissingParam(fn *symbols.FunctionRecord, doc *jsdoc.DocBlock) []Finding {
	if doc == nil || inherited(doc) || doc.Has(jsdoc.TagType) {
		return nil
	}
	documented := documentedParams(doc)
	var out []Finding
	for i, name := range fn.Params() {
		if name == "" {
			continue
		}
		if _, ok := documented[name]; ok {
			continue
		}
		out = append(out, Finding{
			Pos:     fn.Pos(),
			Message: fmt.Sprintf("parameter %d (%s) of %s has no @param", i+1, name, describe(fn)),
		})
	}
	return out
}

func checkUnknownParam(fn *symbols.FunctionRecord, doc *jsdoc.DocBlock) []Finding {
	if doc == nil {
		return nil
	}
	params := fn.Params()
	formal := make(map[string]bool, len(params))
	for _, name := range params {
		// destructured formals cannot be matched by name
		if name == "" {
			return nil
		}
		formal[name] = true
	}
	var out []Finding
	for _, tag := range doc.TagsOf(jsdoc.TagParam) {
		if tag.ParamName == "" {
			continue
		}
		root, _, _ := strings.Cut(tag.ParamName, ".")
		if formal[root] {
			continue
		}
		out = append(out, Finding{
			Pos:     tag.Pos,
			Message: fmt.Sprintf("@%s %s does not match any parameter of %s", tag.Name, tag.ParamName, describe(fn)),
		})
	}
	return out
}

func checkMissingThis(fn *symbols.FunctionRecord, doc *jsdoc.DocBlock) []Finding {
	if !fn.UsesThis() || fn.IsMethod() || fn.IsConstructor() || fn.Kind() == symbols.FuncArrow {
		return nil
	}
	if doc != nil && (doc.Has(jsdoc.TagThis) || inherited(doc)) {
		return nil
	}
	return []Finding{{
		Pos:     fn.Pos(),
		Message: fmt.Sprintf("%s references this but has no @this annotation", describe(fn)),
	}}
}
