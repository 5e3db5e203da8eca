package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclint/internal/diag"
	"github.com/mvp-joe/doclint/internal/jsdoc"
	"github.com/mvp-joe/doclint/internal/source"
	"github.com/mvp-joe/doclint/internal/symbols"
)

// Test Plan for rules:
// - each function rule fires on its condition and stays silent otherwise
// - constructor-return emits exactly one diagnostic per record
// - "no annotation" and "annotated void" are treated differently
// - doc rules surface parse problems and nullability issues with positions
// - extends-cycle reports the edge closing a cycle, ignoring external supers
// - Rule stamps ID and severity; Registry.Configure overrides and rejects unknown IDs

func doc(t *testing.T, text string) *jsdoc.DocBlock {
	t.Helper()
	src := []byte(text)
	c := jsdoc.Parse(src, 0, len(src), source.NewLines("a.js", src))
	return jsdoc.NewDocBlock(c, nil)
}

func fn(decl symbols.FunctionDecl) *symbols.FunctionRecord {
	decl.Node = &sitter.Node{}
	if !decl.Pos.IsValid() {
		decl.Pos = source.Position{File: "a.js", Line: 3, Column: 1}
	}
	return symbols.NewTracker().EnterFunction(decl)
}

func ids(ds []diag.Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Rule)
	}
	return out
}

func run(t *testing.T, id string, rec *symbols.FunctionRecord, d *jsdoc.DocBlock) []diag.Diagnostic {
	t.Helper()
	rule, ok := Default().Lookup(id)
	require.True(t, ok, id)
	return rule.CheckFunction(rec, d)
}

func TestMissingReturn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		decl symbols.FunctionDecl
		doc  string
		want int
	}{
		{"named without doc", symbols.FunctionDecl{Name: "foo", ReturnsValue: true}, "", 1},
		{"annotated", symbols.FunctionDecl{Name: "foo", ReturnsValue: true, ReturnType: "number", HasReturnType: true}, "/** @return {number} */", 0},
		{"no value returned", symbols.FunctionDecl{Name: "foo"}, "", 0},
		{"constructor", symbols.FunctionDecl{Name: "Foo", IsConstructor: true, ReturnsValue: true}, "", 0},
		{"anonymous undocumented", symbols.FunctionDecl{ReturnsValue: true}, "", 0},
		{"anonymous documented", symbols.FunctionDecl{ReturnsValue: true}, "/** Does things. */", 1},
		{"override", symbols.FunctionDecl{Name: "foo", ReturnsValue: true}, "/** @override */", 0},
		{"inheritDoc", symbols.FunctionDecl{Name: "foo", ReturnsValue: true}, "/** @inheritDoc */", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var d *jsdoc.DocBlock
			if tt.doc != "" {
				d = doc(t, tt.doc)
			}
			got := run(t, MissingReturn, fn(tt.decl), d)
			require.Len(t, got, tt.want)
			if tt.want == 1 {
				assert.Equal(t, MissingReturn, got[0].Rule)
				assert.Equal(t, diag.SevError, got[0].Severity)
				assert.Equal(t, 3, got[0].Pos.Line)
			}
		})
	}
}

func TestConstructorReturn(t *testing.T) {
	t.Parallel()

	d := doc(t, "/**\n * @return {void}\n */")
	ctor := fn(symbols.FunctionDecl{Name: "Bar", IsConstructor: true, ReturnType: "void", HasReturnType: true})

	got := run(t, ConstructorReturn, ctor, d)
	require.Len(t, got, 1)
	assert.Equal(t, ConstructorReturn, got[0].Rule)
	assert.Equal(t, 2, got[0].Pos.Line, "reported at the @return tag")
	assert.Contains(t, got[0].Message, "constructor Bar")

	// without a doc block the record position is used
	got = run(t, ConstructorReturn, ctor, nil)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Pos.Line)

	plain := fn(symbols.FunctionDecl{Name: "Bar", IsConstructor: true})
	assert.Empty(t, run(t, ConstructorReturn, plain, nil))

	method := fn(symbols.FunctionDecl{Name: "m", ReturnType: "void", HasReturnType: true})
	assert.Empty(t, run(t, ConstructorReturn, method, d))
}

func TestUnexpectedReturn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		decl symbols.FunctionDecl
		doc  string
		want int
	}{
		{"value declared, none returned", symbols.FunctionDecl{Name: "f"}, "/** @return {number} */", 1},
		{"value returned", symbols.FunctionDecl{Name: "f", ReturnsValue: true}, "/** @return {number} */", 0},
		{"void", symbols.FunctionDecl{Name: "f"}, "/** @return {void} */", 0},
		{"undefined", symbols.FunctionDecl{Name: "f"}, "/** @return {undefined} */", 0},
		{"abstract", symbols.FunctionDecl{Name: "f", IsAbstract: true}, "/** @return {number} */", 0},
		{"async", symbols.FunctionDecl{Name: "f", IsAsync: true}, "/** @return {!Promise} */", 0},
		{"generator", symbols.FunctionDecl{Name: "f", Kind: symbols.FuncGenerator}, "/** @return {!Iterator} */", 0},
		{"empty body", symbols.FunctionDecl{Name: "f", EmptyBody: true}, "/** @return {number} */", 0},
		{"no @return", symbols.FunctionDecl{Name: "f"}, "/** Hi. */", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := run(t, UnexpectedReturn, fn(tt.decl), doc(t, tt.doc))
			assert.Len(t, got, tt.want)
		})
	}
}

func TestAnonymousTopLevel(t *testing.T) {
	t.Parallel()

	tr := symbols.NewTracker()
	outer := tr.EnterFunction(symbols.FunctionDecl{Node: &sitter.Node{}})
	inner := tr.EnterFunction(symbols.FunctionDecl{Node: &sitter.Node{}, Kind: symbols.FuncArrow})

	got := run(t, AnonymousTopLevel, outer, nil)
	require.Len(t, got, 1)
	assert.Equal(t, diag.SevWarning, got[0].Severity)
	assert.Empty(t, run(t, AnonymousTopLevel, inner, nil), "nested functions may be anonymous")
	assert.Empty(t, run(t, AnonymousTopLevel, fn(symbols.FunctionDecl{Name: "foo"}), nil))
}

func TestConstructorName(t *testing.T) {
	t.Parallel()

	tr := symbols.NewTracker()
	tr.EnterType(symbols.TypeDecl{Name: "Bar"})
	match := tr.EnterFunction(symbols.FunctionDecl{Node: &sitter.Node{}, Name: "Bar", IsConstructor: true})
	tr.ExitFunction()
	mismatch := tr.EnterFunction(symbols.FunctionDecl{Node: &sitter.Node{}, Name: "make", IsConstructor: true})
	tr.ExitFunction()
	method := tr.EnterFunction(symbols.FunctionDecl{Node: &sitter.Node{}, Name: "make"})

	assert.Empty(t, run(t, ConstructorName, match, nil))
	got := run(t, ConstructorName, mismatch, nil)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `"make"`)
	assert.Contains(t, got[0].Message, `"Bar"`)
	assert.Empty(t, run(t, ConstructorName, method, nil))

	// a constructor without an enclosing type has nothing to match
	assert.Empty(t, run(t, ConstructorName, fn(symbols.FunctionDecl{Name: "X", IsConstructor: true}), nil))
}

func TestParamRules(t *testing.T) {
	t.Parallel()

	d := doc(t, "/**\n * @param {number} a\n * @param {!Object} opts\n * @param {string} opts.name\n * @param {number} z\n */")
	rec := fn(symbols.FunctionDecl{Name: "f", Params: []string{"a", "opts", "b"}})

	missing := run(t, MissingParam, rec, d)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "(b)")

	unknown := run(t, UnknownParam, rec, d)
	require.Len(t, unknown, 1)
	assert.Contains(t, unknown[0].Message, "@param z")
	assert.Equal(t, 5, unknown[0].Pos.Line)

	// destructured formals disable the name match
	destructured := fn(symbols.FunctionDecl{Name: "f", Params: []string{"a", ""}})
	assert.Empty(t, run(t, UnknownParam, destructured, d))

	// undocumented functions are not asked for @param
	assert.Empty(t, run(t, MissingParam, rec, nil))
	assert.Empty(t, run(t, MissingParam, rec, doc(t, "/** @override */")))
}

func TestMissingThis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		decl symbols.FunctionDecl
		doc  string
		want int
	}{
		{"plain function", symbols.FunctionDecl{Name: "f", UsesThis: true}, "", 1},
		{"annotated", symbols.FunctionDecl{Name: "f", UsesThis: true}, "/** @this {!Foo} */", 0},
		{"method", symbols.FunctionDecl{Name: "m", UsesThis: true, Receiver: "Foo"}, "", 0},
		{"constructor", symbols.FunctionDecl{Name: "Foo", UsesThis: true, IsConstructor: true}, "", 0},
		{"arrow", symbols.FunctionDecl{UsesThis: true, Kind: symbols.FuncArrow}, "", 0},
		{"no this", symbols.FunctionDecl{Name: "f"}, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var d *jsdoc.DocBlock
			if tt.doc != "" {
				d = doc(t, tt.doc)
			}
			assert.Len(t, run(t, MissingThis, fn(tt.decl), d), tt.want)
		})
	}
}

func TestDocRules(t *testing.T) {
	t.Parallel()

	reg := Default()
	check := func(id, text string) []diag.Diagnostic {
		rule, ok := reg.Lookup(id)
		require.True(t, ok)
		return rule.CheckDoc(doc(t, text))
	}

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		got := check(MalformedDoc, "/**\n * @param {number a\n * @return {}\n */")
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].Pos.Line)
		assert.Equal(t, 3, got[1].Pos.Line)
		assert.Empty(t, check(MalformedDoc, "/** @return {number} */"))
	})

	t.Run("nullability", func(t *testing.T) {
		t.Parallel()
		got := check(TypeNullability, "/** @param {Node} n */")
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Message, "Node")
		assert.Equal(t, 13, got[0].Pos.Column)

		assert.Empty(t, check(TypeNullability, "/** @param {?Node} n */"))
		assert.Empty(t, check(TypeNullability, "/** @return {!Array.<string>} */"))
		assert.Empty(t, check(TypeNullability, "/** @extends {Node} */"), "extends is not checked")
		assert.Empty(t, check(TypeNullability, "/** @param {Node n */"), "malformed types are reported once, elsewhere")
	})

	t.Run("misplaced", func(t *testing.T) {
		t.Parallel()
		got := check(MisplacedNullability, "/** @param {string?} s */")
		require.Len(t, got, 1)
		assert.Equal(t, 19, got[0].Pos.Column)
		assert.Empty(t, check(MisplacedNullability, "/** @param {?string} s */"))
		assert.Len(t, check(MisplacedNullability, "/** @param {Foo!=} s */"), 1)
	})
}

func TestExtendsCycle(t *testing.T) {
	t.Parallel()

	rule, ok := Default().Lookup(ExtendsCycle)
	require.True(t, ok)

	tr := symbols.NewTracker()
	for i, decl := range []symbols.TypeDecl{
		{Name: "A", Extends: "B"},
		{Name: "B", Extends: "C<string>"},
		{Name: "C", Extends: "A"},
		{Name: "D", Extends: "External"},
		{Name: "E", Extends: "mixin(A)"},
		{Name: "F", Extends: "F"},
	} {
		decl.Pos = source.Position{File: "a.js", Line: i + 1, Column: 1}
		tr.EnterType(decl)
		tr.ExitType()
	}

	got := rule.CheckTypes(tr.Arena())
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Pos.Line)
	assert.Contains(t, got[0].Message, "C extends A")
	assert.Equal(t, 6, got[1].Pos.Line)

	clean := symbols.NewTracker()
	clean.EnterType(symbols.TypeDecl{Name: "A"})
	clean.ExitType()
	clean.EnterType(symbols.TypeDecl{Name: "B", Extends: "A"})
	assert.Empty(t, rule.CheckTypes(clean.Arena()))
}

func TestRule_NilInputs(t *testing.T) {
	t.Parallel()

	for _, rule := range Default().Rules() {
		assert.Empty(t, rule.CheckFunction(nil, nil), rule.ID)
		assert.Empty(t, rule.CheckDoc(nil), rule.ID)
		assert.Empty(t, rule.CheckTypes(nil), rule.ID)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := Default()
	assert.Equal(t, 12, reg.Len())
	assert.Len(t, reg.OfKind(KindFunction), 8)
	assert.Len(t, reg.OfKind(KindDoc), 3)
	assert.Len(t, reg.OfKind(KindType), 1)

	configured, err := reg.Configure(map[string]string{
		MissingThis:   "off",
		MissingReturn: "Warning",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, configured.Len())
	_, ok := configured.Lookup(MissingThis)
	assert.False(t, ok)
	rule, ok := configured.Lookup(MissingReturn)
	require.True(t, ok)
	assert.Equal(t, diag.SevWarning, rule.Severity)

	// the source registry is untouched
	rule, _ = reg.Lookup(MissingReturn)
	assert.Equal(t, diag.SevError, rule.Severity)

	_, err = reg.Configure(map[string]string{"no-such-rule": "error", MissingParam: "loud"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRule)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestRegistry_Stamp(t *testing.T) {
	t.Parallel()

	rule := Rule{
		ID:       "custom",
		Severity: diag.SevInfo,
		Kind:     KindFunction,
		Function: func(fn *symbols.FunctionRecord, _ *jsdoc.DocBlock) []Finding {
			return []Finding{{Pos: fn.Pos(), Message: "seen " + fn.Name()}}
		},
	}
	reg := NewRegistry(rule)
	got := reg.Rules()[0].CheckFunction(fn(symbols.FunctionDecl{Name: "x"}), nil)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"custom"}, ids(got))
	assert.Equal(t, diag.SevInfo, got[0].Severity)
	assert.Equal(t, "seen x", got[0].Message)
}
