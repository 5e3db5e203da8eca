package engine

import (
	"context"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclint/internal/diag"
	"github.com/mvp-joe/doclint/internal/jsdoc"
	"github.com/mvp-joe/doclint/internal/parser"
	"github.com/mvp-joe/doclint/internal/rules"
	"github.com/mvp-joe/doclint/internal/symbols"
)

// walker performs one depth-first traversal of one file. It owns the
// file's tracker, extractor and reporter; nothing in it outlives the run.
type walker struct {
	ctx  context.Context
	tree *parser.Tree
	src  []byte

	funcRules []rules.Rule
	docRules  []rules.Rule
	typeRules []rules.Rule

	tracker  *symbols.Tracker
	docs     *jsdoc.Extractor
	reporter *diag.Reporter
}

func newWalker(ctx context.Context, tree *parser.Tree, reg *rules.Registry) *walker {
	return &walker{
		ctx:       ctx,
		tree:      tree,
		src:       tree.Source,
		funcRules: reg.OfKind(rules.KindFunction),
		docRules:  reg.OfKind(rules.KindDoc),
		typeRules: reg.OfKind(rules.KindType),
		tracker:   symbols.NewTracker(),
		docs:      jsdoc.NewExtractor(tree.Source, tree.Lines, tree.Root()),
		reporter:  diag.NewReporter(),
	}
}

// run walks the whole tree, then runs the type rules over the arena.
func (w *walker) run() error {
	if err := w.walk(w.tree.Root()); err != nil {
		return err
	}
	if types, funcs := w.tracker.Depth(); types != 0 || funcs != 0 {
		return &symbols.ContractViolation{Msg: "scopes left open after traversal"}
	}
	for _, rule := range w.typeRules {
		w.reporter.ReportAll(rule.CheckTypes(w.tracker.Arena()))
	}
	return nil
}

func (w *walker) walk(n *sitter.Node) error {
	switch {
	case n.Kind() == "comment":
		w.comment(n)
		return nil
	case isFunction(n):
		return w.function(n)
	case isType(n):
		return w.typeDecl(n)
	case n.Kind() == "object":
		return w.object(n)
	}
	return w.children(n)
}

func (w *walker) children(n *sitter.Node) error {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			if err := w.walk(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// comment runs the doc rules on a documentation comment. Comments are
// parsed through the extractor cache, shared with function lookups.
func (w *walker) comment(n *sitter.Node) {
	c, ok := w.docs.Comment(w.tree.Offset(n))
	if !ok {
		return
	}
	block := jsdoc.NewDocBlock(c, n)
	for _, rule := range w.docRules {
		w.reporter.ReportAll(rule.CheckDoc(block))
	}
}

func (w *walker) typeDecl(n *sitter.Node) error {
	decl := symbols.TypeDecl{
		Name:    declName(n, w.src),
		Kind:    typeKinds[n.Kind()],
		Extends: superclass(n, w.src),
		Pos:     w.tree.Position(n),
	}
	if decl.Extends == "" {
		if doc, ok := w.docs.Extract(n); ok {
			decl.Extends = docExtends(doc)
		}
	}
	w.tracker.EnterType(decl)
	err := w.children(n)
	w.tracker.ExitType()
	return err
}

// object opens an enum scope for a Closure "@enum" object literal.
func (w *walker) object(n *sitter.Node) error {
	p := n.Parent()
	if p == nil || (p.Kind() != "variable_declarator" && p.Kind() != "assignment_expression") {
		return w.children(n)
	}
	doc, ok := w.docs.Extract(n)
	if !ok || !doc.Has(jsdoc.TagEnum) {
		return w.children(n)
	}
	w.tracker.EnterType(symbols.TypeDecl{
		Name: boundName(n, w.src),
		Kind: symbols.KindEnum,
		Pos:  w.tree.Position(n),
	})
	err := w.children(n)
	w.tracker.ExitType()
	return err
}

func (w *walker) function(n *sitter.Node) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	var doc *jsdoc.DocBlock
	if d, ok := w.docs.Extract(n); ok {
		doc = d
	}
	decl := w.functionDecl(n, doc)

	// Closure-style constructors and interfaces declare a type of their own.
	opensType := decl.IsConstructor && decl.Kind != symbols.FuncMethod && decl.Receiver == ""
	if opensType {
		kind := symbols.KindClass
		if doc.Has(jsdoc.TagInterface) {
			kind = symbols.KindInterface
		}
		// the type takes the binding's name; constructor-name compares it
		// with the function's own name in "var Foo = function Bar() {}"
		name := boundName(n, w.src)
		if name == "" {
			name = decl.Name
		}
		w.tracker.EnterType(symbols.TypeDecl{
			Name:    name,
			Kind:    kind,
			Extends: docExtends(doc),
			Pos:     decl.Pos,
		})
	}

	rec := w.tracker.EnterFunction(decl)
	for _, rule := range w.funcRules {
		w.reporter.ReportAll(rule.CheckFunction(rec, doc))
	}
	err := w.children(n)
	w.tracker.ExitFunction()

	if opensType {
		w.tracker.ExitType()
	}
	return err
}

func (w *walker) functionDecl(n *sitter.Node, doc *jsdoc.DocBlock) symbols.FunctionDecl {
	kind := functionKinds[n.Kind()]
	if kind == symbols.FuncMethod && hasToken(n, "*") {
		kind = symbols.FuncGenerator
	}
	facts := scanBody(n)

	decl := symbols.FunctionDecl{
		Node:         n,
		Name:         declName(n, w.src),
		Kind:         kind,
		Pos:          w.tree.Position(n),
		Params:       params(n, w.src),
		ReturnsValue: facts.returnsValue,
		UsesThis:     facts.usesThis,
		EmptyBody:    facts.empty,
		Receiver:     receiver(n, w.src),
		IsAsync:      hasToken(n, "async"),
	}

	if n.Kind() == "method_definition" && decl.Name == "constructor" {
		if class := enclosingClass(n); class != nil {
			decl.IsConstructor = true
			decl.Name = declName(class, w.src)
		}
	}

	decl.ReturnType, decl.HasReturnType = annotatedReturn(n, w.src)
	if doc != nil {
		if tag, ok := doc.Tag(jsdoc.TagReturn); ok {
			decl.ReturnType, decl.HasReturnType = tag.Type, true
		}
		if doc.Has(jsdoc.TagConstructor) || doc.Has(jsdoc.TagInterface) {
			decl.IsConstructor = true
		}
		decl.IsAbstract = doc.Has(jsdoc.TagAbstract)
	}
	return decl
}

func docExtends(doc *jsdoc.DocBlock) string {
	if doc == nil {
		return ""
	}
	tag, ok := doc.Tag(jsdoc.TagExtends)
	if !ok {
		return ""
	}
	return tag.Type
}
