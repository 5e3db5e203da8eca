package engine

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclint/internal/parser"
	"github.com/mvp-joe/doclint/internal/symbols"
)

// functionKinds maps tree-sitter node kinds to the function forms that
// open a function scope.
var functionKinds = map[string]symbols.FunctionKind{
	"function_declaration":           symbols.FuncDeclaration,
	"generator_function_declaration": symbols.FuncGenerator,
	"function_expression":            symbols.FuncExpression,
	"function":                       symbols.FuncExpression,
	"generator_function":             symbols.FuncGenerator,
	"arrow_function":                 symbols.FuncArrow,
	"method_definition":              symbols.FuncMethod,
}

// typeKinds maps tree-sitter node kinds to the declarations that open a
// type scope.
var typeKinds = map[string]symbols.TypeKind{
	"class_declaration":          symbols.KindClass,
	"abstract_class_declaration": symbols.KindClass,
	"class":                      symbols.KindClass,
	"interface_declaration":      symbols.KindInterface,
	"enum_declaration":           symbols.KindEnum,
}

func isFunction(n *sitter.Node) bool {
	_, ok := functionKinds[n.Kind()]
	return ok && n.IsNamed()
}

func isType(n *sitter.Node) bool {
	_, ok := typeKinds[n.Kind()]
	return ok && n.IsNamed()
}

// boundName returns the name a function, class or object literal is bound
// to by its parent: a declarator, an assignment target, an object key or
// a class field.
func boundName(n *sitter.Node, src []byte) string {
	p := n.Parent()
	if p == nil {
		return ""
	}
	switch p.Kind() {
	case "variable_declarator":
		if sameField(p, "value", n) {
			return parser.NodeText(p.ChildByFieldName("name"), src)
		}
	case "assignment_expression":
		if sameField(p, "right", n) {
			return parser.NodeText(p.ChildByFieldName("left"), src)
		}
	case "pair":
		if sameField(p, "value", n) {
			return keyText(p.ChildByFieldName("key"), src)
		}
	case "public_field_definition", "field_definition":
		if sameField(p, "value", n) {
			key := p.ChildByFieldName("name")
			if key == nil {
				key = p.ChildByFieldName("property")
			}
			return keyText(key, src)
		}
	}
	return ""
}

func keyText(key *sitter.Node, src []byte) string {
	text := parser.NodeText(key, src)
	if key != nil && key.Kind() == "string" {
		text = strings.Trim(text, `"'`)
	}
	return text
}

// declName returns the declared name of a function or class node, falling
// back to the name it is bound to.
func declName(n *sitter.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return keyText(name, src)
	}
	return boundName(n, src)
}

func sameField(parent *sitter.Node, field string, child *sitter.Node) bool {
	return parser.SameNode(parent.ChildByFieldName(field), child)
}

// prototypeOwner returns "X" for an assignment target "X.prototype.m".
func prototypeOwner(target string) string {
	owner, _, ok := strings.Cut(target, ".prototype.")
	if !ok {
		return ""
	}
	return owner
}

// receiver returns the name of the object a function is a method of, or
// "" when it is not a method.
func receiver(n *sitter.Node, src []byte) string {
	p := n.Parent()
	if p == nil {
		return ""
	}
	switch p.Kind() {
	case "class_body":
		return ownerName(p.Parent(), "class", src)
	case "object":
		return ownerName(p, "object", src)
	case "pair":
		if sameField(p, "value", n) {
			return ownerName(p.Parent(), "object", src)
		}
	case "public_field_definition", "field_definition":
		if sameField(p, "value", n) && p.Parent() != nil {
			return ownerName(p.Parent().Parent(), "class", src)
		}
	case "assignment_expression":
		if sameField(p, "right", n) {
			return prototypeOwner(parser.NodeText(p.ChildByFieldName("left"), src))
		}
	}
	return ""
}

func ownerName(owner *sitter.Node, fallback string, src []byte) string {
	if owner == nil {
		return fallback
	}
	if name := declName(owner, src); name != "" {
		return name
	}
	return fallback
}

// enclosingClass returns the class node whose body holds a method.
func enclosingClass(method *sitter.Node) *sitter.Node {
	body := method.Parent()
	if body == nil || body.Kind() != "class_body" {
		return nil
	}
	return body.Parent()
}

// params returns the formal parameter names in order. Destructured
// parameters are recorded as empty names; a TypeScript "this" parameter is
// not a formal.
func params(fn *sitter.Node, src []byte) []string {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return []string{parser.NodeText(single, src)}
	}
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < list.NamedChildCount(); i++ {
		name, ok := paramName(list.NamedChild(i), src)
		if ok {
			out = append(out, name)
		}
	}
	return out
}

func paramName(p *sitter.Node, src []byte) (string, bool) {
	if p == nil {
		return "", false
	}
	switch p.Kind() {
	case "comment", "this":
		return "", false
	case "identifier":
		return parser.NodeText(p, src), true
	case "required_parameter", "optional_parameter":
		pattern := p.ChildByFieldName("pattern")
		if pattern == nil {
			return "", true
		}
		return paramName(pattern, src)
	case "assignment_pattern":
		return paramName(p.ChildByFieldName("left"), src)
	case "rest_pattern":
		return paramName(parser.ChildByKind(p, "identifier"), src)
	}
	return "", true
}

// bodyFacts records what a function body does on its own behalf.
type bodyFacts struct {
	returnsValue bool
	usesThis     bool
	empty        bool
}

// scanBody inspects the body of fn. Returns inside nested functions are
// theirs; "this" inside nested arrows belongs to fn because arrows do not
// rebind it.
func scanBody(fn *sitter.Node) bodyFacts {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return bodyFacts{empty: true}
	}
	var f bodyFacts
	if body.Kind() != "statement_block" {
		f.returnsValue = true
	} else {
		f.empty = onlyComments(body)
	}
	scan(body, true, &f)
	return f
}

func scan(n *sitter.Node, own bool, f *bodyFacts) {
	switch n.Kind() {
	case "this":
		f.usesThis = true
		return
	case "return_statement":
		if own && !onlyComments(n) {
			f.returnsValue = true
		}
	case "arrow_function":
		own = false
	case "class", "class_declaration", "abstract_class_declaration":
		return
	default:
		if isFunction(n) {
			return
		}
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		scan(n.NamedChild(i), own, f)
	}
}

func onlyComments(n *sitter.Node) bool {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if n.NamedChild(i).Kind() != "comment" {
			return false
		}
	}
	return true
}

func hasToken(n *sitter.Node, token string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Kind() == token {
			return true
		}
	}
	return false
}

// annotatedReturn returns the TypeScript return type annotation of fn.
func annotatedReturn(fn *sitter.Node, src []byte) (string, bool) {
	rt := fn.ChildByFieldName("return_type")
	if rt == nil {
		return "", false
	}
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parser.NodeText(rt, src)), ":"))
	return text, text != ""
}

// superclass returns the extends clause of a class or interface.
func superclass(n *sitter.Node, src []byte) string {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		switch c.Kind() {
		case "class_heritage":
			if ext := parser.ChildByKind(c, "extends_clause"); ext != nil {
				if v := ext.ChildByFieldName("value"); v != nil {
					return parser.NodeText(v, src)
				}
				if ext.NamedChildCount() > 0 {
					return parser.NodeText(ext.NamedChild(0), src)
				}
			}
			// JavaScript grammar: class_heritage holds the expression
			if c.NamedChildCount() > 0 && c.NamedChild(0).Kind() != "implements_clause" {
				return parser.NodeText(c.NamedChild(0), src)
			}
		case "extends_type_clause":
			if c.NamedChildCount() > 0 {
				return parser.NodeText(c.NamedChild(0), src)
			}
		}
	}
	return ""
}
