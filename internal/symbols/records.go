// Package symbols holds the per-file symbol table: immutable type and
// function records stored in an arena, and the scope tracker that creates
// them while a syntax tree is walked.
package symbols

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclint/internal/source"
)

// TypeID is a handle to a TypeRecord in an Arena. NoType means absent.
type TypeID int32

// FuncID is a handle to a FunctionRecord in an Arena. NoFunc means absent.
type FuncID int32

const (
	NoType TypeID = -1
	NoFunc FuncID = -1
)

// TypeKind distinguishes the declared kinds of types.
type TypeKind uint8

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
)

func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

// FunctionKind records the syntactic form a function was declared with.
type FunctionKind uint8

const (
	FuncDeclaration FunctionKind = iota
	FuncExpression
	FuncArrow
	FuncMethod
	FuncGenerator
)

func (k FunctionKind) String() string {
	switch k {
	case FuncDeclaration:
		return "declaration"
	case FuncExpression:
		return "expression"
	case FuncArrow:
		return "arrow"
	case FuncMethod:
		return "method"
	case FuncGenerator:
		return "generator"
	}
	return "unknown"
}

// TypeRecord describes a declared class, interface or enum. All fields are
// set when the record is created.
type TypeRecord struct {
	arena     *Arena
	id        TypeID
	name      string
	kind      TypeKind
	extends   string
	pos       source.Position
	enclosing TypeID
	function  FuncID
}

// ID returns the record's handle in its arena.
func (t *TypeRecord) ID() TypeID { return t.id }

// Name returns the declared name.
func (t *TypeRecord) Name() string { return t.name }

// Kind returns whether the type is a class, interface or enum.
func (t *TypeRecord) Kind() TypeKind { return t.kind }

// Pos returns the position of the declaration.
func (t *TypeRecord) Pos() source.Position { return t.pos }

// Extends returns the supertype name from the heritage clause or @extends,
// or "".
func (t *TypeRecord) Extends() string { return t.extends }

// EnclosingTypeID returns the type this one is nested in, or NoType.
func (t *TypeRecord) EnclosingTypeID() TypeID { return t.enclosing }

// EnclosingFuncID returns the function this type was declared in, or NoFunc.
func (t *TypeRecord) EnclosingFuncID() FuncID { return t.function }

// IsTopLevel reports whether the type is not nested in another type.
func (t *TypeRecord) IsTopLevel() bool { return t.enclosing == NoType }

// Members returns the functions declared directly in the type, in source
// order.
func (t *TypeRecord) Members() []*FunctionRecord { return t.arena.Members(t.id) }

// EnclosingType returns the type this type is nested in, or nil.
func (t *TypeRecord) EnclosingType() *TypeRecord {
	return t.arena.Type(t.enclosing)
}

// EnclosingFunction returns the function this type was declared in, or nil.
func (t *TypeRecord) EnclosingFunction() *FunctionRecord {
	return t.arena.Function(t.function)
}

// FunctionRecord describes one function declaration. All fields are set
// when the record is created; the node is only valid while the file's
// syntax tree is open.
type FunctionRecord struct {
	arena         *Arena
	id            FuncID
	node          *sitter.Node
	name          string
	kind          FunctionKind
	isConstructor bool
	returnType    string
	hasReturnType bool
	enclosingType TypeID
	enclosingFunc FuncID
	pos           source.Position

	params       []string
	returnsValue bool
	usesThis     bool
	receiver     string
	isAsync      bool
	isAbstract   bool
	emptyBody    bool
}

// ID returns the record's handle in its arena.
func (f *FunctionRecord) ID() FuncID { return f.id }

// Node returns the function's syntax node.
func (f *FunctionRecord) Node() *sitter.Node { return f.node }

// Name returns the declared or bound name, or "" for an anonymous function.
func (f *FunctionRecord) Name() string { return f.name }

// Kind returns the syntactic form of the declaration.
func (f *FunctionRecord) Kind() FunctionKind { return f.kind }

// IsConstructor reports a class constructor or a function tagged
// @constructor.
func (f *FunctionRecord) IsConstructor() bool { return f.isConstructor }

// Pos returns the position of the declaration.
func (f *FunctionRecord) Pos() source.Position { return f.pos }

// ReturnsValue reports a return with a value in the function's own body.
// An arrow with an expression body always returns a value.
func (f *FunctionRecord) ReturnsValue() bool { return f.returnsValue }

// UsesThis reports a this reference in the body, including inside nested
// arrows.
func (f *FunctionRecord) UsesThis() bool { return f.usesThis }

// Receiver returns the owning type name for methods and prototype
// assignments, or "".
func (f *FunctionRecord) Receiver() string { return f.receiver }

// IsMethod reports whether the function has a receiver.
func (f *FunctionRecord) IsMethod() bool { return f.receiver != "" }

// IsAsync reports an async function.
func (f *FunctionRecord) IsAsync() bool { return f.isAsync }

// IsAbstract reports an abstract method.
func (f *FunctionRecord) IsAbstract() bool { return f.isAbstract }

// HasEmptyBody reports a body with nothing but comments, or no body at all.
func (f *FunctionRecord) HasEmptyBody() bool { return f.emptyBody }

// EnclosingTypeID returns the innermost open type, or NoType.
func (f *FunctionRecord) EnclosingTypeID() TypeID { return f.enclosingType }

// EnclosingFuncID returns the enclosing function, or NoFunc.
func (f *FunctionRecord) EnclosingFuncID() FuncID { return f.enclosingFunc }

// Params returns the formal parameter names in declaration order.
// Destructured parameters have an empty name.
func (f *FunctionRecord) Params() []string {
	return append([]string(nil), f.params...)
}

// ReturnType returns the declared @return type and whether an annotation
// was present. An annotation of {void} is present with type "void".
func (f *FunctionRecord) ReturnType() (string, bool) {
	return f.returnType, f.hasReturnType
}

// HasReturnAnnotation reports whether a @return annotation was present.
func (f *FunctionRecord) HasReturnAnnotation() bool {
	return f.hasReturnType
}

// IsTopLevelFunction reports whether the function is not nested in another
// function. The enclosing type does not matter.
func (f *FunctionRecord) IsTopLevelFunction() bool {
	return f.enclosingFunc == NoFunc
}

// EnclosingType returns the innermost type open when the function was
// declared, or nil.
func (f *FunctionRecord) EnclosingType() *TypeRecord {
	return f.arena.Type(f.enclosingType)
}

// EnclosingFunction returns the function this one is nested in, or nil.
func (f *FunctionRecord) EnclosingFunction() *FunctionRecord {
	return f.arena.Function(f.enclosingFunc)
}
