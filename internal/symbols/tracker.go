package symbols

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclint/internal/source"
)

// ContractViolation is the panic value raised when the tracker is driven
// incorrectly (popping an empty stack, entering a function without a
// node). It signals a traversal bug, not a problem in the linted source.
type ContractViolation struct {
	Msg string
}

func (v *ContractViolation) Error() string {
	return "scope tracker contract violation: " + v.Msg
}

func violate(format string, args ...any) {
	panic(&ContractViolation{Msg: fmt.Sprintf(format, args...)})
}

// TypeDecl carries the values of a type record about to be created.
type TypeDecl struct {
	Name    string
	Kind    TypeKind
	Extends string
	Pos     source.Position
}

// FunctionDecl carries the values of a function record about to be created.
type FunctionDecl struct {
	Node          *sitter.Node
	Name          string
	Kind          FunctionKind
	IsConstructor bool
	ReturnType    string
	HasReturnType bool
	Pos           source.Position

	Params       []string
	ReturnsValue bool
	UsesThis     bool
	Receiver     string
	IsAsync      bool
	IsAbstract   bool
	EmptyBody    bool
}

// Tracker keeps the stacks of currently open type and function scopes.
// Each file run owns one tracker and one arena.
type Tracker struct {
	arena *Arena
	types []TypeID
	funcs []FuncID
}

// NewTracker creates a tracker recording into a fresh arena.
func NewTracker() *Tracker {
	return &Tracker{arena: NewArena()}
}

// Arena returns the arena records are created in.
func (t *Tracker) Arena() *Arena {
	return t.arena
}

// Depth returns the number of open type and function scopes.
func (t *Tracker) Depth() (types, funcs int) {
	return len(t.types), len(t.funcs)
}

// CurrentType returns the innermost open type, or nil.
func (t *Tracker) CurrentType() *TypeRecord {
	return t.arena.Type(t.topType())
}

// CurrentFunction returns the innermost open function, or nil.
func (t *Tracker) CurrentFunction() *FunctionRecord {
	return t.arena.Function(t.topFunc())
}

// EnterType creates a type record enclosed by the current scopes and
// pushes it.
func (t *Tracker) EnterType(decl TypeDecl) *TypeRecord {
	rec := t.arena.addType(&TypeRecord{
		name:      decl.Name,
		kind:      decl.Kind,
		extends:   decl.Extends,
		pos:       decl.Pos,
		enclosing: t.topType(),
		function:  t.topFunc(),
	})
	t.types = append(t.types, rec.id)
	return rec
}

// ExitType pops the innermost type scope. It panics with a
// *ContractViolation if no type is open.
func (t *Tracker) ExitType() {
	if len(t.types) == 0 {
		violate("ExitType called with no open type")
	}
	t.types = t.types[:len(t.types)-1]
}

// EnterFunction creates a function record enclosed by the current scopes
// and pushes it. It panics with a *ContractViolation if decl.Node is nil.
func (t *Tracker) EnterFunction(decl FunctionDecl) *FunctionRecord {
	if decl.Node == nil {
		violate("EnterFunction called without a node for %q", decl.Name)
	}
	rec := t.arena.addFunction(&FunctionRecord{
		node:          decl.Node,
		name:          decl.Name,
		kind:          decl.Kind,
		isConstructor: decl.IsConstructor,
		returnType:    decl.ReturnType,
		hasReturnType: decl.HasReturnType,
		enclosingType: t.topType(),
		enclosingFunc: t.topFunc(),
		pos:           decl.Pos,
		params:        append([]string(nil), decl.Params...),
		returnsValue:  decl.ReturnsValue,
		usesThis:      decl.UsesThis,
		receiver:      decl.Receiver,
		isAsync:       decl.IsAsync,
		isAbstract:    decl.IsAbstract,
		emptyBody:     decl.EmptyBody,
	})
	t.funcs = append(t.funcs, rec.id)
	return rec
}

// ExitFunction pops the innermost function scope. It panics with a
// *ContractViolation if no function is open.
func (t *Tracker) ExitFunction() {
	if len(t.funcs) == 0 {
		violate("ExitFunction called with no open function")
	}
	t.funcs = t.funcs[:len(t.funcs)-1]
}

func (t *Tracker) topType() TypeID {
	if len(t.types) == 0 {
		return NoType
	}
	return t.types[len(t.types)-1]
}

func (t *Tracker) topFunc() FuncID {
	if len(t.funcs) == 0 {
		return NoFunc
	}
	return t.funcs[len(t.funcs)-1]
}
