package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Test Plan for the scope tracker:
// - EnterFunction captures the current type and function as enclosing context
// - IsTopLevelFunction depends only on the enclosing function, not the type
// - HasReturnAnnotation distinguishes "absent" from "annotated as void"
// - types nested in functions and functions nested in types both link correctly
// - ExitType / ExitFunction on an empty stack panic with *ContractViolation
// - EnterFunction without a node panics with *ContractViolation
// - Members are derived from the arena without mutating the type record
// - each tracker starts with a fresh arena

func node() *sitter.Node {
	return &sitter.Node{}
}

func TestTracker_EnclosingContext(t *testing.T) {
	t.Parallel()

	tr := NewTracker()

	outer := tr.EnterFunction(FunctionDecl{Node: node(), Name: "outer"})
	assert.True(t, outer.IsTopLevelFunction())
	assert.Nil(t, outer.EnclosingType())

	// class expression inside a function body
	cls := tr.EnterType(TypeDecl{Name: "Local", Kind: KindClass})
	assert.Equal(t, outer.ID(), cls.EnclosingFuncID())
	assert.True(t, cls.IsTopLevel())

	method := tr.EnterFunction(FunctionDecl{Node: node(), Name: "m", Kind: FuncMethod, Receiver: "Local"})
	assert.Equal(t, cls, method.EnclosingType())
	assert.Equal(t, outer, method.EnclosingFunction())
	assert.False(t, method.IsTopLevelFunction())

	tr.ExitFunction()
	tr.ExitType()
	tr.ExitFunction()

	types, funcs := tr.Depth()
	assert.Zero(t, types)
	assert.Zero(t, funcs)
}

func TestTracker_TopLevelIndependentOfType(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	bar := tr.EnterType(TypeDecl{Name: "Bar"})
	ctor := tr.EnterFunction(FunctionDecl{Node: node(), Name: "Bar", IsConstructor: true})

	assert.True(t, ctor.IsTopLevelFunction(), "methods of top-level classes are top-level functions")
	assert.Equal(t, bar, ctor.EnclosingType())

	tr.ExitFunction()
	tr.ExitType()
}

func TestFunctionRecord_ReturnAnnotation(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	none := tr.EnterFunction(FunctionDecl{Node: node(), Name: "a"})
	tr.ExitFunction()
	void := tr.EnterFunction(FunctionDecl{Node: node(), Name: "b", ReturnType: "void", HasReturnType: true})
	tr.ExitFunction()

	assert.False(t, none.HasReturnAnnotation())
	typ, ok := none.ReturnType()
	assert.False(t, ok)
	assert.Empty(t, typ)

	assert.True(t, void.HasReturnAnnotation())
	typ, ok = void.ReturnType()
	assert.True(t, ok)
	assert.Equal(t, "void", typ)
}

func TestTracker_ContractViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(tr *Tracker)
	}{
		{"exit type on empty stack", func(tr *Tracker) { tr.ExitType() }},
		{"exit function on empty stack", func(tr *Tracker) { tr.ExitFunction() }},
		{"enter function without node", func(tr *Tracker) { tr.EnterFunction(FunctionDecl{Name: "x"}) }},
		{"exit function while only a type is open", func(tr *Tracker) {
			tr.EnterType(TypeDecl{Name: "T"})
			tr.ExitFunction()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				r := recover()
				require.NotNil(t, r)
				v, ok := r.(*ContractViolation)
				require.True(t, ok, "panic value %T", r)
				assert.Contains(t, v.Error(), "contract violation")
			}()
			tt.fn(NewTracker())
		})
	}
}

func TestArena_MembersAndLookup(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	foo := tr.EnterType(TypeDecl{Name: "Foo", Extends: "Base"})
	tr.EnterFunction(FunctionDecl{Node: node(), Name: "Foo", IsConstructor: true})
	tr.ExitFunction()
	tr.EnterFunction(FunctionDecl{Node: node(), Name: "bar", Params: []string{"a", "b"}})
	tr.ExitFunction()
	tr.ExitType()
	free := tr.EnterFunction(FunctionDecl{Node: node(), Name: "free"})
	tr.ExitFunction()

	members := foo.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "Foo", members[0].Name())
	assert.Equal(t, "bar", members[1].Name())
	assert.Equal(t, []string{"a", "b"}, members[1].Params())
	assert.Nil(t, free.EnclosingType())

	arena := tr.Arena()
	assert.Equal(t, foo, arena.TypeByName("Foo"))
	assert.Nil(t, arena.TypeByName("Nope"))
	assert.Nil(t, arena.Type(NoType))
	assert.Nil(t, arena.Function(FuncID(42)))
	assert.Len(t, arena.Functions(), 3)
	assert.Len(t, arena.Types(), 1)
	assert.Equal(t, "Base", foo.Extends())

	assert.Empty(t, NewTracker().Arena().Functions(), "a new tracker starts with a fresh arena")
}

func TestFunctionRecord_ParamsAreCopied(t *testing.T) {
	t.Parallel()

	params := []string{"a"}
	tr := NewTracker()
	f := tr.EnterFunction(FunctionDecl{Node: node(), Name: "f", Params: params})
	params[0] = "changed"

	got := f.Params()
	got[0] = "also changed"
	assert.Equal(t, []string{"a"}, f.Params())
}
