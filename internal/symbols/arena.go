package symbols

// Arena owns every record built during one file run. Handles index into
// its slices; a record may only reference records created before it, so
// enclosing chains are acyclic by construction.
type Arena struct {
	types []*TypeRecord
	funcs []*FunctionRecord
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Type resolves a handle. It returns nil for NoType or out-of-range handles.
func (a *Arena) Type(id TypeID) *TypeRecord {
	if id < 0 || int(id) >= len(a.types) {
		return nil
	}
	return a.types[id]
}

// Function resolves a handle. It returns nil for NoFunc or out-of-range handles.
func (a *Arena) Function(id FuncID) *FunctionRecord {
	if id < 0 || int(id) >= len(a.funcs) {
		return nil
	}
	return a.funcs[id]
}

// Types returns all type records in creation order.
func (a *Arena) Types() []*TypeRecord {
	return append([]*TypeRecord(nil), a.types...)
}

// Functions returns all function records in creation order.
func (a *Arena) Functions() []*FunctionRecord {
	return append([]*FunctionRecord(nil), a.funcs...)
}

// Members returns the functions whose innermost enclosing type is id.
func (a *Arena) Members(id TypeID) []*FunctionRecord {
	var out []*FunctionRecord
	for _, f := range a.funcs {
		if f.enclosingType == id {
			out = append(out, f)
		}
	}
	return out
}

// TypeByName returns the first type declared with name, or nil.
func (a *Arena) TypeByName(name string) *TypeRecord {
	for _, t := range a.types {
		if t.name == name {
			return t
		}
	}
	return nil
}

func (a *Arena) addType(t *TypeRecord) *TypeRecord {
	if t.enclosing != NoType && int(t.enclosing) >= len(a.types) {
		violate("type %q references enclosing type %d that does not exist yet", t.name, t.enclosing)
	}
	t.arena = a
	t.id = TypeID(len(a.types))
	a.types = append(a.types, t)
	return t
}

func (a *Arena) addFunction(f *FunctionRecord) *FunctionRecord {
	if f.enclosingFunc != NoFunc && int(f.enclosingFunc) >= len(a.funcs) {
		violate("function %q references enclosing function %d that does not exist yet", f.name, f.enclosingFunc)
	}
	f.arena = a
	f.id = FuncID(len(a.funcs))
	a.funcs = append(a.funcs, f)
	return f
}
