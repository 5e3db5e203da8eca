package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/doclint/internal/symbols"
)

// superName reduces an extends clause to the type name it references:
// "Base<T>" -> "Base". Call expressions (mixins) reference no name.
func superName(extends string) string {
	name := strings.TrimSpace(extends)
	if i := strings.IndexAny(name, "<("); i >= 0 {
		if name[i] == '(' {
			return ""
		}
		name = strings.TrimSpace(name[:i])
	}
	return name
}

// checkExtendsCycle builds the extends graph of the types declared in one
// file. Edges are added in declaration order; the edge that would close a
// cycle is reported at the type that declares it.
func checkExtendsCycle(arena *symbols.Arena) []Finding {
	types := arena.Types()
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, t := range types {
		if t.Name() == "" {
			continue
		}
		if err := g.AddVertex(t.Name()); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil
		}
	}

	var out []Finding
	for _, t := range types {
		super := superName(t.Extends())
		if t.Name() == "" || super == "" {
			continue
		}
		if _, err := g.Vertex(super); err != nil {
			continue // declared elsewhere
		}
		err := g.AddEdge(t.Name(), super)
		if errors.Is(err, graph.ErrEdgeCreatesCycle) {
			out = append(out, Finding{
				Pos:     t.Pos(),
				Message: fmt.Sprintf("%s %s extends %s, which forms an inheritance cycle", t.Kind(), t.Name(), super),
			})
		}
	}
	return out
}
