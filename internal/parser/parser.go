// Package parser wraps tree-sitter for the JavaScript family of languages.
// JavaScript is parsed with the TSX grammar, which accepts plain JS as well
// as JSX in .js files.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/doclint/internal/source"
)

// ErrParse is returned when tree-sitter produces no tree at all.
var ErrParse = errors.New("parse failed")

// Language names a grammar.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// LanguageFor picks the grammar for a file by extension.
func LanguageFor(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx", ".jsx":
		return LangTSX
	default:
		return LangJavaScript
	}
}

func grammar(lang Language) *sitter.Language {
	if lang == LangTypeScript {
		// angle-bracket casts (<T>x) only parse without JSX
		return sitter.NewLanguage(typescript.LanguageTypescript())
	}
	return sitter.NewLanguage(typescript.LanguageTSX())
}

// Tree is a parsed file. It must be closed; nodes obtained from it are
// invalid afterwards.
type Tree struct {
	Path     string
	Language Language
	Source   []byte
	Lines    *source.Lines

	tree *sitter.Tree
}

// Parse parses src as the language implied by path.
func Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang := LanguageFor(path)

	p := sitter.NewParser()
	defer p.Close()

	if err := p.SetLanguage(grammar(lang)); err != nil {
		return nil, fmt.Errorf("failed to set %s grammar: %w", lang, err)
	}

	tree := p.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, path)
	}

	return &Tree{
		Path:     path,
		Language: lang,
		Source:   src,
		Lines:    source.NewLines(path, src),
		tree:     tree,
	}, nil
}

// Close releases the tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Root returns the root node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Text returns the source text of n.
func (t *Tree) Text(n *sitter.Node) string {
	return NodeText(n, t.Source)
}

// Offset returns the start byte offset of n.
func (t *Tree) Offset(n *sitter.Node) int {
	off, err := safecast.Conv[int](n.StartByte())
	if err != nil {
		return 0
	}
	return off
}

// Position returns the start position of n.
func (t *Tree) Position(n *sitter.Node) source.Position {
	return t.Lines.Position(t.Offset(n))
}

// FirstError returns the first ERROR or MISSING node in document order,
// or nil when the tree is clean.
func (t *Tree) FirstError() *sitter.Node {
	root := t.Root()
	if !root.HasError() {
		return nil
	}
	var found *sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}

// NodeText extracts the text content of a tree-sitter node.
func NodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// Walk recursively walks the tree and calls visit for each node. Children
// are skipped when visit returns false.
func Walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		Walk(n.Child(i), visit)
	}
}

// ChildByKind returns the first direct child of the given kind.
func ChildByKind(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// ChildrenByKind returns all direct children of the given kind.
func ChildrenByKind(n *sitter.Node, kind string) []*sitter.Node {
	var out []*sitter.Node
	if n == nil {
		return out
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

// SameNode reports whether a and b denote the same syntax node.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}
