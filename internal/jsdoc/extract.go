package jsdoc

import (
	"bytes"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/doclint/internal/parser"
	"github.com/mvp-joe/doclint/internal/source"
)

// DocBlock is a documentation comment associated with the node it
// documents. The association is made once, by the Extractor.
type DocBlock struct {
	*Comment
	node *sitter.Node
}

// Node returns the syntax node the block documents.
func (b *DocBlock) Node() *sitter.Node {
	return b.node
}

// NewDocBlock associates a parsed comment with a node.
func NewDocBlock(c *Comment, node *sitter.Node) *DocBlock {
	return &DocBlock{Comment: c, node: node}
}

// Extractor locates and parses documentation comments of one file. Parsed
// comments are cached by start offset so each comment is parsed once.
type Extractor struct {
	src   []byte
	lines *source.Lines
	cache map[int]*Comment

	// comment nodes of the tree, start offset keyed by end offset
	comments map[int]int
}

// NewExtractor creates an extractor over src. Comment boundaries are taken
// from the comment nodes under root, so comment-like text inside a comment
// ("src/*.js") or a string is never mistaken for one.
func NewExtractor(src []byte, lines *source.Lines, root *sitter.Node) *Extractor {
	e := &Extractor{
		src:      src,
		lines:    lines,
		cache:    make(map[int]*Comment),
		comments: make(map[int]int),
	}
	parser.Walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "comment" {
			return true
		}
		start, end := int(n.StartByte()), int(n.EndByte())
		for end > start && isSpace(src[end-1]) {
			end--
		}
		e.comments[end] = start
		return false
	})
	return e
}

// Extract returns the documentation block that precedes node (through its
// declaration wrappers, see Anchor), or false when there is none.
func (e *Extractor) Extract(node *sitter.Node) (*DocBlock, bool) {
	if node == nil {
		return nil, false
	}
	anchor := Anchor(node)
	c, ok := e.Before(int(anchor.StartByte()))
	if !ok {
		return nil, false
	}
	return NewDocBlock(c, node), true
}

// Before scans backward from offset, skipping whitespace and "//"
// comments. It returns the doc comment found there, or false if any other
// token (code or a plain block comment) comes first.
func (e *Extractor) Before(offset int) (*Comment, bool) {
	start, end, ok := e.precedingDoc(offset)
	if !ok {
		return nil, false
	}
	return e.parsed(start, end), true
}

// Comment parses the comment starting at offset if it is a doc comment.
// It is used for comments that do not document a function.
func (e *Extractor) Comment(offset int) (*Comment, bool) {
	if offset < 0 || offset >= len(e.src) {
		return nil, false
	}
	closing := bytes.Index(e.src[offset:], []byte("*/"))
	if closing < 0 {
		return nil, false
	}
	end := offset + closing + 2
	if !IsDocComment(e.src[offset:end]) {
		return nil, false
	}
	return e.parsed(offset, end), true
}

func (e *Extractor) parsed(start, end int) *Comment {
	if c, ok := e.cache[start]; ok {
		return c
	}
	c := Parse(e.src, start, end, e.lines)
	e.cache[start] = c
	return c
}

// IsDocComment reports whether text is a "/** ... */" comment. "/**/" and
// banners opening with "/***" are plain comments.
func IsDocComment(text []byte) bool {
	return len(text) >= 5 &&
		bytes.HasPrefix(text, []byte("/**")) &&
		!bytes.HasPrefix(text, []byte("/***")) &&
		bytes.HasSuffix(text, []byte("*/"))
}

func (e *Extractor) precedingDoc(offset int) (start, end int, ok bool) {
	i := min(offset, len(e.src))
	for {
		for i > 0 && isSpace(e.src[i-1]) {
			i--
		}
		start, isComment := e.comments[i]
		if !isComment {
			return 0, 0, false
		}
		text := e.src[start:i]
		switch {
		case bytes.HasPrefix(text, []byte("//")):
			i = start
		case IsDocComment(text):
			return start, i, true
		default:
			return 0, 0, false
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// Anchor returns the node a documentation comment is written in front of
// for n: the function or class itself, or the declaration, assignment,
// export, object property or class field that has it as its value.
func Anchor(n *sitter.Node) *sitter.Node {
	cur := n
	for {
		p := cur.Parent()
		if p == nil {
			return cur
		}
		switch p.Kind() {
		case "variable_declarator":
			if !isField(p, "value", cur) {
				return cur
			}
		case "assignment_expression":
			if !isField(p, "right", cur) {
				return cur
			}
		case "pair", "public_field_definition", "field_definition":
			if !isField(p, "value", cur) {
				return cur
			}
		case "lexical_declaration", "variable_declaration", "expression_statement", "export_statement":
		default:
			return cur
		}
		cur = p
	}
}

func isField(parent *sitter.Node, field string, child *sitter.Node) bool {
	v := parent.ChildByFieldName(field)
	return v != nil && v.StartByte() == child.StartByte() && v.EndByte() == child.EndByte()
}
