// Package jsdoc finds the documentation comment that precedes a syntax
// node and parses its tags. Type expressions are checked for syntax only;
// they are never resolved.
package jsdoc

import (
	"strings"

	"github.com/mvp-joe/doclint/internal/source"
)

// TagKind identifies a recognized tag.
type TagKind uint8

const (
	TagOther TagKind = iota
	TagParam
	TagReturn
	TagConstructor
	TagInterface
	TagThis
	TagType
	TagEnum
	TagExtends
	TagImplements
	TagOverride
	TagInheritDoc
	TagAbstract
)

var tagKinds = map[string]TagKind{
	"param":       TagParam,
	"arg":         TagParam,
	"argument":    TagParam,
	"return":      TagReturn,
	"returns":     TagReturn,
	"constructor": TagConstructor,
	"interface":   TagInterface,
	"this":        TagThis,
	"type":        TagType,
	"enum":        TagEnum,
	"extends":     TagExtends,
	"augments":    TagExtends,
	"implements":  TagImplements,
	"override":    TagOverride,
	"inheritdoc":  TagInheritDoc,
	"abstract":    TagAbstract,
}

// KindOf maps a tag word (without '@') to its kind.
func KindOf(name string) TagKind {
	if k, ok := tagKinds[strings.ToLower(name)]; ok {
		return k
	}
	return TagOther
}

var tagNames = [...]string{
	TagOther:       "other",
	TagParam:       "param",
	TagReturn:      "return",
	TagConstructor: "constructor",
	TagInterface:   "interface",
	TagThis:        "this",
	TagType:        "type",
	TagEnum:        "enum",
	TagExtends:     "extends",
	TagImplements:  "implements",
	TagOverride:    "override",
	TagInheritDoc:  "inheritDoc",
	TagAbstract:    "abstract",
}

func (k TagKind) String() string {
	if int(k) < len(tagNames) {
		return tagNames[k]
	}
	return "other"
}

// TypeChecked reports whether type expressions of this tag kind are
// subject to nullability checks.
func (k TagKind) TypeChecked() bool {
	switch k {
	case TagParam, TagReturn, TagType, TagEnum:
		return true
	}
	return false
}

// Tag is one parsed block tag.
type Tag struct {
	Kind TagKind
	// Name is the tag word as written, without '@'.
	Name string
	// Type is the raw type expression without braces.
	Type    string
	HasType bool
	// ParamName is set for param tags.
	ParamName string
	// Raw is the tag text after the tag word, continuation lines included.
	Raw     string
	Pos     source.Position
	TypePos source.Position
}

// ProblemKind classifies malformed documentation.
type ProblemKind uint8

const (
	ProblemMalformedType ProblemKind = iota
	ProblemMalformedTag
)

func (k ProblemKind) String() string {
	if k == ProblemMalformedType {
		return "malformed type"
	}
	return "malformed tag"
}

// Problem is a syntax problem found while parsing a comment.
type Problem struct {
	Kind    ProblemKind
	Pos     source.Position
	Message string
}

// Comment is a parsed documentation comment.
type Comment struct {
	// Start and End are byte offsets of "/**" and just past "*/".
	Start, End int
	Pos        source.Position
	Tags       []Tag
	Problems   []Problem
}

// Has reports whether the comment carries a tag of the given kind.
func (c *Comment) Has(kind TagKind) bool {
	_, ok := c.Tag(kind)
	return ok
}

// Tag returns the first tag of the given kind.
func (c *Comment) Tag(kind TagKind) (Tag, bool) {
	for _, t := range c.Tags {
		if t.Kind == kind {
			return t, true
		}
	}
	return Tag{}, false
}

// TagsOf returns every tag of the given kind in order.
func (c *Comment) TagsOf(kind TagKind) []Tag {
	var out []Tag
	for _, t := range c.Tags {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}
