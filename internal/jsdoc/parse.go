package jsdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mvp-joe/doclint/internal/source"
)

// Parse parses the documentation comment occupying src[start:end], which
// must begin with "/**" and end with "*/". Malformed tags are recorded as
// problems; parsing continues with the remaining tags.
func Parse(src []byte, start, end int, lines *source.Lines) *Comment {
	p := &commentParser{
		src:   src,
		lines: lines,
		c:     &Comment{Start: start, End: end, Pos: lines.Position(start)},
	}

	bodyStart, bodyEnd := start+3, end-2
	if bodyEnd < bodyStart {
		bodyEnd = bodyStart
	}
	for off := bodyStart; off <= bodyEnd; {
		lineEnd := bodyEnd
		if nl := bytes.IndexByte(src[off:bodyEnd], '\n'); nl >= 0 {
			lineEnd = off + nl
		}
		p.line(off, lineEnd)
		if lineEnd == bodyEnd {
			break
		}
		off = lineEnd + 1
	}
	return p.c
}

type commentParser struct {
	src   []byte
	lines *source.Lines
	c     *Comment
}

func (p *commentParser) line(off, end int) {
	i := skipBlank(p.src, off, end)
	if i < end && p.src[i] == '*' {
		i = skipBlank(p.src, i+1, end)
	}
	for end > i && isBlank(p.src[end-1]) {
		end--
	}
	if i >= end {
		return
	}
	if p.src[i] == '@' && i+1 < end && isWordByte(p.src[i+1]) {
		p.tag(i, end)
		return
	}
	if n := len(p.c.Tags); n > 0 {
		last := &p.c.Tags[n-1]
		last.Raw = strings.TrimSpace(last.Raw + " " + string(p.src[i:end]))
	}
}

func (p *commentParser) tag(at, end int) {
	j := at + 1
	for j < end && isWordByte(p.src[j]) {
		j++
	}
	name := string(p.src[at+1 : j])
	t := Tag{
		Kind: KindOf(name),
		Name: name,
		Raw:  strings.TrimSpace(string(p.src[j:end])),
		Pos:  p.lines.Position(at),
	}

	rest := skipBlank(p.src, j, end)
	unterminated := false
	if rest < end && p.src[rest] == '{' {
		closing := matchBrace(p.src, rest, end)
		if closing < 0 {
			unterminated = true
			t.Type = strings.TrimSpace(string(p.src[rest+1 : end]))
			t.TypePos = p.lines.Position(rest + 1)
			p.problem(ProblemMalformedType, rest, "unterminated type expression in @%s", name)
			rest = end
		} else {
			t.Type = strings.TrimSpace(string(p.src[rest+1 : closing]))
			t.HasType = true
			t.TypePos = p.lines.Position(rest + 1)
			if msg := CheckType(t.Type); msg != "" {
				p.problem(ProblemMalformedType, rest, "invalid type expression {%s} in @%s: %s", t.Type, name, msg)
			}
			rest = closing + 1
		}
	}
	tail := strings.TrimSpace(string(p.src[rest:end]))

	switch t.Kind {
	case TagParam:
		paramName, ok := parseParamName(tail)
		if !ok && !unterminated {
			p.problem(ProblemMalformedTag, at, "@%s tag is missing a parameter name", name)
		}
		t.ParamName = paramName
		if !t.HasType && !unterminated {
			p.problem(ProblemMalformedTag, at, "@%s %s is missing a type", name, paramName)
		}
	case TagReturn, TagType, TagThis:
		if !t.HasType && !unterminated {
			p.problem(ProblemMalformedTag, at, "@%s tag is missing a type", name)
		}
	case TagExtends, TagImplements:
		if !t.HasType && !unterminated {
			if fields := strings.Fields(tail); len(fields) > 0 {
				t.Type = fields[0]
				t.HasType = true
				t.TypePos = p.lines.Position(rest + strings.Index(string(p.src[rest:end]), fields[0]))
			} else {
				p.problem(ProblemMalformedTag, at, "@%s tag is missing a type", name)
			}
		}
	}

	p.c.Tags = append(p.c.Tags, t)
}

func (p *commentParser) problem(kind ProblemKind, offset int, format string, args ...any) {
	p.c.Problems = append(p.c.Problems, Problem{
		Kind:    kind,
		Pos:     p.lines.Position(offset),
		Message: fmt.Sprintf(format, args...),
	})
}

// parseParamName reads the name of a param tag: name, [name],
// [name=default], ...name or name= (optional).
func parseParamName(tail string) (string, bool) {
	if tail == "" {
		return "", false
	}
	var name string
	if strings.HasPrefix(tail, "[") {
		closing := strings.IndexByte(tail, ']')
		if closing < 0 {
			return "", false
		}
		name = tail[1:closing]
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}
	} else {
		name = strings.Fields(tail)[0]
	}
	name = strings.TrimPrefix(strings.TrimSpace(name), "...")
	name = strings.TrimSuffix(name, "=")
	if name == "" || !isIdentStart(name[0]) {
		return "", false
	}
	return name, true
}

// matchBrace returns the index of the '}' closing the '{' at open, or -1
// if it is not closed before end.
func matchBrace(src []byte, open, end int) int {
	depth := 0
	for i := open; i < end; i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func skipBlank(src []byte, i, end int) int {
	for i < end && isBlank(src[i]) {
		i++
	}
	return i
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

func isIdentStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_' || b == '$'
}
