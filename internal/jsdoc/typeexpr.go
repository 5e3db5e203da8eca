package jsdoc

import (
	"fmt"
	"strings"
)

const typeExprPunct = "_$.|?!=*:,<>(){}[]'\"-&;/ \t"

// CheckType validates the syntax of a type expression (the text between
// the braces). It returns an empty string when the expression is well
// formed, otherwise a short description of the first problem.
func CheckType(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "empty type expression"
	}

	var stack []byte
	pairs := map[byte]byte{')': '(', '>': '<', ']': '[', '}': '{'}
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '(' || c == '<' || c == '[' || c == '{':
			stack = append(stack, c)
		case c == '>' && i > 0 && expr[i-1] == '=':
			// arrow in "(x) => y"
		case c == ')' || c == '>' || c == ']' || c == '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return fmt.Sprintf("unbalanced %q", c)
			}
			stack = stack[:len(stack)-1]
		case c == '\'' || c == '"':
			closing := strings.IndexByte(expr[i+1:], c)
			if closing < 0 {
				return "unterminated string literal"
			}
			i += closing + 1
		case isWordByte(c) || c >= 0x80 || strings.IndexByte(typeExprPunct, c) >= 0:
		default:
			return fmt.Sprintf("unexpected character %q", c)
		}
	}
	if len(stack) > 0 {
		return fmt.Sprintf("unclosed %q", stack[len(stack)-1])
	}

	compact := strings.Join(strings.Fields(expr), "")
	if strings.HasPrefix(compact, "|") || strings.HasSuffix(compact, "|") ||
		strings.Contains(compact, "||") || strings.Contains(compact, "(|") || strings.Contains(compact, "|)") {
		return "dangling '|' in union"
	}
	return ""
}

// TypeRef is an occurrence of a type name inside a type expression.
type TypeRef struct {
	Name string
	// Offset is the byte offset of Name within the expression.
	Offset int
}

// UnmarkedTypeNames returns object type names (an upper-case initial and
// at least three characters, e.g. "Node" or "WebInspector.View") that are
// not preceded by an explicit nullability marker ('!' or '?'), a ':' (as
// in "this:" / "new:") or a '.' (a property of another name).
func UnmarkedTypeNames(expr string) []TypeRef {
	var out []TypeRef
	for i := 0; i < len(expr); {
		c := expr[i]
		if !isNameByte(c) {
			i++
			continue
		}
		j := i
		for j < len(expr) && isNameByte(expr[j]) {
			j++
		}
		run := strings.TrimRight(expr[i:j], ".")
		if isObjectTypeName(run) && !markedBefore(expr, i) {
			out = append(out, TypeRef{Name: run, Offset: i})
		}
		i = j
	}
	return out
}

// MisplacedNullability returns the offset of a '?' or '!' written after a
// type ("Foo?" or "Foo!=") instead of before it, or -1.
func MisplacedNullability(expr string) int {
	trimmed := strings.TrimRight(expr, " \t")
	trimmed = strings.TrimSuffix(trimmed, "=")
	if len(trimmed) < 2 {
		return -1
	}
	last := trimmed[len(trimmed)-1]
	if last != '?' && last != '!' {
		return -1
	}
	before := strings.TrimRight(trimmed[:len(trimmed)-1], " \t")
	if before == "" {
		return -1
	}
	return len(trimmed) - 1
}

func isNameByte(c byte) bool {
	return isWordByte(c) || c == '$' || c == '.'
}

func isObjectTypeName(s string) bool {
	if len(s) < 3 || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '.') {
			return false
		}
	}
	return true
}

func markedBefore(expr string, i int) bool {
	if i == 0 {
		return false
	}
	switch expr[i-1] {
	case '!', '?', ':', '.':
		return true
	}
	return false
}
