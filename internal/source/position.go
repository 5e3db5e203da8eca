// Package source maps byte offsets in a source file to line/column positions.
package source

import (
	"fmt"
	"sort"
)

// Position is a location in a source file. Line and Column are 1-based;
// Column counts bytes.
type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

// IsValid reports whether the position has a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		if p.File == "" {
			return "-"
		}
		return p.File
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Before orders positions by file, then line, then column.
func (p Position) Before(other Position) bool {
	if p.File != other.File {
		return p.File < other.File
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Advance returns the position n bytes further on the same line.
func (p Position) Advance(n int) Position {
	p.Offset += n
	if p.IsValid() {
		p.Column += n
	}
	return p
}

// Lines is a line index over a single file's content.
type Lines struct {
	file   string
	starts []int // byte offset of the first byte of each line
	size   int
}

// NewLines builds the line index for content.
func NewLines(file string, content []byte) *Lines {
	starts := make([]int, 1, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Lines{file: file, starts: starts, size: len(content)}
}

// File returns the path the index was built for.
func (l *Lines) File() string {
	return l.file
}

// Count returns the number of lines.
func (l *Lines) Count() int {
	return len(l.starts)
}

// Position converts a byte offset to a Position. Offsets past the end
// clamp to the end of the file.
func (l *Lines) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > l.size {
		offset = l.size
	}
	// largest line start <= offset
	i := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	return Position{
		File:   l.file,
		Offset: offset,
		Line:   i + 1,
		Column: offset - l.starts[i] + 1,
	}
}

// LineStart returns the byte offset where 1-based line begins, or -1.
func (l *Lines) LineStart(line int) int {
	if line < 1 || line > len(l.starts) {
		return -1
	}
	return l.starts[line-1]
}
