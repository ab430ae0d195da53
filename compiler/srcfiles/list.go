// Package srcfiles maps offsets in query text to lines and columns and
// collects the errors located in that text.
package srcfiles

import (
	"sort"
)

// List is a query text and the errors found in it.
type List struct {
	// Name identifies the text in error messages when not empty.
	Name   string
	Text   string
	lines  []int
	errors ErrorList
}

// FromText returns a List holding text.
func FromText(name, text string) *List {
	lines := []int{0}
	for k := 0; k < len(text)-1; k++ {
		if text[k] == '\n' {
			lines = append(lines, k+1)
		}
	}
	return &List{Name: name, Text: text, lines: lines}
}

func (l *List) AddError(msg string, pos, end int) {
	l.errors = append(l.errors, &Error{Msg: msg, Pos: pos, End: end, list: l})
}

// Locate adds err as an error spanning pos to end.
func (l *List) Locate(err error, pos, end int) {
	l.errors = append(l.errors, &Error{Msg: err.Error(), Pos: pos, End: end, Err: err, list: l})
}

func (l *List) Error() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l.errors
}

type Position struct {
	Pos    int `json:"pos"`
	Line   int `json:"line"`   // 1-based line number.
	Column int `json:"column"` // 1-based column number.
}

func (p Position) IsValid() bool { return p.Pos >= 0 }

// Position returns the line and column of the offset pos.
func (l *List) Position(pos int) Position {
	if pos < 0 {
		return Position{-1, -1, -1}
	}
	n := l.lineIndex(pos)
	return Position{Pos: pos, Line: n + 1, Column: pos - l.lines[n] + 1}
}

// Line returns the text of the line holding pos without its newline.
func (l *List) Line(pos int) string {
	n := l.lineIndex(pos)
	end := len(l.Text)
	if n+1 < len(l.lines) {
		end = l.lines[n+1] - 1
	}
	line := l.Text[l.lines[n]:end]
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	return line
}

func (l *List) lineIndex(pos int) int {
	return sort.Search(len(l.lines), func(i int) bool { return l.lines[i] > pos }) - 1
}
