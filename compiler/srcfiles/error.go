package srcfiles

import (
	"fmt"
	"strings"
)

// ErrorList is the error returned by List.Error.
type ErrorList []*Error

// Error joins the errors in e with newlines.
func (e ErrorList) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Unwrap gives errors.Is and errors.As access to the located errors.
func (e ErrorList) Unwrap() []error {
	var errs []error
	for _, err := range e {
		if err.Err != nil {
			errs = append(errs, err.Err)
		}
	}
	return errs
}

// Error is a message about the text between Pos and End inclusive.  End is
// negative for an error at a point.
type Error struct {
	Msg string
	Pos int
	End int
	// Err is the located error, if any.
	Err  error
	list *List
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	if e.list == nil || e.Pos < 0 {
		return e.Msg
	}
	start := e.list.Position(e.Pos)
	line := e.list.Line(e.Pos)
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.list.Name != "" {
		fmt.Fprintf(&b, " in %s", e.list.Name)
	}
	fmt.Fprintf(&b, " at line %d, column %d:\n%s\n", start.Line, start.Column, line)
	if end := e.list.Position(e.End); end.IsValid() {
		underline(&b, line, start, end)
	} else {
		point(&b, start)
	}
	return b.String()
}

// underline marks the span with tildes, stopping at the end of the first
// line when the span crosses lines.
func underline(b *strings.Builder, line string, start, end Position) {
	n := end.Column - start.Column + 1
	if start.Line != end.Line {
		n = len(line) - start.Column + 1
	}
	b.WriteString(strings.Repeat(" ", start.Column-1))
	b.WriteString(strings.Repeat("~", max(n, 1)))
}

// point marks a single column as "=== ^ ===".
func point(b *strings.Builder, start Position) {
	col := start.Column - 1
	lead := min(col, 4)
	b.WriteString(strings.Repeat(" ", col-lead))
	if lead > 0 {
		b.WriteString(strings.Repeat("=", lead-1))
		b.WriteByte(' ')
	}
	b.WriteString("^ ===")
}
