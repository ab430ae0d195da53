package parser

import (
	"errors"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/srcfiles"
	"github.com/goccy/go-json"
)

type AST struct {
	stmt  ast.Statement
	files *srcfiles.List
}

func (a *AST) Parsed() ast.Statement {
	return a.stmt
}

func (a *AST) Copy() ast.Statement {
	return ast.Copy(a.stmt)
}

// Files returns the source text of the statement or nil for a statement
// decoded from JSON without source text.
func (a *AST) Files() *srcfiles.List {
	return a.files
}

// MarshalJSON encodes the syntax tree in the form read by ParseJSON.
func (a *AST) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.stmt)
}

// ParseQuery parses a query text and tracks line numbers for error
// reporting.
func ParseQuery(query string) (*AST, error) {
	files := srcfiles.FromText("", query)
	p, err := newParser(files.Text)
	if err == nil {
		var stmt ast.Statement
		stmt, err = p.parseStatement()
		if err == nil {
			return &AST{stmt, files}, nil
		}
	}
	var perr *Error
	if !errors.As(err, &perr) {
		return nil, err
	}
	files.AddError(perr.Msg, perr.Pos, -1)
	return nil, files.Error()
}

// ParseJSON decodes a syntax tree produced by an external parser.  When
// source is not empty, it is the query text the tree's locations refer to.
func ParseJSON(b []byte, source string) (*AST, error) {
	stmt, err := ast.UnmarshalStatement(b)
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		return nil, errors.New("syntax tree is empty")
	}
	var files *srcfiles.List
	if source != "" {
		files = srcfiles.FromText("", source)
	}
	return &AST{stmt, files}, nil
}
