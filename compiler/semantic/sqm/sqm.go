// Package sqm is the semantic query model: the fully resolved and typed
// form of an object query produced by the semantic pass.  Every path is
// bound to a from-element, every attribute to the metamodel, and every
// expression carries its inferred type.  Nodes keep their originating AST
// node for error reporting.  The model is never serialized so there are no
// Kind fields or unpacker hooks.
package sqm

import (
	"github.com/brimdata/sqm/compiler/ast"
)

// Statement is one of SelectStatement, InsertSelectStatement,
// UpdateStatement or DeleteStatement.
type Statement interface {
	ast.Node
	Params() []*Parameter
	statementNode()
}

type (
	SelectStatement struct {
		ast.Node
		Query      *QuerySpec
		Parameters []*Parameter
	}
	InsertSelectStatement struct {
		ast.Node
		Target     *FromElement
		Fields     []*SingularAttributeRef
		Query      *QuerySpec
		Parameters []*Parameter
	}
	UpdateStatement struct {
		ast.Node
		Versioned  bool
		Root       *FromElement
		Set        []*Assignment
		Where      Predicate
		Parameters []*Parameter
	}
	DeleteStatement struct {
		ast.Node
		Root       *FromElement
		Where      Predicate
		Parameters []*Parameter
	}
)

func (*SelectStatement) statementNode()       {}
func (*InsertSelectStatement) statementNode() {}
func (*UpdateStatement) statementNode()       {}
func (*DeleteStatement) statementNode()       {}

func (s *SelectStatement) Params() []*Parameter       { return s.Parameters }
func (s *InsertSelectStatement) Params() []*Parameter { return s.Parameters }
func (s *UpdateStatement) Params() []*Parameter       { return s.Parameters }
func (s *DeleteStatement) Params() []*Parameter       { return s.Parameters }

type Assignment struct {
	ast.Node
	Target *SingularAttributeRef
	Value  Expr
}

// QuerySpec is one resolved query block, either the top level query of a
// statement or a subquery.
type QuerySpec struct {
	ast.Node
	From    *FromClause
	Select  *SelectClause
	Where   Predicate
	GroupBy []Expr
	Having  Predicate
	OrderBy []*SortSpecification
	Limit   Expr
	Offset  Expr
}

type SelectClause struct {
	Distinct   bool
	Selections []*Selection
	// Inferred is true when the query had no select clause and selects
	// its root.
	Inferred bool
}

type Selection struct {
	ast.Node
	Expr  Expr
	Alias string
}

type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (s SortOrder) String() string {
	if s == Descending {
		return "desc"
	}
	return "asc"
}

type NullPrecedence int

const (
	NullsDefault NullPrecedence = iota
	NullsFirst
	NullsLast
)

func (n NullPrecedence) String() string {
	switch n {
	case NullsFirst:
		return "nulls first"
	case NullsLast:
		return "nulls last"
	}
	return ""
}

type SortSpecification struct {
	ast.Node
	Expr  Expr
	Order SortOrder
	Nulls NullPrecedence
}
