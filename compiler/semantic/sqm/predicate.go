package sqm

import (
	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/metamodel"
)

// Predicate is a boolean-valued expression usable as a where, having or
// join condition.
type Predicate interface {
	Expr
	predicateNode()
}

type (
	// Comparison is a relational predicate.  Op is one of =, <>, <, <=, >
	// or >= (!= is normalized to <>).
	Comparison struct {
		ast.Node
		Op  string
		LHS Expr
		RHS Expr
	}
	Between struct {
		ast.Node
		Not   bool
		Expr  Expr
		Lower Expr
		Upper Expr
	}
	InList struct {
		ast.Node
		Not  bool
		Expr Expr
		List []Expr
	}
	InSubquery struct {
		ast.Node
		Not      bool
		Expr     Expr
		Subquery *Subquery
	}
	// Like carries the translated regular expression of a literal
	// pattern in PatternRegexp.
	Like struct {
		ast.Node
		Not           bool
		Expr          Expr
		Pattern       Expr
		Escape        Expr
		PatternRegexp string
	}
	IsNull struct {
		ast.Node
		Not  bool
		Expr Expr
	}
	IsEmpty struct {
		ast.Node
		Not        bool
		Collection *PluralAttributeRef
	}
	MemberOf struct {
		ast.Node
		Not        bool
		Expr       Expr
		Collection *PluralAttributeRef
	}
	Exists struct {
		ast.Node
		Not      bool
		Subquery *Subquery
	}
	// Junction is a conjunction ("and") or disjunction ("or").
	Junction struct {
		ast.Node
		Op  string
		LHS Predicate
		RHS Predicate
	}
	Negated struct {
		ast.Node
		Pred Predicate
	}
	// BooleanExpr is a boolean-valued expression used as a predicate.
	BooleanExpr struct {
		ast.Node
		Expr Expr
	}
)

func (*Comparison) exprNode()  {}
func (*Between) exprNode()     {}
func (*InList) exprNode()      {}
func (*InSubquery) exprNode()  {}
func (*Like) exprNode()        {}
func (*IsNull) exprNode()      {}
func (*IsEmpty) exprNode()     {}
func (*MemberOf) exprNode()    {}
func (*Exists) exprNode()      {}
func (*Junction) exprNode()    {}
func (*Negated) exprNode()     {}
func (*BooleanExpr) exprNode() {}

func (*Comparison) predicateNode()  {}
func (*Between) predicateNode()     {}
func (*InList) predicateNode()      {}
func (*InSubquery) predicateNode()  {}
func (*Like) predicateNode()        {}
func (*IsNull) predicateNode()      {}
func (*IsEmpty) predicateNode()     {}
func (*MemberOf) predicateNode()    {}
func (*Exists) predicateNode()      {}
func (*Junction) predicateNode()    {}
func (*Negated) predicateNode()     {}
func (*BooleanExpr) predicateNode() {}

// Predicates carry no type of their own.
func (*Comparison) Type() metamodel.Type  { return nil }
func (*Between) Type() metamodel.Type     { return nil }
func (*InList) Type() metamodel.Type      { return nil }
func (*InSubquery) Type() metamodel.Type  { return nil }
func (*Like) Type() metamodel.Type        { return nil }
func (*IsNull) Type() metamodel.Type      { return nil }
func (*IsEmpty) Type() metamodel.Type     { return nil }
func (*MemberOf) Type() metamodel.Type    { return nil }
func (*Exists) Type() metamodel.Type      { return nil }
func (*Junction) Type() metamodel.Type    { return nil }
func (*Negated) Type() metamodel.Type     { return nil }
func (b *BooleanExpr) Type() metamodel.Type { return b.Expr.Type() }
