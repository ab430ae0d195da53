package sqm

import (
	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/metamodel"
)

// Expr is the interface implemented by every resolved expression.  Type
// returns the inferred type, which is nil when it is not known.
type Expr interface {
	ast.Node
	Type() metamodel.Type
	exprNode()
}

// ImpliedTypeAcceptor is implemented by expressions whose type can be
// taken from the context they appear in, like parameters and null
// literals.
type ImpliedTypeAcceptor interface {
	Expr
	SetImpliedType(metamodel.Type)
}

type LiteralKind int

const (
	StringLiteral LiteralKind = iota
	CharacterLiteral
	IntegerLiteral
	LongLiteral
	BigIntegerLiteral
	FloatLiteral
	DoubleLiteral
	BigDecimalLiteral
	BooleanLiteral
	NullLiteral
	DateLiteral
	TimeLiteral
	TimestampLiteral
)

var literalNames = [...]string{
	StringLiteral:     "string",
	CharacterLiteral:  "character",
	IntegerLiteral:    "integer",
	LongLiteral:       "long",
	BigIntegerLiteral: "big_integer",
	FloatLiteral:      "float",
	DoubleLiteral:     "double",
	BigDecimalLiteral: "big_decimal",
	BooleanLiteral:    "boolean",
	NullLiteral:       "null",
	DateLiteral:       "date",
	TimeLiteral:       "time",
	TimestampLiteral:  "timestamp",
}

func (k LiteralKind) String() string {
	return literalNames[k]
}

type (
	// Literal holds a converted literal value: string, rune, int32, int64,
	// *big.Int, float32, float64, *big.Rat, bool, time.Time or nil.
	Literal struct {
		ast.Node
		Kind     LiteralKind
		Value    any
		Text     string
		Inferred metamodel.Type
	}
	// Parameter is a named or positional parameter.  All occurrences of a
	// parameter in a statement share one Parameter.
	Parameter struct {
		ast.Node
		Name string
		// Position is zero for named parameters.
		Position int
		// AnticipatedType is nil when the parameter's type could not be
		// inferred from its context.
		AnticipatedType  metamodel.Type
		AllowMultiValued bool
	}
	BinaryArithmetic struct {
		ast.Node
		Op       metamodel.ArithmeticOperator
		LHS      Expr
		RHS      Expr
		Inferred metamodel.Type
	}
	UnaryOperation struct {
		ast.Node
		Op       string // "-" or "+"
		Operand  Expr
		Inferred metamodel.Type
	}
	Concat struct {
		ast.Node
		LHS      Expr
		RHS      Expr
		Inferred metamodel.Type
	}
	CaseWhen struct {
		When Expr
		Then Expr
	}
	CaseSimple struct {
		ast.Node
		Operand  Expr
		Whens    []CaseWhen
		Else     Expr
		Inferred metamodel.Type
	}
	CaseSearched struct {
		ast.Node
		Whens    []CaseWhen
		Else     Expr
		Inferred metamodel.Type
	}
	Coalesce struct {
		ast.Node
		Args     []Expr
		Inferred metamodel.Type
	}
	NullIf struct {
		ast.Node
		LHS      Expr
		RHS      Expr
		Inferred metamodel.Type
	}
	// AggregateFunction is avg, count, max, min or sum.  Arg is nil for
	// count(*).
	AggregateFunction struct {
		ast.Node
		Name     string
		Distinct bool
		Arg      Expr
		Inferred metamodel.Type
	}
	// Function is a scalar function.  Generic is set for the standard
	// "function('name', ...)" call syntax.
	Function struct {
		ast.Node
		Name     string
		Generic  bool
		Args     []Expr
		Inferred metamodel.Type
	}
	Trim struct {
		ast.Node
		Spec     string // "leading", "trailing" or "both"
		Char     Expr
		Expr     Expr
		Inferred metamodel.Type
	}
	Cast struct {
		ast.Node
		Expr   Expr
		Target metamodel.Type
	}
	Subquery struct {
		ast.Node
		Query    *QuerySpec
		Inferred metamodel.Type
	}
	// SelectionRef refers to a select item by its result variable.
	SelectionRef struct {
		ast.Node
		Selection *Selection
	}
	DynamicInstantiation struct {
		ast.Node
		Target InstantiationTarget
		// Class is set when Target is ClassTarget.
		Class *metamodel.Class
		Args  []*InstantiationArg
	}
	InstantiationArg struct {
		Expr  Expr
		Alias string
	}
)

type InstantiationTarget int

const (
	ClassTarget InstantiationTarget = iota
	ListTarget
	MapTarget
)

func (t InstantiationTarget) String() string {
	switch t {
	case ListTarget:
		return "list"
	case MapTarget:
		return "map"
	}
	return "class"
}

func (*Literal) exprNode()              {}
func (*Parameter) exprNode()            {}
func (*BinaryArithmetic) exprNode()     {}
func (*UnaryOperation) exprNode()       {}
func (*Concat) exprNode()               {}
func (*CaseSimple) exprNode()           {}
func (*CaseSearched) exprNode()         {}
func (*Coalesce) exprNode()             {}
func (*NullIf) exprNode()               {}
func (*AggregateFunction) exprNode()    {}
func (*Function) exprNode()             {}
func (*Trim) exprNode()                 {}
func (*Cast) exprNode()                 {}
func (*Subquery) exprNode()             {}
func (*SelectionRef) exprNode()         {}
func (*DynamicInstantiation) exprNode() {}

func (l *Literal) Type() metamodel.Type              { return l.Inferred }
func (p *Parameter) Type() metamodel.Type            { return p.AnticipatedType }
func (b *BinaryArithmetic) Type() metamodel.Type     { return b.Inferred }
func (u *UnaryOperation) Type() metamodel.Type       { return u.Inferred }
func (c *Concat) Type() metamodel.Type               { return c.Inferred }
func (c *CaseSimple) Type() metamodel.Type           { return c.Inferred }
func (c *CaseSearched) Type() metamodel.Type         { return c.Inferred }
func (c *Coalesce) Type() metamodel.Type             { return c.Inferred }
func (n *NullIf) Type() metamodel.Type               { return n.Inferred }
func (a *AggregateFunction) Type() metamodel.Type    { return a.Inferred }
func (f *Function) Type() metamodel.Type             { return f.Inferred }
func (t *Trim) Type() metamodel.Type                 { return t.Inferred }
func (c *Cast) Type() metamodel.Type                 { return c.Target }
func (s *Subquery) Type() metamodel.Type             { return s.Inferred }
func (s *SelectionRef) Type() metamodel.Type         { return s.Selection.Expr.Type() }
func (*DynamicInstantiation) Type() metamodel.Type   { return nil }

// SetImpliedType gives a null literal the type of its context.
func (l *Literal) SetImpliedType(t metamodel.Type) {
	if l.Kind == NullLiteral && l.Inferred == nil {
		l.Inferred = t
	}
}

// SetImpliedType sets the anticipated type of a parameter that does not
// have one yet.
func (p *Parameter) SetImpliedType(t metamodel.Type) {
	if p.AnticipatedType == nil {
		p.AnticipatedType = t
	}
}

// Named reports whether p is a named parameter.
func (p *Parameter) Named() bool {
	return p.Name != ""
}
