package ast

import "strings"

type Expr interface {
	Node
	exprNode()
}

type (
	// Path is a dotted sequence of identifiers.  Head is nil for a plain
	// path like "p.address.city" and holds the leading expression for paths
	// like "value(m).name" or "p.phones['home'].number".
	Path struct {
		Kind  string `json:"kind" unpack:""`
		Head  Expr   `json:"head"`
		Parts []*ID  `json:"parts"`
		Loc   `json:"loc"`
	}
	// Literal carries the literal's token text.  Type is one of "string",
	// "character", "integer", "long", "big_integer", "hex", "octal",
	// "float", "double", "big_decimal", "boolean", "null", "date", "time"
	// or "timestamp".
	Literal struct {
		Kind string `json:"kind" unpack:""`
		Type string `json:"type"`
		Text string `json:"text"`
		Loc  `json:"loc"`
	}
	NamedParam struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Loc  `json:"loc"`
	}
	// PositionalParam holds the text following "?", which is empty for a
	// bare question mark.
	PositionalParam struct {
		Kind     string `json:"kind" unpack:""`
		Position string `json:"position"`
		Loc      `json:"loc"`
	}
	// A BinaryExpr is any expression of the form "lhs op rhs" including
	// arithmetic (+, -, *, /, %), concatenation (||), comparisons
	// (=, <>, !=, <, <=, >, >=) and logical operators (and, or).
	BinaryExpr struct {
		Kind string `json:"kind" unpack:""`
		Op   string `json:"op"`
		LHS  Expr   `json:"lhs"`
		RHS  Expr   `json:"rhs"`
		Loc  `json:"loc"`
	}
	UnaryExpr struct {
		Kind    string `json:"kind" unpack:""`
		Op      string `json:"op"` // "-", "+" or "not"
		Operand Expr   `json:"operand"`
		Loc     `json:"loc"`
	}
	BetweenExpr struct {
		Kind  string `json:"kind" unpack:""`
		Not   bool   `json:"not"`
		Expr  Expr   `json:"expr"`
		Lower Expr   `json:"lower"`
		Upper Expr   `json:"upper"`
		Loc   `json:"loc"`
	}
	// InExpr has either a List or a Subquery.
	InExpr struct {
		Kind     string     `json:"kind" unpack:""`
		Not      bool       `json:"not"`
		Expr     Expr       `json:"expr"`
		List     []Expr     `json:"list"`
		Subquery *QuerySpec `json:"subquery"`
		Loc      `json:"loc"`
	}
	LikeExpr struct {
		Kind    string `json:"kind" unpack:""`
		Not     bool   `json:"not"`
		Expr    Expr   `json:"expr"`
		Pattern Expr   `json:"pattern"`
		Escape  Expr   `json:"escape"`
		Loc     `json:"loc"`
	}
	IsNullExpr struct {
		Kind string `json:"kind" unpack:""`
		Not  bool   `json:"not"`
		Expr Expr   `json:"expr"`
		Loc  `json:"loc"`
	}
	IsEmptyExpr struct {
		Kind string `json:"kind" unpack:""`
		Not  bool   `json:"not"`
		Expr Expr   `json:"expr"`
		Loc  `json:"loc"`
	}
	MemberOfExpr struct {
		Kind       string `json:"kind" unpack:""`
		Not        bool   `json:"not"`
		Expr       Expr   `json:"expr"`
		Collection *Path  `json:"collection"`
		Loc        `json:"loc"`
	}
	ExistsExpr struct {
		Kind     string     `json:"kind" unpack:""`
		Not      bool       `json:"not"`
		Subquery *QuerySpec `json:"subquery"`
		Loc      `json:"loc"`
	}
	// CaseExpr is a simple case when Expr is set and a searched case
	// otherwise.
	CaseExpr struct {
		Kind  string  `json:"kind" unpack:""`
		Expr  Expr    `json:"expr"`
		Whens []*When `json:"whens"`
		Else  Expr    `json:"else"`
		Loc   `json:"loc"`
	}
	When struct {
		Kind string `json:"kind" unpack:""`
		Cond Expr   `json:"cond"`
		Then Expr   `json:"then"`
		Loc  `json:"loc"`
	}
	// CallExpr is any function-call syntax, including aggregates,
	// coalesce and nullif, collection functions like key() and
	// elements(), and the standard "function('name', args...)" form.
	CallExpr struct {
		Kind     string `json:"kind" unpack:""`
		Name     string `json:"name"`
		Distinct bool   `json:"distinct"`
		Star     bool   `json:"star"`
		Args     []Expr `json:"args"`
		Loc      `json:"loc"`
	}
	TrimExpr struct {
		Kind string `json:"kind" unpack:""`
		Spec string `json:"spec"` // "leading", "trailing", "both" or empty
		Char Expr   `json:"char"`
		Expr Expr   `json:"expr"`
		Loc  `json:"loc"`
	}
	CastExpr struct {
		Kind string `json:"kind" unpack:""`
		Expr Expr   `json:"expr"`
		Type string `json:"type"`
		Loc  `json:"loc"`
	}
	SubqueryExpr struct {
		Kind  string     `json:"kind" unpack:""`
		Query *QuerySpec `json:"query"`
		Loc   `json:"loc"`
	}
	// NewExpr is dynamic instantiation.  Target is a class name or one of
	// "list" and "map".
	NewExpr struct {
		Kind   string        `json:"kind" unpack:""`
		Target string        `json:"target"`
		Args   []*SelectItem `json:"args"`
		Loc    `json:"loc"`
	}
	// IndexExpr is "collection[index]".
	IndexExpr struct {
		Kind  string `json:"kind" unpack:""`
		Expr  Expr   `json:"expr"`
		Index Expr   `json:"index"`
		Loc   `json:"loc"`
	}
)

func (*Path) exprNode()            {}
func (*Literal) exprNode()         {}
func (*NamedParam) exprNode()      {}
func (*PositionalParam) exprNode() {}
func (*BinaryExpr) exprNode()      {}
func (*UnaryExpr) exprNode()       {}
func (*BetweenExpr) exprNode()     {}
func (*InExpr) exprNode()          {}
func (*LikeExpr) exprNode()        {}
func (*IsNullExpr) exprNode()      {}
func (*IsEmptyExpr) exprNode()     {}
func (*MemberOfExpr) exprNode()    {}
func (*ExistsExpr) exprNode()      {}
func (*CaseExpr) exprNode()        {}
func (*CallExpr) exprNode()        {}
func (*TrimExpr) exprNode()        {}
func (*CastExpr) exprNode()        {}
func (*SubqueryExpr) exprNode()    {}
func (*NewExpr) exprNode()         {}
func (*IndexExpr) exprNode()       {}

// Text returns the dotted text of a path without a head.
func (p *Path) Text() string {
	names := make([]string, 0, len(p.Parts))
	for _, id := range p.Parts {
		names = append(names, id.Name)
	}
	return strings.Join(names, ".")
}
