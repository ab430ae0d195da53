package ast

// Statement is the interface implemented by the four statement nodes.
type Statement interface {
	Node
	statementNode()
}

type (
	SelectStatement struct {
		Kind  string     `json:"kind" unpack:""`
		Query *QuerySpec `json:"query"`
		Loc   `json:"loc"`
	}
	// InsertStatement is "insert into Target (fields) select ...".
	InsertStatement struct {
		Kind   string      `json:"kind" unpack:""`
		Target *EntityName `json:"target"`
		Fields []*Path     `json:"fields"`
		Query  *QuerySpec  `json:"query"`
		Loc    `json:"loc"`
	}
	UpdateStatement struct {
		Kind      string        `json:"kind" unpack:""`
		Versioned bool          `json:"versioned"`
		Target    *EntityName   `json:"target"`
		Alias     *ID           `json:"alias"`
		Set       []*Assignment `json:"set"`
		Where     Expr          `json:"where"`
		Loc       `json:"loc"`
	}
	DeleteStatement struct {
		Kind   string      `json:"kind" unpack:""`
		Target *EntityName `json:"target"`
		Alias  *ID         `json:"alias"`
		Where  Expr        `json:"where"`
		Loc    `json:"loc"`
	}
)

func (*SelectStatement) statementNode() {}
func (*InsertStatement) statementNode() {}
func (*UpdateStatement) statementNode() {}
func (*DeleteStatement) statementNode() {}

// QuerySpec is one query block.  Select is nil when the select clause was
// omitted.
type QuerySpec struct {
	Kind    string        `json:"kind" unpack:""`
	Select  *SelectClause `json:"select"`
	From    *FromClause   `json:"from"`
	Where   Expr          `json:"where"`
	GroupBy []Expr        `json:"group_by"`
	Having  Expr          `json:"having"`
	OrderBy []*SortItem   `json:"order_by"`
	Limit   Expr          `json:"limit"`
	Offset  Expr          `json:"offset"`
	Loc     `json:"loc"`
}

type (
	SelectClause struct {
		Kind     string        `json:"kind" unpack:""`
		Distinct bool          `json:"distinct"`
		Items    []*SelectItem `json:"items"`
		Loc      `json:"loc"`
	}
	SelectItem struct {
		Kind  string `json:"kind" unpack:""`
		Expr  Expr   `json:"expr"`
		Alias *ID    `json:"alias"`
		Loc   `json:"loc"`
	}
	SortItem struct {
		Kind  string `json:"kind" unpack:""`
		Expr  Expr   `json:"expr"`
		Order string `json:"order"` // "asc", "desc" or empty
		Nulls string `json:"nulls"` // "first", "last" or empty
		Loc   `json:"loc"`
	}
	Assignment struct {
		Kind string `json:"kind" unpack:""`
		LHS  *Path  `json:"lhs"`
		RHS  Expr   `json:"rhs"`
		Loc  `json:"loc"`
	}
)

// FromClause holds one FromSpace per comma-separated root.
type FromClause struct {
	Kind   string       `json:"kind" unpack:""`
	Spaces []*FromSpace `json:"spaces"`
	Loc    `json:"loc"`
}

type FromSpace struct {
	Kind  string `json:"kind" unpack:""`
	Root  *Root  `json:"root"`
	Joins []Join `json:"joins"`
	Loc   `json:"loc"`
}

type (
	Root struct {
		Kind   string      `json:"kind" unpack:""`
		Entity *EntityName `json:"entity"`
		Alias  *ID         `json:"alias"`
		Loc    `json:"loc"`
	}
	// EntityName is a possibly dotted entity or class name.
	EntityName struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Loc  `json:"loc"`
	}
	ID struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Loc  `json:"loc"`
	}
)

type Join interface {
	Node
	joinNode()
}

type (
	CrossJoin struct {
		Kind   string      `json:"kind" unpack:""`
		Entity *EntityName `json:"entity"`
		Alias  *ID         `json:"alias"`
		Loc    `json:"loc"`
	}
	// QualifiedJoin is "[inner|left [outer]|outer|right|full] join [fetch] target
	// [alias] [on predicate]".  The target is a path when it joins an
	// attribute and a single name when it joins an entity.
	QualifiedJoin struct {
		Kind   string `json:"kind" unpack:""`
		Type   string `json:"type"` // "inner", "left", "outer", "right" or "full"
		Fetch  bool   `json:"fetch"`
		Target *Path  `json:"target"`
		Alias  *ID    `json:"alias"`
		On     Expr   `json:"on"`
		Loc    `json:"loc"`
	}
)

func (*CrossJoin) joinNode()     {}
func (*QualifiedJoin) joinNode() {}
