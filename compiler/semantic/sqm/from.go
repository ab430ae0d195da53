package sqm

import (
	"fmt"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/metamodel"
)

// FromClause holds one space per comma-separated root of a from clause.
type FromClause struct {
	Spaces []*FromElementSpace
}

// FromElementSpace is a root and the joins hanging off of it.  A join's on
// predicate may refer only to from-elements of its own space.
type FromElementSpace struct {
	Root  *FromElement
	Joins []*FromElement
}

// Elements returns the root followed by the joins.
func (s *FromElementSpace) Elements() []*FromElement {
	return append([]*FromElement{s.Root}, s.Joins...)
}

type FromElementKind int

const (
	Root FromElementKind = iota
	CrossJoin
	AttributeJoin
	EntityJoin
)

func (k FromElementKind) String() string {
	switch k {
	case Root:
		return "root"
	case CrossJoin:
		return "cross join"
	case AttributeJoin:
		return "attribute join"
	case EntityJoin:
		return "entity join"
	}
	return fmt.Sprintf("FromElementKind(%d)", int(k))
}

type JoinType int

const (
	Inner JoinType = iota
	Left
)

func (j JoinType) String() string {
	if j == Left {
		return "left"
	}
	return "inner"
}

// FromElement is one source of rows.  Each from-element is created once
// and referenced by pointer from every expression that paths through it.
type FromElement struct {
	ast.Node
	// ID is unique within a compile.
	ID   int
	Kind FromElementKind
	// Alias is the identification variable, generated when the query
	// did not name one.
	Alias         string
	ImplicitAlias bool
	// Entity is the entity bound by a root, a cross join, an entity join
	// or an attribute join to an entity.
	Entity *metamodel.EntityType
	// Attribute and LHS are set for attribute joins.
	Attribute metamodel.Attribute
	LHS       *FromElement
	// Type is the bound type: an entity, an embeddable or, for a join
	// over a basic collection, the element's basic type.
	Type     metamodel.Type
	JoinType JoinType
	Fetched  bool
	// Implicit is set for joins created by dereferencing a path.
	Implicit bool
	On       Predicate
	Space    *FromElementSpace
}

// Plural returns the plural attribute of a collection join or nil.
func (f *FromElement) Plural() *metamodel.PluralAttribute {
	p, _ := f.Attribute.(*metamodel.PluralAttribute)
	return p
}

func (f *FromElement) String() string {
	return fmt.Sprintf("%s#%d", f.Alias, f.ID)
}
