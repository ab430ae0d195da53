package semantic

import (
	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// scope is the resolution state passed down the walk.  It is a value:
// a callee that needs a different resolver or parameter context changes
// its own copy, so nothing needs to be restored when the callee returns
// or fails.
type scope struct {
	query    *queryState
	resolver *resolver
	// multiValued is set where a parameter may be bound to a list of
	// values.
	multiValued bool
}

func (s scope) with(r *resolver) scope {
	s.resolver = r
	return s
}

func (s scope) allowMultiValued(ok bool) scope {
	s.multiValued = ok
	return s
}

// queryState is the state of one query block.  Its alias registry holds
// identification variables and result variables in a single namespace.
type queryState struct {
	parent   *queryState
	from     *sqm.FromClause
	subquery bool
	aliases  map[string]*binding
}

// A binding is an identification variable (from set) or a result
// variable (sel set).  An identification variable reused as the result
// variable of its own from-element has both.
type binding struct {
	name string
	from *sqm.FromElement
	sel  *sqm.Selection
}

func newQueryState(parent *queryState, from *sqm.FromClause, subquery bool) *queryState {
	return &queryState{
		parent:   parent,
		from:     from,
		subquery: subquery,
		aliases:  make(map[string]*binding),
	}
}

// foldAlias maps an alias to its registry key.  Aliases are matched
// without regard to case.
func foldAlias(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}

// lookup finds an alias in this query or an enclosing one.
func (q *queryState) lookup(name string) *binding {
	key := foldAlias(name)
	for s := q; s != nil; s = s.parent {
		// Result variables are not visible to nested query blocks.
		if b, ok := s.aliases[key]; ok && (s == q || b.from != nil) {
			return b
		}
	}
	return nil
}

// owns reports whether space belongs to this query block.
func (q *queryState) owns(space *sqm.FromElementSpace) bool {
	for _, s := range q.from.Spaces {
		if s == space {
			return true
		}
	}
	return false
}

// stateOf returns the query block, starting at q and moving outward, that
// owns space.
func (q *queryState) stateOf(space *sqm.FromElementSpace) *queryState {
	for s := q; s != nil; s = s.parent {
		if s.owns(space) {
			return s
		}
	}
	return nil
}

// soleRoot returns the root of a query block with a single space.
func (q *queryState) soleRoot() *sqm.FromElement {
	if len(q.from.Spaces) != 1 {
		return nil
	}
	return q.from.Spaces[0].Root
}

func (a *analyzer) registerFrom(q *queryState, f *sqm.FromElement, alias *ast.ID) error {
	key := foldAlias(f.Alias)
	if alias != nil {
		if err := a.checkReservedAlias(alias); err != nil {
			return err
		}
		if _, ok := q.aliases[key]; ok {
			return &AliasCollisionError{Alias: alias.Name, Loc: locOf(alias)}
		}
	}
	q.aliases[key] = &binding{name: f.Alias, from: f}
	return nil
}

// registerSelection defines a result variable.  Reusing an identification
// variable is allowed only for a selection of that very from-element, and
// redefining a result variable only for an equal expression.
func (a *analyzer) registerSelection(q *queryState, sel *sqm.Selection, alias *ast.ID) error {
	if err := a.checkReservedAlias(alias); err != nil {
		return err
	}
	key := foldAlias(alias.Name)
	b, ok := q.aliases[key]
	if !ok {
		q.aliases[key] = &binding{name: alias.Name, sel: sel}
		return nil
	}
	if b.sel == nil {
		if denotes(sel.Expr, b.from) {
			b.sel = sel
			return nil
		}
	} else if sameExpr(b.sel.Expr, sel.Expr) {
		return nil
	}
	return &AliasCollisionError{Alias: alias.Name, Loc: locOf(alias)}
}

// denotes reports whether e is the reference an identification variable
// stands for: the entity of a root or entity join, or the element of a
// collection join.
func denotes(e sqm.Expr, f *sqm.FromElement) bool {
	switch e := e.(type) {
	case *sqm.EntityRef:
		return e.From == f
	case *sqm.EntityElementRef:
		return e.From == f
	case *sqm.BasicElementRef:
		return e.From == f
	case *sqm.EmbeddableElementRef:
		return e.From == f
	case *sqm.SingularAttributeRef:
		// The join of an embeddable attribute.
		return e.Exported == f
	}
	return false
}

// sameExpr reports whether two references denote the same value.
func sameExpr(x, y sqm.Expr) bool {
	switch x := x.(type) {
	case *sqm.EntityRef:
		y, ok := y.(*sqm.EntityRef)
		return ok && x.From == y.From
	case *sqm.SingularAttributeRef:
		y, ok := y.(*sqm.SingularAttributeRef)
		return ok && x.Attribute == y.Attribute && sameExpr(x.Container, y.Container)
	case *sqm.PluralAttributeRef:
		y, ok := y.(*sqm.PluralAttributeRef)
		return ok && x.Attribute == y.Attribute && sameExpr(x.Container, y.Container)
	}
	return false
}
