package semantic

import (
	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
)

// elementRef builds the element reference of a collection according to
// the classification of its elements.  from is nil when the collection is
// not joined.
func (a *analyzer) elementRef(n ast.Node, c *sqm.PluralAttributeRef, from *sqm.FromElement) (sqm.Ref, error) {
	switch c.Attribute.ElementClassification {
	case metamodel.Basic:
		return &sqm.BasicElementRef{Node: n, Collection: c, From: from}, nil
	case metamodel.Embeddable:
		return &sqm.EmbeddableElementRef{Node: n, Collection: c, From: from}, nil
	case metamodel.OneToMany, metamodel.ManyToMany:
		return &sqm.EntityElementRef{Node: n, Collection: c, From: from}, nil
	case metamodel.Any:
		return nil, &NotYetImplementedError{Msg: "elements of any-valued collection " + c.Attribute.Name, Loc: locOf(n)}
	}
	return nil, semanticErrorf(n, "unexpected element classification %s of collection %q", c.Attribute.ElementClassification, c.Attribute.Name)
}

// indexRef builds the index (list position or map key) reference of a
// collection according to the classification of its index.
func (a *analyzer) indexRef(n ast.Node, c *sqm.PluralAttributeRef, from *sqm.FromElement) (sqm.Ref, error) {
	if !c.Attribute.Indexed() {
		return nil, semanticErrorf(n, "%s %q is not indexed", c.Attribute.Collection, c.Attribute.Name)
	}
	switch c.Attribute.IndexClassification {
	case metamodel.Basic:
		return &sqm.BasicIndexRef{Node: n, Collection: c, From: from}, nil
	case metamodel.Embeddable:
		return &sqm.EmbeddableIndexRef{Node: n, Collection: c, From: from}, nil
	case metamodel.OneToMany, metamodel.ManyToMany:
		return &sqm.EntityIndexRef{Node: n, Collection: c, From: from}, nil
	case metamodel.Any:
		return nil, &NotYetImplementedError{Msg: "index of any-valued map " + c.Attribute.Name, Loc: locOf(n)}
	}
	return nil, semanticErrorf(n, "unexpected index classification %s of collection %q", c.Attribute.IndexClassification, c.Attribute.Name)
}

// pluralPath resolves the collection argument of key(), size(), member
// of and the like.  The alias of a collection join denotes its
// collection here and the result's Exported is that join.
func (a *analyzer) pluralPath(sc scope, e ast.Expr, what string) (*sqm.PluralAttributeRef, error) {
	p, ok := e.(*ast.Path)
	if !ok {
		return nil, semanticErrorf(e, "%s requires a collection-valued path", what)
	}
	if p.Head == nil && len(p.Parts) == 1 {
		if b := sc.query.lookup(p.Parts[0].Name); b != nil && b.from != nil {
			if plural := b.from.Plural(); plural != nil && !b.from.Implicit {
				if err := sc.resolver.checkFrom(p, b.from, sc.query); err != nil {
					return nil, err
				}
				container, err := a.fromRef(b.from.LHS, p)
				if err != nil {
					return nil, err
				}
				return &sqm.PluralAttributeRef{Node: p, Container: container, Attribute: plural, Exported: b.from}, nil
			}
		}
	}
	ref, err := a.navigablePath(sc, p)
	if err != nil {
		return nil, err
	}
	plural, ok := ref.(*sqm.PluralAttributeRef)
	if !ok {
		return nil, semanticErrorf(p, "%s requires a collection but %q is not one", what, p.Text())
	}
	return plural, nil
}

// collectionCall handles key(), value(), entry(), index() and the
// collection functions elements(), indices(), minelement(), maxelement(),
// minindex() and maxindex().
func (a *analyzer) collectionCall(sc scope, call *ast.CallExpr, name string) (sqm.Expr, error) {
	if len(call.Args) != 1 || call.Star || call.Distinct {
		return nil, semanticErrorf(call, "%s() takes a single collection argument", name)
	}
	plural, err := a.pluralPath(sc, call.Args[0], name+"()")
	if err != nil {
		return nil, err
	}
	kind := plural.Attribute.Collection
	switch name {
	case "value", "key", "entry", "index":
		switch {
		case (name == "key" || name == "entry") && kind != metamodel.Map:
			return nil, semanticErrorf(call, "%s() requires a map but %q is a %s", name, plural.Attribute.Name, kind)
		case name == "index" && kind != metamodel.List && kind != metamodel.Array:
			return nil, semanticErrorf(call, "index() requires a list but %q is a %s", plural.Attribute.Name, kind)
		}
		join, err := a.collectionJoin(sc, plural, call)
		if err != nil {
			return nil, err
		}
		switch name {
		case "value":
			return a.elementRef(call, plural, join)
		case "entry":
			return &sqm.MapEntryRef{Node: call, Collection: plural, From: join}, nil
		}
		return a.indexRef(call, plural, join)
	}
	if err := a.strict(call, CollectionFunction, "%s() is not part of the standard", name); err != nil {
		return nil, err
	}
	var arg sqm.Ref
	switch name {
	case "elements", "minelement", "maxelement":
		arg, err = a.elementRef(call, plural, nil)
	default:
		arg, err = a.indexRef(call, plural, nil)
	}
	if err != nil {
		return nil, err
	}
	return &sqm.CollectionFunction{Node: call, Name: name, Arg: arg}, nil
}

func (a *analyzer) collectionJoin(sc scope, plural *sqm.PluralAttributeRef, n ast.Node) (*sqm.FromElement, error) {
	if plural.Exported != nil {
		return plural.Exported, nil
	}
	return a.implicitJoin(sc, plural, n)
}

// indexAccess resolves "collection[index]" to the element at index.  Each
// access gets its own join restricted to the index.
func (a *analyzer) indexAccess(sc scope, e *ast.IndexExpr) (sqm.Expr, error) {
	plural, err := a.pluralPath(sc, e.Expr, "index access")
	if err != nil {
		return nil, err
	}
	if !plural.Attribute.Indexed() {
		return nil, semanticErrorf(e, "%s %q is not indexed", plural.Attribute.Collection, plural.Attribute.Name)
	}
	index, err := a.expr(sc, e.Index)
	if err != nil {
		return nil, err
	}
	imply(index, plural.Attribute.IndexType)
	collection := &sqm.PluralAttributeRef{Node: plural.Node, Container: plural.Container, Attribute: plural.Attribute}
	join, err := a.newImplicitJoin(sc, collection, e)
	if err != nil {
		return nil, err
	}
	collection.Exported = join
	key, err := a.indexRef(e, collection, join)
	if err != nil {
		return nil, err
	}
	join.On = &sqm.Comparison{Node: e, Op: "=", LHS: key, RHS: index}
	return a.elementRef(e, collection, join)
}
