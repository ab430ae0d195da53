package semantic

import (
	"errors"
	"strings"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
	"go.uber.org/zap"
)

// path resolves a path used as an expression.  A path whose names do not
// resolve as a navigable is tried as an entity name and then as a
// constant.  Only when all three fail is an error reported, and it names
// the whole path.  A path that resolves but is not allowed where it
// appears is reported as is.
func (a *analyzer) path(sc scope, p *ast.Path) (sqm.Expr, error) {
	e, err := a.navigablePath(sc, p)
	if err == nil {
		if plural, ok := e.(*sqm.PluralAttributeRef); ok && sc.resolver.expandsCollections() {
			return a.joinedElement(sc, plural, p)
		}
		return e, nil
	}
	var semErr *SemanticError
	if !errors.As(err, &semErr) || semErr.Text == "" || p.Head != nil {
		return nil, err
	}
	text := p.Text()
	if entity := a.ctx.model.ResolveEntity(text); entity != nil {
		return &sqm.EntityTypeLiteral{Node: p, Entity: entity}, nil
	}
	if c := a.constant(p, text); c != nil {
		return c, nil
	}
	return nil, pathError(p, text)
}

// constant resolves "Class.NAME" as an enum constant or a static field.
func (a *analyzer) constant(p *ast.Path, text string) sqm.Expr {
	dot := strings.LastIndexByte(text, '.')
	if dot < 0 {
		return nil
	}
	class, err := a.ctx.model.ClassByName(text[:dot])
	if err != nil {
		return nil
	}
	c, ok := class.Constants[text[dot+1:]]
	if !ok {
		return nil
	}
	if class.Enum {
		return &sqm.EnumConstant{Node: p, Constant: c}
	}
	return &sqm.FieldConstant{Node: p, Constant: c}
}

// navigablePath resolves a path segment by segment.  The result is a
// sqm.Ref except for a result variable referenced from the order by
// clause.
func (a *analyzer) navigablePath(sc scope, p *ast.Path) (sqm.Expr, error) {
	parts := p.Parts
	var ref sqm.Ref
	if p.Head != nil {
		head, err := a.expr(sc, p.Head)
		if err != nil {
			return nil, err
		}
		r, ok := head.(sqm.Ref)
		if !ok {
			return nil, semanticErrorf(p.Head, "expression cannot be dereferenced")
		}
		ref = r
	} else {
		first := parts[0]
		b := sc.query.lookup(first.Name)
		switch {
		case b != nil && b.from != nil:
			if err := sc.resolver.checkFrom(first, b.from, sc.query); err != nil {
				return nil, err
			}
			r, err := a.fromRef(b.from, first)
			if err != nil {
				return nil, err
			}
			ref = r
			parts = parts[1:]
		case b != nil:
			if len(parts) == 1 && sc.resolver.seesResultVariables() {
				return &sqm.SelectionRef{Node: p, Selection: b.sel}, nil
			}
			return nil, semanticErrorf(first, "result variable %q cannot be referenced here", first.Name)
		default:
			// An unqualified attribute of the only root.
			root := sc.query.soleRoot()
			if root == nil || root.Entity == nil || root.Entity.Attribute(first.Name) == nil {
				return nil, pathError(p, p.Text())
			}
			if err := sc.resolver.checkFrom(first, root, sc.query); err != nil {
				return nil, err
			}
			ref = &sqm.EntityRef{Node: first, From: root}
		}
	}
	for _, part := range parts {
		next, err := a.attribute(sc, ref, part)
		if err != nil {
			return nil, err
		}
		ref = next
	}
	return ref, nil
}

func (a *analyzer) attribute(sc scope, ref sqm.Ref, part *ast.ID) (sqm.Ref, error) {
	container, owner, err := a.dereference(sc, ref, part)
	if err != nil {
		return nil, err
	}
	attr := a.ctx.model.ResolveAttribute(owner, part.Name)
	if attr == nil {
		err := semanticErrorf(part, "could not resolve attribute %q of %s", part.Name, owner.TypeName())
		err.Text = part.Name
		return nil, err
	}
	return attributeRef(part, container, attr), nil
}

func attributeRef(n ast.Node, container sqm.Ref, attr metamodel.Attribute) sqm.Ref {
	switch attr := attr.(type) {
	case *metamodel.SingularAttribute:
		return &sqm.SingularAttributeRef{Node: n, Container: container, Attribute: attr}
	case *metamodel.PluralAttribute:
		return &sqm.PluralAttributeRef{Node: n, Container: container, Attribute: attr}
	}
	panic(attr)
}

// dereference returns the reference whose attributes are reached by a
// further path segment along with the type declaring them.  Entity-valued
// attributes are joined on first dereference.
func (a *analyzer) dereference(sc scope, ref sqm.Ref, n ast.Node) (sqm.Ref, metamodel.ManagedType, error) {
	switch r := ref.(type) {
	case *sqm.EntityRef:
		if mt, ok := r.From.Type.(metamodel.ManagedType); ok {
			return r, mt, nil
		}
		return nil, nil, semanticErrorf(n, "%s cannot be dereferenced", r.From.Alias)
	case *sqm.SingularAttributeRef:
		switch r.Attribute.Classification {
		case metamodel.Embeddable:
			return r, r.Attribute.Type.(*metamodel.EmbeddableType), nil
		case metamodel.ManyToOne, metamodel.OneToOne:
			join, err := a.implicitJoin(sc, r, n)
			if err != nil {
				return nil, nil, err
			}
			return &sqm.EntityRef{Node: n, From: join}, join.Entity, nil
		case metamodel.Any:
			return nil, nil, &NotYetImplementedError{Msg: "dereference of any-valued attribute " + r.Attribute.Name, Loc: locOf(n)}
		}
		return nil, nil, semanticErrorf(n, "basic attribute %q cannot be dereferenced", r.Attribute.Name)
	case *sqm.PluralAttributeRef:
		join, err := a.implicitJoin(sc, r, n)
		if err != nil {
			return nil, nil, err
		}
		elem, err := a.elementRef(n, r, join)
		if err != nil {
			return nil, nil, err
		}
		return a.dereference(sc, elem, n)
	case *sqm.EntityElementRef:
		if r.From != nil {
			return &sqm.EntityRef{Node: n, From: r.From}, r.From.Entity, nil
		}
	case *sqm.EmbeddableElementRef:
		if r.From != nil {
			return r, r.Collection.Attribute.ElementType.(*metamodel.EmbeddableType), nil
		}
	case *sqm.EntityIndexRef:
		if r.From != nil {
			join, err := a.indexJoin(sc, r)
			if err != nil {
				return nil, nil, err
			}
			return &sqm.EntityRef{Node: n, From: join}, join.Entity, nil
		}
	case *sqm.EmbeddableIndexRef:
		if r.From != nil {
			return r, r.Collection.Attribute.IndexType.(*metamodel.EmbeddableType), nil
		}
	}
	return nil, nil, semanticErrorf(n, "expression cannot be dereferenced")
}

// fromRef returns the reference denoted by the alias of a from-element.
func (a *analyzer) fromRef(f *sqm.FromElement, n ast.Node) (sqm.Ref, error) {
	if f.Kind != sqm.AttributeJoin || f.Implicit {
		return &sqm.EntityRef{Node: n, From: f}, nil
	}
	if plural := f.Plural(); plural != nil {
		container, err := a.fromRef(f.LHS, n)
		if err != nil {
			return nil, err
		}
		collection := &sqm.PluralAttributeRef{Node: n, Container: container, Attribute: plural, Exported: f}
		return a.elementRef(n, collection, f)
	}
	if f.Entity == nil {
		container, err := a.fromRef(f.LHS, n)
		if err != nil {
			return nil, err
		}
		attr := f.Attribute.(*metamodel.SingularAttribute)
		return &sqm.SingularAttributeRef{Node: n, Container: container, Attribute: attr, Exported: f}, nil
	}
	return &sqm.EntityRef{Node: n, From: f}, nil
}

// attributePath names an attribute reference relative to the
// from-element it is resolved against.
func attributePath(ref sqm.Ref) string {
	var name string
	var container sqm.Ref
	switch r := ref.(type) {
	case *sqm.SingularAttributeRef:
		name, container = r.Attribute.Name, r.Container
	case *sqm.PluralAttributeRef:
		name, container = r.Attribute.Name, r.Container
	default:
		return ""
	}
	if prefix := attributePath(container); prefix != "" {
		return prefix + "." + name
	}
	return name
}

// implicitJoin returns the inner join of the attribute referenced by ref,
// creating it the first time the attribute is dereferenced.
func (a *analyzer) implicitJoin(sc scope, ref sqm.Ref, n ast.Node) (*sqm.FromElement, error) {
	lhs := ref.Source()
	path := attributePath(ref)
	if join := a.ctx.lookupJoin(lhs, path); join != nil {
		setExported(ref, join)
		return join, nil
	}
	join, err := a.newImplicitJoin(sc, ref, n)
	if err != nil {
		return nil, err
	}
	a.ctx.cacheJoin(lhs, path, join)
	setExported(ref, join)
	return join, nil
}

// newImplicitJoin creates an uncached implicit join of the attribute
// referenced by ref.
func (a *analyzer) newImplicitJoin(sc scope, ref sqm.Ref, n ast.Node) (*sqm.FromElement, error) {
	lhs := ref.Source()
	join := &sqm.FromElement{
		Node:          n,
		Kind:          sqm.AttributeJoin,
		Alias:         a.ctx.generateAlias(),
		ImplicitAlias: true,
		LHS:           lhs,
		JoinType:      sqm.Inner,
		Implicit:      true,
	}
	switch r := ref.(type) {
	case *sqm.SingularAttributeRef:
		join.Attribute = r.Attribute
		join.Type = r.Attribute.Type
	case *sqm.PluralAttributeRef:
		if r.Attribute.ElementClassification == metamodel.Any {
			return nil, &NotYetImplementedError{Msg: "join of any-valued collection " + r.Attribute.Name, Loc: locOf(n)}
		}
		join.Attribute = r.Attribute
		join.Type = r.Attribute.ElementType
	default:
		return nil, semanticErrorf(n, "expression cannot be joined")
	}
	join.Entity, _ = join.Type.(*metamodel.EntityType)
	if err := a.addJoin(sc, lhs.Space, join, nil); err != nil {
		return nil, err
	}
	a.ctx.metrics.implicitJoin()
	a.ctx.logger.Debug("implicit join",
		zap.Stringer("lhs", lhs),
		zap.String("attribute", attributePath(ref)),
		zap.Stringer("join", join))
	return join, nil
}

// indexJoin joins the entity key of a map joined by ref.From.
func (a *analyzer) indexJoin(sc scope, ref *sqm.EntityIndexRef) (*sqm.FromElement, error) {
	const key = "{key}"
	if join := a.ctx.lookupJoin(ref.From, key); join != nil {
		return join, nil
	}
	entity := ref.Collection.Attribute.IndexType.(*metamodel.EntityType)
	join := &sqm.FromElement{
		Node:          ref,
		Kind:          sqm.AttributeJoin,
		Alias:         a.ctx.generateAlias(),
		ImplicitAlias: true,
		Attribute:     ref.Collection.Attribute,
		LHS:           ref.From,
		Entity:        entity,
		Type:          entity,
		JoinType:      sqm.Inner,
		Implicit:      true,
	}
	if err := a.addJoin(sc, ref.From.Space, join, nil); err != nil {
		return nil, err
	}
	a.ctx.cacheJoin(ref.From, key, join)
	a.ctx.metrics.implicitJoin()
	return join, nil
}

func setExported(ref sqm.Ref, join *sqm.FromElement) {
	switch r := ref.(type) {
	case *sqm.SingularAttributeRef:
		r.Exported = join
	case *sqm.PluralAttributeRef:
		r.Exported = join
	}
}

// addJoin registers a join and appends it to space.  The alias goes to
// the registry of the query block owning the space.
func (a *analyzer) addJoin(sc scope, space *sqm.FromElementSpace, join *sqm.FromElement, alias *ast.ID) error {
	q := sc.query.stateOf(space)
	if q == nil {
		return semanticErrorf(join, "from-element %s is not in scope", join.LHS)
	}
	if err := a.registerFrom(q, join, alias); err != nil {
		return err
	}
	a.ctx.register(join)
	join.Space = space
	space.Joins = append(space.Joins, join)
	return nil
}

// joinedElement joins a collection and returns its element.
func (a *analyzer) joinedElement(sc scope, plural *sqm.PluralAttributeRef, n ast.Node) (sqm.Ref, error) {
	join := plural.Exported
	if join == nil {
		var err error
		if join, err = a.implicitJoin(sc, plural, n); err != nil {
			return nil, err
		}
	}
	return a.elementRef(n, plural, join)
}
