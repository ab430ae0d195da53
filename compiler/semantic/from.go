package semantic

import (
	"fmt"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
	"go.uber.org/zap"
)

func (a *analyzer) fromClause(sc scope, spec *ast.QuerySpec) error {
	if spec.From == nil || len(spec.From.Spaces) == 0 {
		return &ParsingError{Msg: "query has no from clause", Loc: locOf(spec)}
	}
	for _, space := range spec.From.Spaces {
		if err := a.fromSpace(sc, space); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) fromSpace(sc scope, s *ast.FromSpace) error {
	if s.Root == nil {
		return &ParsingError{Msg: "from clause space has no root", Loc: locOf(s)}
	}
	space := &sqm.FromElementSpace{}
	sc.query.from.Spaces = append(sc.query.from.Spaces, space)
	root, err := a.root(sc, s.Root.Entity, s.Root.Alias, s.Root)
	if err != nil {
		return err
	}
	root.Space = space
	space.Root = root
	for _, j := range s.Joins {
		switch j := j.(type) {
		case *ast.CrossJoin:
			err = a.crossJoin(sc, space, j)
		case *ast.QualifiedJoin:
			err = a.qualifiedJoin(sc, space, j)
		default:
			err = &ParsingError{Msg: fmt.Sprintf("unexpected join %T", j), Loc: locOf(j)}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// root creates and registers the root of a from clause space or of a
// DML statement.
func (a *analyzer) root(sc scope, name *ast.EntityName, alias *ast.ID, n ast.Node) (*sqm.FromElement, error) {
	entity, err := a.entity(n, name)
	if err != nil {
		return nil, err
	}
	if entity.IsPolymorphic() {
		if err := a.strict(name, UnmappedPolymorphism, "%s is an unmapped polymorphic type", entity.Name); err != nil {
			return nil, err
		}
		a.ctx.logger.Debug("polymorphic root", zap.String("entity", entity.Name), zap.Int("implementors", len(entity.Implementors)))
	}
	f := &sqm.FromElement{
		Node:   n,
		Kind:   sqm.Root,
		Entity: entity,
		Type:   entity,
	}
	if err := a.bind(sc.query, f, alias); err != nil {
		return nil, err
	}
	return f, nil
}

// bind names a new from-element, registers its alias and adds it to the
// arena.
func (a *analyzer) bind(q *queryState, f *sqm.FromElement, alias *ast.ID) error {
	if alias != nil {
		f.Alias = alias.Name
	} else {
		f.Alias = a.ctx.generateAlias()
		f.ImplicitAlias = true
	}
	if err := a.registerFrom(q, f, alias); err != nil {
		return err
	}
	a.ctx.register(f)
	return nil
}

// entity resolves the entity named in n.
func (a *analyzer) entity(n ast.Node, name *ast.EntityName) (*metamodel.EntityType, error) {
	if name == nil {
		return nil, &ParsingError{Msg: "missing entity name", Loc: locOf(n)}
	}
	if entity := a.ctx.model.ResolveEntity(name.Name); entity != nil {
		return entity, nil
	}
	err := &UnknownEntityError{
		SemanticError: &SemanticError{
			Msg:  fmt.Sprintf("unknown entity %q", name.Name),
			Text: name.Name,
			Loc:  locOf(name),
		},
		Name: name.Name,
	}
	if lister, ok := a.ctx.model.(metamodel.Lister); ok {
		err.Suggestions = suggest(name.Name, lister.EntityNames())
	}
	return nil, err
}

func (a *analyzer) crossJoin(sc scope, space *sqm.FromElementSpace, j *ast.CrossJoin) error {
	entity, err := a.entity(j, j.Entity)
	if err != nil {
		return err
	}
	if entity.IsPolymorphic() {
		if err := a.strict(j.Entity, UnmappedPolymorphism, "cross join of unmapped polymorphic type %s", entity.Name); err != nil {
			return err
		}
		return semanticErrorf(j.Entity, "cannot cross join unmapped polymorphic type %s", entity.Name)
	}
	f := &sqm.FromElement{
		Node:     j,
		Kind:     sqm.CrossJoin,
		Entity:   entity,
		Type:     entity,
		JoinType: sqm.Inner,
		Space:    space,
	}
	if err := a.bind(sc.query, f, j.Alias); err != nil {
		return err
	}
	space.Joins = append(space.Joins, f)
	return nil
}

func (a *analyzer) qualifiedJoin(sc scope, space *sqm.FromElementSpace, j *ast.QualifiedJoin) error {
	var joinType sqm.JoinType
	switch j.Type {
	case "", "inner":
		joinType = sqm.Inner
	case "left", "outer":
		joinType = sqm.Left
	default:
		return semanticErrorf(j, "%s join is not supported", j.Type)
	}
	if j.Target == nil || len(j.Target.Parts) == 0 {
		return &ParsingError{Msg: "join has no target", Loc: locOf(j)}
	}
	if j.Fetch && j.Alias != nil {
		if err := a.strict(j.Alias, AliasedFetchJoin, "fetch join of %s must not have an alias", j.Target.Text()); err != nil {
			return err
		}
	}
	var join *sqm.FromElement
	var err error
	if entity := a.joinedEntity(sc, j.Target); entity != nil {
		join, err = a.entityJoin(sc, space, j, entity, joinType)
	} else {
		join, err = a.attributeJoin(sc.with(joinTargetPaths(space, joinType, j.Fetch)), space, j)
	}
	if err != nil {
		return err
	}
	if j.On != nil {
		on, err := a.predicate(sc.with(joinPredicatePaths(space)), j.On)
		if err != nil {
			return err
		}
		join.On = on
	}
	return nil
}

// joinedEntity returns the entity named by a join target that is a single
// name and not an alias.
func (a *analyzer) joinedEntity(sc scope, target *ast.Path) *metamodel.EntityType {
	if target.Head != nil || len(target.Parts) != 1 {
		return nil
	}
	if sc.query.lookup(target.Parts[0].Name) != nil {
		return nil
	}
	return a.ctx.model.ResolveEntity(target.Parts[0].Name)
}

func (a *analyzer) entityJoin(sc scope, space *sqm.FromElementSpace, j *ast.QualifiedJoin, entity *metamodel.EntityType, joinType sqm.JoinType) (*sqm.FromElement, error) {
	if j.Fetch {
		return nil, semanticErrorf(j, "entity join of %s cannot be fetched", entity.Name)
	}
	if entity.IsPolymorphic() {
		if err := a.strict(j.Target, UnmappedPolymorphism, "join of unmapped polymorphic type %s", entity.Name); err != nil {
			return nil, err
		}
	}
	f := &sqm.FromElement{
		Node:     j,
		Kind:     sqm.EntityJoin,
		Entity:   entity,
		Type:     entity,
		JoinType: joinType,
		Space:    space,
	}
	if err := a.bind(sc.query, f, j.Alias); err != nil {
		return nil, err
	}
	space.Joins = append(space.Joins, f)
	return f, nil
}

// attributeJoin resolves all but the last segment of the target as a
// path and joins the attribute named by the last one.
func (a *analyzer) attributeJoin(sc scope, space *sqm.FromElementSpace, j *ast.QualifiedJoin) (*sqm.FromElement, error) {
	target := j.Target
	if len(target.Parts) < 2 {
		return nil, pathError(target, target.Text())
	}
	prefix := &ast.Path{Kind: "Path", Parts: target.Parts[:len(target.Parts)-1], Loc: target.Loc}
	x, err := a.navigablePath(sc, prefix)
	if err != nil {
		return nil, err
	}
	ref, ok := x.(sqm.Ref)
	if !ok {
		return nil, semanticErrorf(target, "join target %q is not a path", target.Text())
	}
	last := target.Parts[len(target.Parts)-1]
	attrRef, err := a.attribute(sc, ref, last)
	if err != nil {
		return nil, err
	}
	lhs := attrRef.Source()
	if err := sc.resolver.checkFrom(target, lhs, sc.query); err != nil {
		return nil, err
	}
	f := &sqm.FromElement{
		Node:     j,
		Kind:     sqm.AttributeJoin,
		LHS:      lhs,
		JoinType: sc.resolver.joinType,
		Fetched:  sc.resolver.fetch,
	}
	switch r := attrRef.(type) {
	case *sqm.SingularAttributeRef:
		switch r.Attribute.Classification {
		case metamodel.Basic:
			return nil, semanticErrorf(last, "basic attribute %q cannot be joined", r.Attribute.Name)
		case metamodel.Any:
			return nil, &NotYetImplementedError{Msg: "join of any-valued attribute " + r.Attribute.Name, Loc: locOf(last)}
		}
		f.Attribute, f.Type = r.Attribute, r.Attribute.Type
	case *sqm.PluralAttributeRef:
		if r.Attribute.ElementClassification == metamodel.Any {
			return nil, &NotYetImplementedError{Msg: "join of any-valued collection " + r.Attribute.Name, Loc: locOf(last)}
		}
		f.Attribute, f.Type = r.Attribute, r.Attribute.ElementType
	}
	f.Entity, _ = f.Type.(*metamodel.EntityType)
	if err := a.bind(sc.query, f, j.Alias); err != nil {
		return nil, err
	}
	f.Space = space
	space.Joins = append(space.Joins, f)
	a.ctx.cacheJoin(lhs, attributePath(attrRef), f)
	return f, nil
}
