package sqm

import (
	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/metamodel"
)

// Ref is a navigable reference: an expression bound to a from-element.
// Source is the from-element the reference is resolved against.
type Ref interface {
	Expr
	Source() *FromElement
}

type (
	// EntityRef refers to the entity bound by a from-element.
	EntityRef struct {
		ast.Node
		From *FromElement
	}
	// SingularAttributeRef refers to a singular attribute of its
	// container, which is an EntityRef or, for an attribute of an
	// embeddable, the SingularAttributeRef of the embedded value.
	SingularAttributeRef struct {
		ast.Node
		Container Ref
		Attribute *metamodel.SingularAttribute
		// Exported is the join materialized when the path was
		// dereferenced further.
		Exported *FromElement
	}
	PluralAttributeRef struct {
		ast.Node
		Container Ref
		Attribute *metamodel.PluralAttribute
		Exported  *FromElement
	}
)

// Element and index references of a collection.  From is the join over
// the collection or nil when the reference appears inside a collection
// function like elements() or maxindex() that does not join the
// collection into the query.
type (
	BasicElementRef struct {
		ast.Node
		Collection *PluralAttributeRef
		From       *FromElement
	}
	EmbeddableElementRef struct {
		ast.Node
		Collection *PluralAttributeRef
		From       *FromElement
	}
	EntityElementRef struct {
		ast.Node
		Collection *PluralAttributeRef
		From       *FromElement
	}
	BasicIndexRef struct {
		ast.Node
		Collection *PluralAttributeRef
		From       *FromElement
	}
	EmbeddableIndexRef struct {
		ast.Node
		Collection *PluralAttributeRef
		From       *FromElement
	}
	EntityIndexRef struct {
		ast.Node
		Collection *PluralAttributeRef
		From       *FromElement
	}
	MapEntryRef struct {
		ast.Node
		Collection *PluralAttributeRef
		From       *FromElement
	}
	// CollectionFunction is elements(), indices(), minelement(),
	// maxelement(), minindex() or maxindex() applied to a collection.  Arg
	// is the element or index reference of the collection.
	CollectionFunction struct {
		ast.Node
		Name string
		Arg  Ref
	}
)

// Type-valued and constant expressions.
type (
	// EntityTypeLiteral is an entity name used as a value, as in
	// "type(p) = Cat".
	EntityTypeLiteral struct {
		ast.Node
		Entity *metamodel.EntityType
	}
	// EntityTypeOf is "type(path)".
	EntityTypeOf struct {
		ast.Node
		Ref Ref
	}
	// ParameterizedEntityType is "type(:param)".  The parameter's type
	// stays unresolved.
	ParameterizedEntityType struct {
		ast.Node
		Param *Parameter
	}
	EnumConstant struct {
		ast.Node
		Constant *metamodel.Constant
	}
	FieldConstant struct {
		ast.Node
		Constant *metamodel.Constant
	}
)

func (*EntityRef) exprNode()               {}
func (*SingularAttributeRef) exprNode()    {}
func (*PluralAttributeRef) exprNode()      {}
func (*BasicElementRef) exprNode()         {}
func (*EmbeddableElementRef) exprNode()    {}
func (*EntityElementRef) exprNode()        {}
func (*BasicIndexRef) exprNode()           {}
func (*EmbeddableIndexRef) exprNode()      {}
func (*EntityIndexRef) exprNode()          {}
func (*MapEntryRef) exprNode()             {}
func (*CollectionFunction) exprNode()      {}
func (*EntityTypeLiteral) exprNode()       {}
func (*EntityTypeOf) exprNode()            {}
func (*ParameterizedEntityType) exprNode() {}
func (*EnumConstant) exprNode()            {}
func (*FieldConstant) exprNode()           {}

func (e *EntityRef) Type() metamodel.Type {
	return e.From.Type
}

func (s *SingularAttributeRef) Type() metamodel.Type {
	return s.Attribute.Type
}

func (p *PluralAttributeRef) Type() metamodel.Type {
	return p.Attribute.ElementType
}

func (e *BasicElementRef) Type() metamodel.Type      { return e.Collection.Attribute.ElementType }
func (e *EmbeddableElementRef) Type() metamodel.Type { return e.Collection.Attribute.ElementType }
func (e *EntityElementRef) Type() metamodel.Type     { return e.Collection.Attribute.ElementType }
func (i *BasicIndexRef) Type() metamodel.Type        { return i.Collection.Attribute.IndexType }
func (i *EmbeddableIndexRef) Type() metamodel.Type   { return i.Collection.Attribute.IndexType }
func (i *EntityIndexRef) Type() metamodel.Type       { return i.Collection.Attribute.IndexType }
func (*MapEntryRef) Type() metamodel.Type            { return nil }
func (c *CollectionFunction) Type() metamodel.Type   { return c.Arg.Type() }
func (e *EntityTypeLiteral) Type() metamodel.Type    { return e.Entity }
func (e *EntityTypeOf) Type() metamodel.Type         { return e.Ref.Type() }
func (*ParameterizedEntityType) Type() metamodel.Type {
	return nil
}

func (e *EnumConstant) Type() metamodel.Type {
	return e.Constant.Class
}

func (f *FieldConstant) Type() metamodel.Type {
	return f.Constant.Type
}

func (e *EntityRef) Source() *FromElement            { return e.From }
func (s *SingularAttributeRef) Source() *FromElement { return s.Container.Source() }
func (p *PluralAttributeRef) Source() *FromElement   { return p.Container.Source() }
func (e *BasicElementRef) Source() *FromElement      { return collectionSource(e.From, e.Collection) }
func (e *EmbeddableElementRef) Source() *FromElement { return collectionSource(e.From, e.Collection) }
func (e *EntityElementRef) Source() *FromElement     { return collectionSource(e.From, e.Collection) }
func (i *BasicIndexRef) Source() *FromElement        { return collectionSource(i.From, i.Collection) }
func (i *EmbeddableIndexRef) Source() *FromElement   { return collectionSource(i.From, i.Collection) }
func (i *EntityIndexRef) Source() *FromElement       { return collectionSource(i.From, i.Collection) }
func (m *MapEntryRef) Source() *FromElement          { return collectionSource(m.From, m.Collection) }
func (c *CollectionFunction) Source() *FromElement   { return c.Arg.Source() }
func (e *EntityTypeOf) Source() *FromElement         { return e.Ref.Source() }

func collectionSource(from *FromElement, collection *PluralAttributeRef) *FromElement {
	if from != nil {
		return from
	}
	return collection.Source()
}
