package metamodel

import (
	arc "github.com/hashicorp/golang-lru/arc/v2"
)

// Cached memoizes the name-based lookups of an underlying Model, including
// lookups that find nothing.  It is safe for concurrent use when the
// underlying model is.
type Cached struct {
	Model
	entities *arc.ARCCache[string, *EntityType]
	attrs    *arc.ARCCache[attrKey, Attribute]
	classes  *arc.ARCCache[string, classResult]
}

type attrKey struct {
	owner ManagedType
	name  string
}

type classResult struct {
	class *Class
	err   error
}

var _ Model = (*Cached)(nil)

// NewCached wraps m with caches holding up to size entries each.
func NewCached(m Model, size int) (*Cached, error) {
	entities, err := arc.NewARC[string, *EntityType](size)
	if err != nil {
		return nil, err
	}
	attrs, err := arc.NewARC[attrKey, Attribute](size)
	if err != nil {
		return nil, err
	}
	classes, err := arc.NewARC[string, classResult](size)
	if err != nil {
		return nil, err
	}
	return &Cached{
		Model:    m,
		entities: entities,
		attrs:    attrs,
		classes:  classes,
	}, nil
}

func (c *Cached) ResolveEntity(name string) *EntityType {
	if e, ok := c.entities.Get(name); ok {
		return e
	}
	e := c.Model.ResolveEntity(name)
	c.entities.Add(name, e)
	return e
}

func (c *Cached) ResolveAttribute(owner ManagedType, name string) Attribute {
	key := attrKey{owner, name}
	if a, ok := c.attrs.Get(key); ok {
		return a
	}
	a := c.Model.ResolveAttribute(owner, name)
	c.attrs.Add(key, a)
	return a
}

func (c *Cached) ClassByName(name string) (*Class, error) {
	if r, ok := c.classes.Get(name); ok {
		return r.class, r.err
	}
	class, err := c.Model.ClassByName(name)
	c.classes.Add(name, classResult{class, err})
	return class, err
}

// EntityNames passes through to the underlying model when it is a Lister.
func (c *Cached) EntityNames() []string {
	if l, ok := c.Model.(Lister); ok {
		return l.EntityNames()
	}
	return nil
}
