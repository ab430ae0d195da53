package metamodel

import (
	"fmt"
	"slices"
	"strings"
)

// Static is an in-memory Model built from a Config.
type Static struct {
	entities    map[string]*EntityType
	names       []string
	embeddables map[string]*EmbeddableType
	classes     map[string]*Class
	basics      map[HostType]*BasicType
}

var _ Model = (*Static)(nil)
var _ Lister = (*Static)(nil)

func NewStatic(c *Config) (*Static, error) {
	s := &Static{
		entities:    make(map[string]*EntityType),
		embeddables: make(map[string]*EmbeddableType),
		classes:     make(map[string]*Class),
		basics:      make(map[HostType]*BasicType),
	}
	for h := range hostNames {
		s.basics[HostType(h)] = &BasicType{Name: hostNames[h], Host: HostType(h)}
	}
	// Create every managed type before any attribute so that attributes
	// can refer to types declared later in the file.
	for _, e := range c.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("entity name missing")
		}
		if _, ok := s.entities[e.Name]; ok {
			return nil, fmt.Errorf("entity %q defined more than once", e.Name)
		}
		s.entities[e.Name] = &EntityType{Name: e.Name, ClassName: e.Class}
		s.names = append(s.names, e.Name)
	}
	for _, e := range c.Embeddables {
		if _, ok := s.embeddables[e.Name]; ok {
			return nil, fmt.Errorf("embeddable %q defined more than once", e.Name)
		}
		s.embeddables[e.Name] = &EmbeddableType{Name: e.Name}
	}
	for _, e := range c.Entities {
		entity := s.entities[e.Name]
		if e.Super != "" {
			super, ok := s.entities[e.Super]
			if !ok {
				return nil, fmt.Errorf("entity %q: unknown super entity %q", e.Name, e.Super)
			}
			entity.Super = super
		}
		for _, ac := range e.Attributes {
			a, err := s.newAttribute(entity, ac)
			if err != nil {
				return nil, fmt.Errorf("entity %q: %w", e.Name, err)
			}
			entity.addAttribute(a)
		}
	}
	for _, e := range c.Embeddables {
		embeddable := s.embeddables[e.Name]
		for _, ac := range e.Attributes {
			a, err := s.newAttribute(embeddable, ac)
			if err != nil {
				return nil, fmt.Errorf("embeddable %q: %w", e.Name, err)
			}
			embeddable.addAttribute(a)
		}
	}
	for _, p := range c.Polymorphic {
		if err := s.addPolymorphic(p); err != nil {
			return nil, err
		}
	}
	for _, cc := range c.Classes {
		class, err := s.newClass(cc)
		if err != nil {
			return nil, err
		}
		s.classes[cc.Name] = class
	}
	return s, nil
}

func (s *Static) newAttribute(owner ManagedType, c AttributeConfig) (Attribute, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if c.Collection == "" {
		class, typ, err := s.valueType(c.Type, c.Embeddable, c.Entity, c.Association, false, false)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", c.Name, err)
		}
		return &SingularAttribute{
			Name:           c.Name,
			Owner:          owner,
			Classification: class,
			Type:           typ,
		}, nil
	}
	kind, ok := parseCollectionKind(c.Collection)
	if !ok {
		return nil, fmt.Errorf("attribute %q: unknown collection kind %q", c.Name, c.Collection)
	}
	p := &PluralAttribute{
		Name:       c.Name,
		Owner:      owner,
		Collection: kind,
	}
	var err error
	e := c.Element
	p.ElementClassification, p.ElementType, err = s.valueType(e.Type, e.Embeddable, e.Entity, e.Association, true, e.Any)
	if err != nil {
		return nil, fmt.Errorf("attribute %q element: %w", c.Name, err)
	}
	switch kind {
	case List, Array:
		if c.Index != nil {
			return nil, fmt.Errorf("attribute %q: %s index is implied", c.Name, kind)
		}
		p.IndexClassification = Basic
		p.IndexType = s.basics[HostInteger]
	case Map:
		i := c.Index
		if i == nil {
			return nil, fmt.Errorf("attribute %q: map requires an index", c.Name)
		}
		p.IndexClassification, p.IndexType, err = s.valueType(i.Type, i.Embeddable, i.Entity, i.Association, true, i.Any)
		if err != nil {
			return nil, fmt.Errorf("attribute %q index: %w", c.Name, err)
		}
	default:
		if c.Index != nil {
			return nil, fmt.Errorf("attribute %q: %s cannot have an index", c.Name, kind)
		}
	}
	return p, nil
}

// valueType resolves the type and classification of an attribute value or
// a collection element or index.
func (s *Static) valueType(basic, embeddable, entity, association string, plural, anyValued bool) (Classification, Type, error) {
	switch {
	case anyValued:
		return Any, nil, nil
	case basic != "":
		h, ok := ParseHostType(basic)
		if !ok {
			return 0, nil, fmt.Errorf("unknown basic type %q", basic)
		}
		return Basic, s.basics[h], nil
	case embeddable != "":
		e, ok := s.embeddables[embeddable]
		if !ok {
			return 0, nil, fmt.Errorf("unknown embeddable %q", embeddable)
		}
		return Embeddable, e, nil
	case entity != "":
		e, ok := s.entities[entity]
		if !ok {
			return 0, nil, fmt.Errorf("unknown entity %q", entity)
		}
		class := ManyToOne
		if plural {
			class = OneToMany
		}
		if association != "" {
			var ok bool
			if class, ok = parseClassification(association); !ok || !class.IsEntity() {
				return 0, nil, fmt.Errorf("unknown association %q", association)
			}
		}
		return class, e, nil
	}
	return 0, nil, fmt.Errorf("no type given")
}

func (s *Static) addPolymorphic(c PolymorphicConfig) error {
	if s.lookupEntity(c.Name) != nil {
		return fmt.Errorf("polymorphic type %q collides with an entity", c.Name)
	}
	p := &EntityType{Name: c.Name, ClassName: c.Name}
	for _, name := range c.Implementors {
		e, ok := s.entities[name]
		if !ok {
			return fmt.Errorf("polymorphic type %q: unknown implementor %q", c.Name, name)
		}
		p.Implementors = append(p.Implementors, e)
	}
	if len(p.Implementors) == 0 {
		return fmt.Errorf("polymorphic type %q has no implementors", c.Name)
	}
	// A polymorphic reference exposes only the attributes common to
	// every implementor.
	for _, a := range p.Implementors[0].Attributes() {
		common := true
		for _, e := range p.Implementors[1:] {
			if e.Attribute(a.AttributeName()) == nil {
				common = false
				break
			}
		}
		if common {
			p.addAttribute(a)
		}
	}
	s.entities[c.Name] = p
	return nil
}

func (s *Static) newClass(c ClassConfig) (*Class, error) {
	if _, ok := s.classes[c.Name]; ok {
		return nil, fmt.Errorf("class %q defined more than once", c.Name)
	}
	class := &Class{
		Name:      c.Name,
		Enum:      len(c.Enum) != 0,
		Constants: make(map[string]*Constant),
	}
	for _, name := range c.Enum {
		class.Constants[name] = &Constant{Name: name, Class: class}
	}
	for name, typ := range c.Fields {
		h, ok := ParseHostType(typ)
		if !ok {
			return nil, fmt.Errorf("class %q: field %q: unknown basic type %q", c.Name, name, typ)
		}
		if _, ok := class.Constants[name]; ok {
			return nil, fmt.Errorf("class %q: constant %q defined more than once", c.Name, name)
		}
		class.Constants[name] = &Constant{Name: name, Class: class, Type: s.basics[h]}
	}
	return class, nil
}

func (s *Static) lookupEntity(name string) *EntityType {
	if e, ok := s.entities[name]; ok {
		return e
	}
	for _, e := range s.entities {
		if e.ClassName == name {
			return e
		}
	}
	return nil
}

func (s *Static) ResolveEntity(name string) *EntityType {
	return s.lookupEntity(name)
}

func (s *Static) ResolveAttribute(owner ManagedType, name string) Attribute {
	if owner == nil {
		return nil
	}
	return owner.Attribute(name)
}

func (s *Static) ResolveBasicType(host HostType) *BasicType {
	return s.basics[host]
}

func (s *Static) ResolveArithmeticResultType(lhs, rhs *BasicType, op ArithmeticOperator) *BasicType {
	return ArithmeticResultType(lhs, rhs, op, s.ResolveBasicType)
}

func (s *Static) ResolveSumResultType(operand *BasicType) *BasicType {
	return SumResultType(operand, s.ResolveBasicType)
}

func (s *Static) ResolveCastTargetType(name string) Type {
	h, ok := ParseHostType(name)
	if !ok || h == HostObject || h == HostClass || h == HostNumber {
		return nil
	}
	return s.basics[h]
}

// ClassByName looks up a class by its fully qualified name or, when that
// is unambiguous, by its simple name.
func (s *Static) ClassByName(name string) (*Class, error) {
	if c, ok := s.classes[name]; ok {
		return c, nil
	}
	var match *Class
	for qualified, c := range s.classes {
		if simpleName(qualified) == name {
			if match != nil {
				return nil, fmt.Errorf("class name %q is ambiguous", name)
			}
			match = c
		}
	}
	if match == nil {
		return nil, fmt.Errorf("class %q not found", name)
	}
	return match, nil
}

func (s *Static) EntityNames() []string {
	return slices.Clone(s.names)
}

func simpleName(name string) string {
	if k := strings.LastIndexByte(name, '.'); k >= 0 {
		return name[k+1:]
	}
	return name
}
