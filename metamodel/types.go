// Package metamodel describes the domain model that queries are resolved
// against: entities, embeddables, their attributes, basic value types and
// the externally named classes used for constants and instantiation.
package metamodel

import (
	"fmt"
	"strings"
)

// HostType identifies the host value type backing a basic type.
type HostType int

const (
	HostObject HostType = iota
	HostByte
	HostShort
	HostInteger
	HostLong
	HostBigInteger
	HostFloat
	HostDouble
	HostBigDecimal
	HostNumber
	HostBoolean
	HostCharacter
	HostString
	HostDate
	HostTime
	HostTimestamp
	HostClass
)

var hostNames = [...]string{
	HostObject:     "object",
	HostByte:       "byte",
	HostShort:      "short",
	HostInteger:    "integer",
	HostLong:       "long",
	HostBigInteger: "big_integer",
	HostFloat:      "float",
	HostDouble:     "double",
	HostBigDecimal: "big_decimal",
	HostNumber:     "number",
	HostBoolean:    "boolean",
	HostCharacter:  "character",
	HostString:     "string",
	HostDate:       "date",
	HostTime:       "time",
	HostTimestamp:  "timestamp",
	HostClass:      "class",
}

func (h HostType) String() string {
	if h < 0 || int(h) >= len(hostNames) {
		return fmt.Sprintf("HostType(%d)", int(h))
	}
	return hostNames[h]
}

// ParseHostType maps a host type name (as written in model files and cast
// targets) to its HostType.  A few common aliases are accepted.
func ParseHostType(s string) (HostType, bool) {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case "int":
		return HostInteger, true
	case "char":
		return HostCharacter, true
	case "biginteger":
		return HostBigInteger, true
	case "bigdecimal":
		return HostBigDecimal, true
	case "bool":
		return HostBoolean, true
	default:
		for h, n := range hostNames {
			if n == name {
				return HostType(h), true
			}
		}
	}
	return 0, false
}

func (h HostType) IsNumeric() bool {
	return h >= HostByte && h <= HostNumber
}

func (h HostType) IsIntegral() bool {
	return h >= HostByte && h <= HostBigInteger
}

func (h HostType) IsTemporal() bool {
	return h == HostDate || h == HostTime || h == HostTimestamp
}

// Type is the sum type for everything an expression can be typed as.
type Type interface {
	TypeName() string
	typeNode()
}

// ManagedType is a type that declares attributes.
type ManagedType interface {
	Type
	Attribute(name string) Attribute
	Attributes() []Attribute
}

type (
	BasicType struct {
		Name string
		Host HostType
	}
	EmbeddableType struct {
		Name  string
		attrs []Attribute
	}
	// EntityType is a mapped entity.  An entity with implementors is an
	// unmapped polymorphic type: it has no concrete backing table and
	// matches every implementor.
	EntityType struct {
		Name         string
		ClassName    string
		Super        *EntityType
		Implementors []*EntityType
		attrs        []Attribute
	}
	// Class is an externally named class used for constant references
	// (enum constants and static fields) and dynamic instantiation.
	Class struct {
		Name      string
		Enum      bool
		Constants map[string]*Constant
	}
	Constant struct {
		Name  string
		Class *Class
		// Type is nil for enum constants, whose type is the class itself.
		Type Type
	}
)

func (*BasicType) typeNode()      {}
func (*EmbeddableType) typeNode() {}
func (*EntityType) typeNode()     {}
func (*Class) typeNode()          {}

func (b *BasicType) TypeName() string      { return b.Name }
func (e *EmbeddableType) TypeName() string { return e.Name }
func (e *EntityType) TypeName() string     { return e.Name }
func (c *Class) TypeName() string          { return c.Name }

func (e *EmbeddableType) Attribute(name string) Attribute {
	return lookupAttr(e.attrs, name)
}

func (e *EmbeddableType) Attributes() []Attribute {
	return e.attrs
}

func (e *EntityType) IsPolymorphic() bool {
	return len(e.Implementors) != 0
}

func (e *EntityType) Attribute(name string) Attribute {
	for t := e; t != nil; t = t.Super {
		if a := lookupAttr(t.attrs, name); a != nil {
			return a
		}
	}
	return nil
}

// Attributes returns the attributes declared by e and its super types
// with the most derived declarations first.
func (e *EntityType) Attributes() []Attribute {
	var out []Attribute
	for t := e; t != nil; t = t.Super {
		out = append(out, t.attrs...)
	}
	return out
}

func (e *EntityType) addAttribute(a Attribute) {
	e.attrs = append(e.attrs, a)
}

func (e *EmbeddableType) addAttribute(a Attribute) {
	e.attrs = append(e.attrs, a)
}

func lookupAttr(attrs []Attribute, name string) Attribute {
	for _, a := range attrs {
		if a.AttributeName() == name {
			return a
		}
	}
	return nil
}

// Classification is the shape of an attribute value or of a collection's
// element or index.
type Classification int

const (
	Basic Classification = iota
	Embeddable
	ManyToOne
	OneToOne
	OneToMany
	ManyToMany
	Any
)

var classificationNames = [...]string{
	Basic:      "basic",
	Embeddable: "embeddable",
	ManyToOne:  "many-to-one",
	OneToOne:   "one-to-one",
	OneToMany:  "one-to-many",
	ManyToMany: "many-to-many",
	Any:        "any",
}

func (c Classification) String() string {
	if c < 0 || int(c) >= len(classificationNames) {
		return fmt.Sprintf("Classification(%d)", int(c))
	}
	return classificationNames[c]
}

func parseClassification(s string) (Classification, bool) {
	for c, n := range classificationNames {
		if n == s {
			return Classification(c), true
		}
	}
	return 0, false
}

// IsEntity reports whether the classification refers to an entity.
func (c Classification) IsEntity() bool {
	return c == ManyToOne || c == OneToOne || c == OneToMany || c == ManyToMany
}

type CollectionKind int

const (
	Bag CollectionKind = iota
	Set
	List
	Map
	Array
)

var collectionNames = [...]string{
	Bag:   "bag",
	Set:   "set",
	List:  "list",
	Map:   "map",
	Array: "array",
}

func (c CollectionKind) String() string {
	if c < 0 || int(c) >= len(collectionNames) {
		return fmt.Sprintf("CollectionKind(%d)", int(c))
	}
	return collectionNames[c]
}

func parseCollectionKind(s string) (CollectionKind, bool) {
	for c, n := range collectionNames {
		if n == s {
			return CollectionKind(c), true
		}
	}
	return 0, false
}

// Attribute is the sum type of SingularAttribute and PluralAttribute.
type Attribute interface {
	AttributeName() string
	DeclaringType() ManagedType
	attributeNode()
}

type (
	SingularAttribute struct {
		Name           string
		Owner          ManagedType
		Classification Classification
		Type           Type
	}
	PluralAttribute struct {
		Name                  string
		Owner                 ManagedType
		Collection            CollectionKind
		ElementClassification Classification
		ElementType           Type
		// IndexType is nil for collections without an index (bags and sets).
		IndexClassification Classification
		IndexType           Type
	}
)

func (*SingularAttribute) attributeNode() {}
func (*PluralAttribute) attributeNode()   {}

func (s *SingularAttribute) AttributeName() string      { return s.Name }
func (s *SingularAttribute) DeclaringType() ManagedType { return s.Owner }
func (p *PluralAttribute) AttributeName() string        { return p.Name }
func (p *PluralAttribute) DeclaringType() ManagedType   { return p.Owner }

// Indexed reports whether elements of the collection are addressable
// by an index (a list position, an array position, or a map key).
func (p *PluralAttribute) Indexed() bool {
	return p.IndexType != nil
}

// ArithmeticOperator is a binary arithmetic operator.
type ArithmeticOperator int

const (
	Add ArithmeticOperator = iota
	Subtract
	Multiply
	Divide
	Modulo
)

func (o ArithmeticOperator) String() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	}
	return fmt.Sprintf("ArithmeticOperator(%d)", int(o))
}
