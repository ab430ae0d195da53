package metamodel

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML description of a static domain model.
//
//	entities:
//	  - name: Person
//	    class: com.acme.Person
//	    attributes:
//	      - {name: id, type: long}
//	      - {name: address, embeddable: Address}
//	      - {name: employer, entity: Company}
//	      - name: phones
//	        collection: map
//	        index: {type: string}
//	        element: {entity: Phone, association: one-to-many}
//	embeddables:
//	  - name: Address
//	    attributes:
//	      - {name: city, type: string}
//	classes:
//	  - name: com.acme.Status
//	    enum: [ACTIVE, RETIRED]
//	polymorphic:
//	  - name: com.acme.Animal
//	    implementors: [Cat, Dog]
type Config struct {
	Entities    []EntityConfig      `yaml:"entities"`
	Embeddables []EmbeddableConfig  `yaml:"embeddables"`
	Classes     []ClassConfig       `yaml:"classes"`
	Polymorphic []PolymorphicConfig `yaml:"polymorphic"`
}

type EntityConfig struct {
	Name       string            `yaml:"name"`
	Class      string            `yaml:"class,omitempty"`
	Super      string            `yaml:"super,omitempty"`
	Attributes []AttributeConfig `yaml:"attributes"`
}

type EmbeddableConfig struct {
	Name       string            `yaml:"name"`
	Attributes []AttributeConfig `yaml:"attributes"`
}

// AttributeConfig describes a singular attribute through exactly one of
// Type, Embeddable or Entity, or a plural attribute through Collection
// and Element (and Index for maps, lists and arrays).
type AttributeConfig struct {
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type,omitempty"`
	Embeddable  string         `yaml:"embeddable,omitempty"`
	Entity      string         `yaml:"entity,omitempty"`
	Association string         `yaml:"association,omitempty"`
	Collection  string         `yaml:"collection,omitempty"`
	Element     *ElementConfig `yaml:"element,omitempty"`
	Index       *ElementConfig `yaml:"index,omitempty"`
}

type ElementConfig struct {
	Type        string `yaml:"type,omitempty"`
	Embeddable  string `yaml:"embeddable,omitempty"`
	Entity      string `yaml:"entity,omitempty"`
	Association string `yaml:"association,omitempty"`
	Any         bool   `yaml:"any,omitempty"`
}

type ClassConfig struct {
	Name   string            `yaml:"name"`
	Enum   []string          `yaml:"enum,omitempty"`
	Fields map[string]string `yaml:"fields,omitempty"`
}

type PolymorphicConfig struct {
	Name         string   `yaml:"name"`
	Implementors []string `yaml:"implementors"`
}

// Load parses a YAML model description.  Unknown fields are an error.
func Load(b []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("model config: %w", err)
	}
	return &c, nil
}

// LoadFile reads the YAML model description in the named file and builds
// a Static model from it.
func LoadFile(path string) (*Static, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Load(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := NewStatic(c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (a *AttributeConfig) check() error {
	if a.Name == "" {
		return errors.New("attribute name missing")
	}
	if a.Collection != "" {
		if a.Element == nil {
			return fmt.Errorf("attribute %q: collection requires an element", a.Name)
		}
		if a.Type != "" || a.Embeddable != "" || a.Entity != "" {
			return fmt.Errorf("attribute %q: collection cannot also have a type, embeddable or entity", a.Name)
		}
		return nil
	}
	if a.Element != nil || a.Index != nil {
		return fmt.Errorf("attribute %q: element and index require a collection", a.Name)
	}
	var cnt int
	for _, s := range []string{a.Type, a.Embeddable, a.Entity} {
		if s != "" {
			cnt++
		}
	}
	if cnt != 1 {
		return fmt.Errorf("attribute %q: exactly one of type, embeddable or entity must be set", a.Name)
	}
	return nil
}
