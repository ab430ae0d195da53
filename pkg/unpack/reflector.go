// Package unpack decodes JSON into Go values whose fields are interfaces.
// Each JSON object destined for an interface carries a "kind" field naming
// the concrete Go type, which must have been registered with New.
package unpack

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

const KindKey = "kind"

type Reflector struct {
	types map[string]reflect.Type
}

// New returns a Reflector that knows the types of the template values.
// A type is registered under its Go type name.
func New(templates ...any) *Reflector {
	r := &Reflector{types: make(map[string]reflect.Type)}
	for _, t := range templates {
		r.Add(t)
	}
	return r
}

func (r *Reflector) Add(template any) *Reflector {
	typ := reflect.TypeOf(template)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	r.types[typ.Name()] = typ
	return r
}

// Unmarshal decodes buf into the value pointed to by result.
func (r *Reflector) Unmarshal(buf []byte, result any) error {
	var generic any
	if err := json.Unmarshal(buf, &generic); err != nil {
		return err
	}
	return r.UnmarshalObject(generic, result)
}

// UnmarshalObject decodes a generic JSON value (as produced by decoding
// into an any) into the value pointed to by result.
func (r *Reflector) UnmarshalObject(object, result any) error {
	v := reflect.ValueOf(result)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return errors.New("unpack: result must be a non-nil pointer")
	}
	return r.decode(v.Elem(), object, "")
}

func (r *Reflector) decode(v reflect.Value, object any, path string) error {
	if object == nil {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	switch v.Kind() {
	case reflect.Interface:
		return r.decodeInterface(v, object, path)
	case reflect.Pointer:
		elem := reflect.New(v.Type().Elem())
		if err := r.decode(elem.Elem(), object, path); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	case reflect.Struct:
		m, ok := object.(map[string]any)
		if !ok {
			return fmt.Errorf("unpack: %s: expected object for %s", location(path), v.Type())
		}
		return r.decodeStruct(v, m, path)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return decodeLeaf(v, object, path)
		}
		elems, ok := object.([]any)
		if !ok {
			return fmt.Errorf("unpack: %s: expected array for %s", location(path), v.Type())
		}
		s := reflect.MakeSlice(v.Type(), len(elems), len(elems))
		for k, e := range elems {
			if err := r.decode(s.Index(k), e, fmt.Sprintf("%s[%d]", path, k)); err != nil {
				return err
			}
		}
		v.Set(s)
		return nil
	case reflect.Map:
		m, ok := object.(map[string]any)
		if !ok || v.Type().Key().Kind() != reflect.String {
			return decodeLeaf(v, object, path)
		}
		out := reflect.MakeMapWithSize(v.Type(), len(m))
		for key, e := range m {
			elem := reflect.New(v.Type().Elem()).Elem()
			if err := r.decode(elem, e, path+"."+key); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(v.Type().Key()), elem)
		}
		v.Set(out)
		return nil
	}
	return decodeLeaf(v, object, path)
}

func (r *Reflector) decodeInterface(v reflect.Value, object any, path string) error {
	if v.NumMethod() == 0 {
		v.Set(reflect.ValueOf(object))
		return nil
	}
	m, ok := object.(map[string]any)
	if !ok {
		return fmt.Errorf("unpack: %s: expected object for %s", location(path), v.Type())
	}
	kind, ok := m[KindKey].(string)
	if !ok {
		return fmt.Errorf("unpack: %s: missing %q field for %s", location(path), KindKey, v.Type())
	}
	typ, ok := r.types[kind]
	if !ok {
		return fmt.Errorf("unpack: %s: unknown kind %q", location(path), kind)
	}
	ptr := reflect.New(typ)
	if !ptr.Type().Implements(v.Type()) {
		return fmt.Errorf("unpack: %s: kind %q is not a %s", location(path), kind, v.Type())
	}
	if err := r.decodeStruct(ptr.Elem(), m, path); err != nil {
		return err
	}
	v.Set(ptr)
	return nil
}

func (r *Reflector) decodeStruct(v reflect.Value, m map[string]any, path string) error {
	typ := v.Type()
	for k := 0; k < typ.NumField(); k++ {
		field := typ.Field(k)
		if !field.IsExported() {
			continue
		}
		name, tagged := fieldName(field)
		if name == "-" {
			continue
		}
		if field.Anonymous && !tagged && field.Type.Kind() == reflect.Struct {
			if err := r.decodeStruct(v.Field(k), m, path); err != nil {
				return err
			}
			continue
		}
		object, ok := lookup(m, name)
		if !ok {
			continue
		}
		if err := r.decode(v.Field(k), object, path+"."+name); err != nil {
			return err
		}
	}
	return nil
}

func fieldName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name, false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name, false
	}
	return name, true
}

func lookup(m map[string]any, name string) (any, bool) {
	if object, ok := m[name]; ok {
		return object, true
	}
	for key, object := range m {
		if strings.EqualFold(key, name) {
			return object, true
		}
	}
	return nil, false
}

// decodeLeaf handles values without interfaces inside by a round trip
// through the JSON decoder.
func decodeLeaf(v reflect.Value, object any, path string) error {
	b, err := json.Marshal(object)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v.Addr().Interface()); err != nil {
		return fmt.Errorf("unpack: %s: %w", location(path), err)
	}
	return nil
}

func location(path string) string {
	if path == "" {
		return "top level"
	}
	return strings.TrimPrefix(path, ".")
}
