package property

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// IDName is the attribute consulted when a document does not implement Identifiable.
const IDName = "ID"

// Identifiable is implemented by documents that manage their own identifier.
// It takes precedence over the reflective ID lookup.
type Identifiable interface {
	GetID() string
	SetID(id string)
}

type idGetter interface {
	GetID() string
}

type idSetter interface {
	SetID(id string)
}

// Identifier returns the document's identifier with surrounding whitespace
// removed. The second result is false when the document has no identifier
// attribute or its value is empty.
func Identifier(obj any) (string, bool) {
	rv := reflect.ValueOf(obj)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return "", false
	}

	if g, ok := getterOf(rv); ok {
		return nonEmpty(g.GetID())
	}

	v, ok := Get(obj, IDName)
	if !ok {
		return "", false
	}
	s, ok := stringify(v)
	if !ok {
		return "", false
	}
	return nonEmpty(s)
}

// WithIdentifier stamps id onto obj, through SetID when obj implements
// Identifiable and through the ID attribute otherwise. Documents without
// either are returned unchanged.
func WithIdentifier[T any](obj T, id string) T {
	rv := reflect.ValueOf(obj)
	if !rv.IsValid() {
		return obj
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return obj
		}
		if s, ok := any(obj).(idSetter); ok {
			s.SetID(id)
			return obj
		}
	case reflect.Struct:
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		if s, ok := p.Interface().(idSetter); ok {
			s.SetID(id)
			if out, ok := p.Elem().Interface().(T); ok {
				return out
			}
			return obj
		}
	}

	return Set(obj, IDName, id)
}

func getterOf(rv reflect.Value) (idGetter, bool) {
	if g, ok := rv.Interface().(idGetter); ok {
		return g, true
	}
	if rv.Kind() == reflect.Struct {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		g, ok := p.Interface().(idGetter)
		return g, ok
	}
	return nil, false
}

func stringify(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return "", false
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), true
	}
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	default:
		return "", false
	}
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
