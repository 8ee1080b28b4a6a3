package mapping

import (
	"reflect"
	"strings"
	"time"
)

// Property is the mapping of a single field.
type Property map[string]any

// Mapping is the body sent to the put-mapping API.
type Mapping struct {
	Properties map[string]Property `json:"properties"`
}

// Mapper lets a document type supply its own properties.
type Mapper interface {
	MappingProperties() map[string]Property
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	mapperType = reflect.TypeOf((*Mapper)(nil)).Elem()
)

// Infer builds the mapping for T. Non-struct types (maps, scalars) produce an
// empty property set, which lets the engine keep dynamic mapping.
func Infer[T any]() Mapping {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if props, ok := custom(t); ok {
		return Mapping{Properties: props}
	}
	if t.Kind() != reflect.Struct {
		return Mapping{Properties: map[string]Property{}}
	}
	return Mapping{Properties: structProperties(t, map[reflect.Type]bool{})}
}

func custom(t reflect.Type) (map[string]Property, bool) {
	switch {
	case t.Implements(mapperType):
		return reflect.Zero(t).Interface().(Mapper).MappingProperties(), true
	case reflect.PointerTo(t).Implements(mapperType):
		return reflect.New(t).Interface().(Mapper).MappingProperties(), true
	default:
		return nil, false
	}
}

func structProperties(t reflect.Type, seen map[reflect.Type]bool) map[string]Property {
	seen[t] = true
	defer delete(seen, t)

	props := make(map[string]Property)
	var embedded []reflect.Type
	for i := range t.NumField() {
		f := t.Field(i)
		name, skip := fieldName(f)
		if skip {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		embeddedStruct := f.Anonymous && ft.Kind() == reflect.Struct
		if !f.IsExported() && !embeddedStruct {
			continue
		}
		// embedded structs without a json name are flattened by encoding/json
		if embeddedStruct && !tagged(f) {
			if !seen[ft] {
				embedded = append(embedded, ft)
			}
			continue
		}
		if p, ok := propertyFor(f.Type, seen); ok {
			props[name] = p
		}
	}

	// promoted fields never shadow a field declared closer to the top
	for _, et := range embedded {
		for name, p := range structProperties(et, seen) {
			if _, ok := props[name]; !ok {
				props[name] = p
			}
		}
	}
	return props
}

func propertyFor(t reflect.Type, seen map[reflect.Type]bool) (Property, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == timeType {
		return Property{"type": "date"}, true
	}

	switch t.Kind() {
	case reflect.String:
		return Property{
			"type": "text",
			"fields": map[string]any{
				"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
			},
		}, true
	case reflect.Bool:
		return Property{"type": "boolean"}, true
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return Property{"type": "integer"}, true
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Property{"type": "long"}, true
	case reflect.Float32:
		return Property{"type": "float"}, true
	case reflect.Float64:
		return Property{"type": "double"}, true
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return Property{"type": "binary"}, true
		}
		return propertyFor(t.Elem(), seen)
	case reflect.Map:
		return Property{"type": "object"}, true
	case reflect.Struct:
		if seen[t] {
			// recursive type; leave the nested shape to dynamic mapping
			return Property{"type": "object"}, true
		}
		if props, ok := custom(t); ok {
			return Property{"properties": props}, true
		}
		return Property{"properties": structProperties(t, seen)}, true
	default:
		return nil, false
	}
}

func tagged(f reflect.StructField) bool {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	return name != ""
}

func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, false
}
