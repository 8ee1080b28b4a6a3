package property

import (
	"reflect"
	"strings"
)

// Has reports whether obj exposes an attribute called name. With normalize,
// surrounding whitespace is ignored and the comparison is case-insensitive;
// otherwise the field name, json tag name or map key must match exactly.
func Has(obj any, name string, normalize bool) bool {
	v, ok := indirect(reflect.ValueOf(obj))
	if !ok {
		return false
	}
	switch v.Kind() {
	case reflect.Struct:
		_, found := lookupField(v, name, normalize)
		return found
	case reflect.Map:
		_, found := lookupKey(v, name, normalize)
		return found
	default:
		return false
	}
}

// Get returns the current value of the attribute called name, matched
// case-insensitively. The second result is false when obj has no such attribute.
func Get(obj any, name string) (any, bool) {
	v, ok := indirect(reflect.ValueOf(obj))
	if !ok {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Struct:
		fv, found := lookupField(v, name, true)
		if !found || !fv.CanInterface() {
			return nil, false
		}
		return fv.Interface(), true
	case reflect.Map:
		key, found := lookupKey(v, name, true)
		if !found {
			return nil, false
		}
		return v.MapIndex(key).Interface(), true
	default:
		return nil, false
	}
}

// Set assigns value to the attribute called name (matched case-insensitively)
// and returns the resulting object. Pointers and maps are modified in place;
// struct values are copied and the modified copy is returned. When the
// attribute is missing or value does not fit its type, obj is returned as is.
func Set[T any](obj T, name string, value any) T {
	rv := reflect.ValueOf(obj)
	if !rv.IsValid() {
		return obj
	}

	switch rv.Kind() {
	case reflect.Pointer:
		target, ok := indirect(rv)
		if ok {
			assign(target, name, value)
		}
		return obj
	case reflect.Map:
		assign(rv, name, value)
		return obj
	case reflect.Struct:
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		if !assign(cp, name, value) {
			return obj
		}
		out, ok := cp.Interface().(T)
		if !ok {
			return obj
		}
		return out
	default:
		return obj
	}
}

func assign(target reflect.Value, name string, value any) bool {
	switch target.Kind() {
	case reflect.Struct:
		fv, found := lookupField(target, name, true)
		if !found || !fv.CanSet() {
			return false
		}
		cv, ok := convert(value, fv.Type())
		if !ok {
			return false
		}
		fv.Set(cv)
		return true
	case reflect.Map:
		key, found := lookupKey(target, name, true)
		if !found {
			return false
		}
		cv, ok := convert(value, target.Type().Elem())
		if !ok {
			return false
		}
		target.SetMapIndex(key, cv)
		return true
	default:
		return false
	}
}

// convert adapts value to type to. Only assignable values, strings into
// named string types and strings into *string fields are accepted.
func convert(value any, to reflect.Type) (reflect.Value, bool) {
	if value == nil {
		switch to.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			return reflect.Zero(to), true
		default:
			return reflect.Value{}, false
		}
	}

	vv := reflect.ValueOf(value)
	switch {
	case vv.Type().AssignableTo(to):
		return vv, true
	case vv.Kind() == reflect.String && to.Kind() == reflect.String:
		return vv.Convert(to), true
	case vv.Kind() == reflect.String && to.Kind() == reflect.Pointer && to.Elem().Kind() == reflect.String:
		p := reflect.New(to.Elem())
		p.Elem().Set(vv.Convert(to.Elem()))
		return p, true
	default:
		return reflect.Value{}, false
	}
}

// indirect follows pointers and interfaces down to a concrete value.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func lookupField(v reflect.Value, name string, normalize bool) (reflect.Value, bool) {
	for _, f := range reflect.VisibleFields(v.Type()) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if !matches(f.Name, name, normalize) && !matches(jsonName(f), name, normalize) {
			continue
		}
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			// promoted through a nil embedded pointer
			return reflect.Value{}, false
		}
		return fv, true
	}
	return reflect.Value{}, false
}

func lookupKey(v reflect.Value, name string, normalize bool) (reflect.Value, bool) {
	if v.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, false
	}
	if exact := reflect.ValueOf(name).Convert(v.Type().Key()); v.MapIndex(exact).IsValid() {
		return exact, true
	}
	iter := v.MapRange()
	for iter.Next() {
		if matches(iter.Key().String(), name, normalize) {
			return iter.Key(), true
		}
	}
	return reflect.Value{}, false
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func matches(candidate, name string, normalize bool) bool {
	if candidate == "" {
		return false
	}
	if normalize {
		return strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(name))
	}
	return candidate == name
}
