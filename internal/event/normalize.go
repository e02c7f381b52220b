package event

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Mapper exposes mapping-style access on payloads that are not plain maps.
// When a payload implements it, mapping entries win over reflected attributes
// on key collision: mapping data is considered more authoritative.
type Mapper interface {
	Mapping() map[string]any
}

// strategy extracts a partial property mapping from a raw callback argument.
// Strategies run in a fixed order and later results win on key collision.
type strategy func(arg any) map[string]string

var strategies = []strategy{fromAttributes, fromMapping}

// Normalize flattens a host-defined callback payload into string properties.
// It tries attribute introspection first, then mapping access, then lifts a
// nested "info" value to the top level (removing the raw key). A nil payload
// yields an empty, non-nil mapping. Normalize never panics on any input.
func Normalize(arg any) map[string]string {
	props := make(map[string]string)
	if arg == nil {
		return props
	}
	for _, extract := range strategies {
		for k, v := range extract(arg) {
			props[k] = v
		}
	}
	if info, ok := infoValue(arg); ok {
		delete(props, "info")
		for k, v := range Normalize(info) {
			props[k] = v
		}
	}
	return props
}

// fromAttributes reflects over the exported fields of a struct (or pointer to
// one). Field names are taken from the json tag when present, otherwise the
// snake_case of the Go name.
func fromAttributes(arg any) map[string]string {
	v := reflect.ValueOf(arg)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	out := make(map[string]string, v.NumField())
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			continue
		}
		out[fieldKey(f)] = stringify(fv.Interface())
	}
	return out
}

// fromMapping copies entries from map-shaped payloads, including types that
// implement Mapper.
func fromMapping(arg any) map[string]string {
	var src map[string]any
	switch m := arg.(type) {
	case map[string]any:
		src = m
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	case Mapper:
		src = m.Mapping()
	default:
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = stringify(v)
	}
	return out
}

// infoValue finds a nested "info" sub-object: the "info" key of a map-shaped
// payload, or an exported Info field of a struct.
func infoValue(arg any) (any, bool) {
	switch m := arg.(type) {
	case map[string]any:
		v, ok := m["info"]
		return v, ok && v != nil
	case Mapper:
		v, ok := m.Mapping()["info"]
		if ok && v != nil {
			return v, true
		}
	}
	v := reflect.ValueOf(arg)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	f := v.FieldByName("Info")
	if !f.IsValid() || (f.Kind() == reflect.Pointer && f.IsNil()) {
		return nil, false
	}
	return f.Interface(), true
}

func fieldKey(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("json"); ok {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return snakeCase(f.Name)
}

// snakeCase converts CamelCase field names to snake_case (RawCell -> raw_cell,
// CellID -> cell_id).
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(runes[i-1]) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
