package tmpl

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Value is a node of template data.
// It is one of String, Number, Bool, List or Map.
// A nil Value means the path is undefined.
type Value interface {
	value()
}

type (
	// String is a textual scalar.
	String string
	// Number is a numeric scalar.
	Number float64
	// Bool is a boolean scalar.
	Bool bool
	// List is an ordered sequence of values.
	List []Value
	// Map is a keyed mapping of values.
	Map map[string]Value
)

func (String) value() {}
func (Number) value() {}
func (Bool) value()   {}
func (List) value()   {}
func (Map) value()    {}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FromAny converts decoded JSON or plain Go values into a Value.
// Unsupported types are converted to their fmt string form.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return nil
	case Value:
		return val
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case float32:
		return Number(val)
	case int:
		return Number(val)
	case int8:
		return Number(val)
	case int16:
		return Number(val)
	case int32:
		return Number(val)
	case int64:
		return Number(val)
	case uint:
		return Number(val)
	case uint8:
		return Number(val)
	case uint16:
		return Number(val)
	case uint32:
		return Number(val)
	case uint64:
		return Number(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return Number(f)
		}
		return String(val.String())
	case map[string]any:
		out := make(Map, len(val))
		for k, item := range val {
			out[k] = FromAny(item)
		}
		return out
	case map[string]string:
		out := make(Map, len(val))
		for k, item := range val {
			out[k] = String(item)
		}
		return out
	case []any:
		out := make(List, len(val))
		for i, item := range val {
			out[i] = FromAny(item)
		}
		return out
	case []string:
		out := make(List, len(val))
		for i, item := range val {
			out[i] = String(item)
		}
		return out
	case []map[string]any:
		out := make(List, len(val))
		for i, item := range val {
			out[i] = FromAny(item)
		}
		return out
	case fmt.Stringer:
		return String(val.String())
	}

	return fromReflect(reflect.ValueOf(v))
}

// MapFromAny converts a decoded JSON object into a Map.
// Returns nil when v is not an object.
func MapFromAny(v map[string]any) Map {
	if v == nil {
		return nil
	}
	m, _ := FromAny(v).(Map)
	return m
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make(List, rv.Len())
		for i := range rv.Len() {
			out[i] = FromAny(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = FromAny(iter.Value().Interface())
		}
		return out
	}
	return String(fmt.Sprint(rv.Interface()))
}

// ToAny converts a Value back into plain Go values suitable for JSON encoding.
func ToAny(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToAny(item)
		}
		return out
	case Map:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ToAny(item)
		}
		return out
	}
	return nil
}

// Truthy reports whether v selects the if-branch of a conditional.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil:
		return false
	case Bool:
		return bool(val)
	case Number:
		f := float64(val)
		return f != 0 && !math.IsNaN(f)
	case String:
		return val != ""
	case List:
		return len(val) > 0
	case Map:
		return len(val) > 0
	}
	return true
}

// Stringify returns the text substituted for a variable tag.
// Undefined values and maps render as the empty string.
func Stringify(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Number:
		return formatNumber(float64(val))
	case Bool:
		return strconv.FormatBool(bool(val))
	case List:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// AsNumber extracts a float from a Number or a numeric String.
func AsNumber(v Value) (float64, bool) {
	switch val := v.(type) {
	case Number:
		f := float64(val)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case String:
		s := strings.TrimSpace(string(val))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Fixed2 formats f with exactly two decimal places.
func Fixed2(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
