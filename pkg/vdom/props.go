package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// domProperties are set as properties on the live node rather than as
// attributes.
var domProperties = map[string]bool{
	"value":    true,
	"checked":  true,
	"selected": true,
	"disabled": true,
}

// IsProperty reports whether name is diffed as a DOM property.
func IsProperty(name string) bool {
	return domProperties[name]
}

// AttrValue converts an attribute value to its string form. The second
// result is false when the value means "absent" (nil or false).
func AttrValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		if !val {
			return "", false
		}
		return "", true
	case string:
		return val, true
	case Style:
		return val.String(), true
	case map[string]string:
		return Style(val).String(), true
	default:
		return PropToString(v), true
	}
}

// PropToString converts a prop value to a string for the patch.
func PropToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}

// sortedKeys returns the diffable prop names of both maps, sorted, so the
// edit script is deterministic.
func sortedKeys(prev, next Props) []string {
	keys := make([]string, 0, len(prev)+len(next))
	for k := range prev {
		if diffable(k) {
			keys = append(keys, k)
		}
	}
	for k := range next {
		if _, ok := prev[k]; !ok && diffable(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func diffable(name string) bool {
	return name != "key" && !IsEventHandler(name)
}

func styleKeys(prev, next Style) []string {
	keys := make([]string, 0, len(prev)+len(next))
	for k := range prev {
		keys = append(keys, k)
	}
	for k := range next {
		if _, ok := prev[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// asStyle returns v as a style map when it is one.
func asStyle(v any) (Style, bool) {
	switch s := v.(type) {
	case Style:
		return s, true
	case map[string]string:
		return Style(s), true
	}
	return nil, false
}
