package reactive

import "reflect"

// defaultEquals provides type-appropriate equality checking.
// Uses == for common comparable types and reflect.DeepEqual for others.
// Values of different dynamic types are never equal.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return same(av, b)
	case int8:
		return same(av, b)
	case int16:
		return same(av, b)
	case int32:
		return same(av, b)
	case int64:
		return same(av, b)
	case uint:
		return same(av, b)
	case uint8:
		return same(av, b)
	case uint16:
		return same(av, b)
	case uint32:
		return same(av, b)
	case uint64:
		return same(av, b)
	case float32:
		return same(av, b)
	case float64:
		return same(av, b)
	case string:
		return same(av, b)
	case bool:
		return same(av, b)
	default:
		// Fall back to reflect.DeepEqual for slices, maps, structs, etc.
		return reflect.DeepEqual(a, b)
	}
}

func same[V comparable, T any](av V, b T) bool {
	bv, ok := any(b).(V)
	return ok && av == bv
}
