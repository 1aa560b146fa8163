package prompt

import (
	"fmt"
	"reflect"
)

// textOf converts a bound value to its textual form. The
// second result is false when the value is null: untyped
// nil, or a nil pointer, map, slice, func, chan or
// interface. Non-nil pointers are followed.
func textOf(v any) (string, bool) {
	if isNil(v) {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	case fmt.Stringer:
		return val.String(), true
	case error:
		return val.Error(), true
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return textOf(rv.Elem().Interface())
	}

	return fmt.Sprint(v), true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() { //nolint:exhaustive // only nillable kinds matter
	case reflect.Pointer,
		reflect.Map,
		reflect.Slice,
		reflect.Func,
		reflect.Chan,
		reflect.Interface,
		reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
