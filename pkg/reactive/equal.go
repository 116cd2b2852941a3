package reactive

import "reflect"

// defaultEquals compares a and b by shallow identity.
func defaultEquals[T any](a, b T) bool {
	// Fast paths for the common setting types.
	switch av := any(a).(type) {
	case int:
		return sameAs(av, b)
	case int64:
		return sameAs(av, b)
	case float64:
		return sameAs(av, b)
	case string:
		return sameAs(av, b)
	case bool:
		return sameAs(av, b)
	}
	return shallowEqual(reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem())
}

// shallowEqual reports whether a and b are identical without following
// references into their contents.
func shallowEqual(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		a, b = a.Elem(), b.Elem()
		if a.Type() != b.Type() {
			return false
		}
	}

	switch a.Kind() {
	case reflect.Slice:
		return a.Len() == b.Len() && a.Pointer() == b.Pointer() && a.IsNil() == b.IsNil()
	case reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !shallowEqual(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !shallowEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Invalid:
		return b.Kind() == reflect.Invalid
	}
	return a.Equal(b)
}

// sameAs compares a against b when b holds the same dynamic type.
func sameAs[C comparable, T any](a C, b T) bool {
	bv, ok := any(b).(C)
	return ok && a == bv
}
