package equal

import (
	"math"
	"reflect"
	"time"
)

func same(a reflect.Value, ka kind, e reflect.Value, ke kind) bool {
	if isNilish(ka) && isNilish(ke) {
		return true
	}
	if ka != ke {
		return false
	}

	switch ka {
	case kindBool:
		return a.Bool() == e.Bool()
	case kindNumber:
		return numbersEqual(a, e)
	case kindString:
		return a.String() == e.String()
	case kindTime:
		ta, okA := timeOf(a)
		te, okE := timeOf(e)
		if okA && okE {
			return ta.Equal(te)
		}
		return a.Equal(e)
	case kindRegexp, kindPointer:
		return a.Pointer() == e.Pointer()
	case kindList:
		if a.Type() != e.Type() {
			return false
		}
		if a.Kind() == reflect.Slice {
			return a.Pointer() == e.Pointer() && a.Len() == e.Len()
		}
		return a.Comparable() && e.Comparable() && a.Equal(e)
	case kindObject:
		if a.Type() != e.Type() {
			return false
		}
		if a.Kind() == reflect.Map {
			return a.Pointer() == e.Pointer()
		}
		return a.Comparable() && e.Comparable() && a.Equal(e)
	case kindOther:
		switch a.Kind() {
		case reflect.Chan, reflect.UnsafePointer, reflect.Func:
			return a.Type() == e.Type() && a.Pointer() == e.Pointer()
		case reflect.Complex64, reflect.Complex128:
			return a.Complex() == e.Complex()
		}
	}
	return false
}

// numbersEqual compares numbers across Go numeric types by value.
func numbersEqual(a, e reflect.Value) bool {
	switch {
	case isSigned(a) && isSigned(e):
		return a.Int() == e.Int()
	case isUnsigned(a) && isUnsigned(e):
		return a.Uint() == e.Uint()
	case isSigned(a) && isUnsigned(e):
		return a.Int() >= 0 && uint64(a.Int()) == e.Uint()
	case isUnsigned(a) && isSigned(e):
		return e.Int() >= 0 && uint64(e.Int()) == a.Uint()
	}
	fa, fe := toFloat(a), toFloat(e)
	if math.IsNaN(fa) && math.IsNaN(fe) {
		return true
	}
	return fa == fe
}

func timeOf(v reflect.Value) (time.Time, bool) {
	if !v.CanInterface() {
		return time.Time{}, false
	}
	t, ok := v.Interface().(time.Time)
	return t, ok
}
