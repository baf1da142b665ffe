package equal

import (
	"reflect"
	"regexp"
	"time"
)

// kind tags a value for comparison. Compare matches on pairs of kinds
// instead of probing types ad hoc.
type kind int

const (
	kindMissing kind = iota // property absent from an object
	kindNil
	kindIgnore
	kindExtra
	kindBool
	kindNumber
	kindString
	kindTime
	kindRegexp
	kindList
	kindIter
	kindObject
	kindPointer
	kindOther
)

// absent marks the missing side of a property comparison.
type absent struct{}

var (
	absentValue = reflect.ValueOf(absent{})

	absentType = reflect.TypeOf(absent{})
	ignoreType = reflect.TypeOf(ignoreSentinel{})
	extraType  = reflect.TypeOf(extraWrapper{})
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf((*regexp.Regexp)(nil))
)

// unwrap strips interface layers. A nil interface becomes the invalid Value.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func kindOf(v reflect.Value) kind {
	if !v.IsValid() {
		return kindNil
	}
	switch v.Type() {
	case absentType:
		return kindMissing
	case ignoreType:
		return kindIgnore
	case extraType:
		return kindExtra
	case timeType:
		return kindTime
	case regexpType:
		if v.IsNil() {
			return kindNil
		}
		return kindRegexp
	}

	switch v.Kind() {
	case reflect.Bool:
		return kindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return kindNumber
	case reflect.String:
		return kindString
	case reflect.Array:
		return kindList
	case reflect.Slice:
		if v.IsNil() {
			return kindNil
		}
		return kindList
	case reflect.Map:
		if v.IsNil() {
			return kindNil
		}
		return kindObject
	case reflect.Struct:
		return kindObject
	case reflect.Pointer:
		if v.IsNil() {
			return kindNil
		}
		return kindPointer
	case reflect.Func:
		if v.IsNil() {
			return kindNil
		}
		if v.CanInterface() && isIterFunc(v.Type()) {
			return kindIter
		}
		return kindOther
	case reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return kindNil
		}
		return kindOther
	case reflect.Interface:
		if v.IsNil() {
			return kindNil
		}
		return kindOf(v.Elem())
	}
	return kindOther
}

func isNilish(k kind) bool {
	return k == kindNil || k == kindMissing
}

func isListLike(k kind) bool {
	return k == kindList || k == kindIter
}

// isIterFunc reports whether t has the shape of iter.Seq or iter.Seq2.
func isIterFunc(t reflect.Type) bool {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return false
	}
	return yield.NumIn() == 1 || yield.NumIn() == 2
}

func isSigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// toFloat converts any numeric Value to float64.
func toFloat(v reflect.Value) float64 {
	switch {
	case isSigned(v):
		return float64(v.Int())
	case isUnsigned(v):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
