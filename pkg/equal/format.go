package equal

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	maxFormatDepth = 6
	maxFormatItems = 20
)

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

// Format renders v the way assertion messages and diffs show it: strings
// quoted, containers expanded up to a fixed depth and length.
func Format(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<%T: panic while formatting: %v>", v, r)
		}
	}()
	return formatValue(reflect.ValueOf(v))
}

// formatValue does not recover panics raised by user code. Compare relies on
// them to report a ComparisonError.
func formatValue(v reflect.Value) string {
	f := formatter{seen: make(map[uintptr]bool)}
	var b strings.Builder
	f.write(&b, v, 0)
	return b.String()
}

func formatRegexp(re *regexp.Regexp) string {
	return "/" + re.String() + "/"
}

func formatElements(vs []reflect.Value) string {
	f := formatter{seen: make(map[uintptr]bool)}
	var b strings.Builder
	f.writeList(&b, vs, 0)
	return b.String()
}

type formatter struct {
	seen map[uintptr]bool
}

func (f *formatter) write(b *strings.Builder, v reflect.Value, depth int) {
	v = unwrap(v)
	if !v.IsValid() {
		b.WriteString("nil")
		return
	}

	switch v.Type() {
	case absentType:
		b.WriteString("<missing>")
		return
	case ignoreType:
		b.WriteString("Ignore")
		return
	case extraType:
		b.WriteString("IgnoreExtra(")
		f.write(b, v.Field(0), depth)
		b.WriteByte(')')
		return
	}

	if s, ok := customString(v); ok {
		b.WriteString(s)
		return
	}

	switch v.Kind() {
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32:
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 32))
	case reflect.Float64:
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		b.WriteString(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	case reflect.String:
		b.WriteString(strconv.Quote(v.String()))
	case reflect.Slice:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		f.writeIndexed(b, v, depth)
	case reflect.Array:
		f.writeIndexed(b, v, depth)
	case reflect.Map:
		f.writeMap(b, v, depth)
	case reflect.Struct:
		f.writeStruct(b, v, depth)
	case reflect.Pointer:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		if f.seen[v.Pointer()] {
			b.WriteString("<cycle>")
			return
		}
		f.seen[v.Pointer()] = true
		b.WriteByte('&')
		f.write(b, v.Elem(), depth)
		delete(f.seen, v.Pointer())
	case reflect.Func:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		if v.CanInterface() && isIterFunc(v.Type()) {
			if depth >= maxFormatDepth {
				b.WriteString("[...]")
				return
			}
			f.writeList(b, materialize(v), depth)
			return
		}
		b.WriteString(v.Type().String())
	default:
		if v.Kind() == reflect.Chan && v.IsNil() {
			b.WriteString("nil")
			return
		}
		b.WriteString(v.Type().String())
	}
}

// customString applies time, regexp, error and Stringer renderings.
func customString(v reflect.Value) (string, bool) {
	switch v.Type() {
	case timeType:
		if t, ok := timeOf(v); ok {
			return t.Format(time.RFC3339Nano), true
		}
		return "", false
	case regexpType:
		if v.IsNil() || !v.CanInterface() {
			return "", false
		}
		return formatRegexp(v.Interface().(*regexp.Regexp)), true
	}

	if !v.CanInterface() {
		return "", false
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return "", false
	}
	if v.Type().Implements(errorType) {
		err := v.Interface().(error)
		return fmt.Sprintf("%T(%q)", err, err.Error()), true
	}
	if v.Type().Implements(stringerType) {
		return v.Interface().(fmt.Stringer).String(), true
	}
	return "", false
}

func (f *formatter) writeIndexed(b *strings.Builder, v reflect.Value, depth int) {
	if depth >= maxFormatDepth {
		b.WriteString("[...]")
		return
	}
	n := min(v.Len(), maxFormatItems+1)
	vs := make([]reflect.Value, n)
	for i := range vs {
		vs[i] = v.Index(i)
	}
	f.writeList(b, vs, depth)
}

func (f *formatter) writeList(b *strings.Builder, vs []reflect.Value, depth int) {
	b.WriteByte('[')
	for i, item := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		if i == maxFormatItems {
			b.WriteString("...")
			break
		}
		f.write(b, item, depth+1)
	}
	b.WriteByte(']')
}

func (f *formatter) writeMap(b *strings.Builder, v reflect.Value, depth int) {
	if v.IsNil() {
		b.WriteString("nil")
		return
	}
	if depth >= maxFormatDepth {
		b.WriteString("{...}")
		return
	}

	type entry struct {
		key   string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var kb strings.Builder
		f.write(&kb, iter.Key(), depth+1)
		entries = append(entries, entry{key: kb.String(), value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	b.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		if i == maxFormatItems {
			b.WriteString("...")
			break
		}
		b.WriteString(e.key)
		b.WriteString(": ")
		f.write(b, e.value, depth+1)
	}
	b.WriteByte('}')
}

func (f *formatter) writeStruct(b *strings.Builder, v reflect.Value, depth int) {
	t := v.Type()
	if t.Name() != "" {
		b.WriteString(t.String())
	}
	if depth >= maxFormatDepth {
		b.WriteString("{...}")
		return
	}
	b.WriteByte('{')
	for i := 0; i < t.NumField(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.Field(i).Name)
		b.WriteString(": ")
		f.write(b, v.Field(i), depth+1)
	}
	b.WriteByte('}')
}
