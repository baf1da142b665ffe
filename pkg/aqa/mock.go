package aqa

import (
	"fmt"
	"reflect"
	"sync"
)

// Mock records the calls made through a replaced function.
type Mock struct {
	mu       sync.Mutex
	calls    [][]any
	restore  func()
	restored bool
}

// Calls returns the argument lists of every call, in order.
func (m *Mock) Calls() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.calls))
	copy(out, m.calls)
	return out
}

// Restore puts the original function back. Calls keep being recorded if the
// wrapper is still referenced elsewhere.
func (m *Mock) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.restored {
		return
	}
	m.restored = true
	m.restore()
}

func (m *Mock) record(args []reflect.Value) {
	values := make([]any, len(args))
	for i, a := range args {
		values[i] = a.Interface()
	}
	m.mu.Lock()
	m.calls = append(m.calls, values)
	m.mu.Unlock()
}

// wrap builds a function of type typ that records its arguments and
// delegates to replacement.
func (m *Mock) wrap(typ reflect.Type, replacement reflect.Value) reflect.Value {
	return reflect.MakeFunc(typ, func(args []reflect.Value) []reflect.Value {
		m.record(args)
		if typ.IsVariadic() {
			return replacement.CallSlice(args)
		}
		return replacement.Call(args)
	})
}

// Mock replaces the function stored under name in target and records every
// call. target is a pointer to a struct with a func-typed field, or a map
// with string keys holding functions.
func (t *T) Mock(target any, name string, replacement any) *Mock {
	tv := reflect.ValueOf(target)
	rv := reflect.ValueOf(replacement)

	switch {
	case tv.Kind() == reflect.Pointer && !tv.IsNil() && tv.Elem().Kind() == reflect.Struct:
		field := tv.Elem().FieldByName(name)
		if !field.IsValid() {
			t.fail(fmt.Sprintf("Cannot mock '%s': no such property", name), nil)
		}
		if field.Kind() != reflect.Func {
			t.fail(fmt.Sprintf("Cannot mock '%s': property is not a function", name), nil)
		}
		if !field.CanSet() {
			t.fail(fmt.Sprintf("Cannot mock '%s': property is not settable", name), nil)
		}
		t.checkReplacement(name, field.Type(), rv)

		original := reflect.New(field.Type()).Elem()
		original.Set(field)
		m := &Mock{}
		m.restore = func() { field.Set(original) }
		field.Set(m.wrap(field.Type(), rv))
		return m

	case tv.Kind() == reflect.Map && tv.Type().Key().Kind() == reflect.String:
		key := reflect.ValueOf(name).Convert(tv.Type().Key())
		original := tv.MapIndex(key)
		if !original.IsValid() {
			t.fail(fmt.Sprintf("Cannot mock '%s': no such property", name), nil)
		}
		fn := original
		if fn.Kind() == reflect.Interface {
			fn = fn.Elem()
		}
		if !fn.IsValid() || fn.Kind() != reflect.Func {
			t.fail(fmt.Sprintf("Cannot mock '%s': property is not a function", name), nil)
		}
		t.checkReplacement(name, fn.Type(), rv)

		m := &Mock{}
		m.restore = func() { tv.SetMapIndex(key, original) }
		tv.SetMapIndex(key, m.wrap(fn.Type(), rv))
		return m
	}

	t.fail(fmt.Sprintf("Cannot mock '%s': target must be a struct pointer or a map, got %T", name, target), nil)
	return nil
}

func (t *T) checkReplacement(name string, typ reflect.Type, rv reflect.Value) {
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		t.fail(fmt.Sprintf("Cannot mock '%s': replacement is not a function", name), nil)
	}
	if !rv.Type().AssignableTo(typ) {
		t.fail(fmt.Sprintf("Cannot mock '%s': replacement of type %s is not assignable to %s", name, rv.Type(), typ), nil)
	}
}

// MockFunc replaces the function variable *target with replacement and
// records every call.
func MockFunc[F any](t *T, target *F, replacement F) *Mock {
	tv := reflect.ValueOf(target).Elem()
	if tv.Kind() != reflect.Func {
		t.fail(fmt.Sprintf("Cannot mock %s: not a function", tv.Type()), nil)
	}
	rv := reflect.ValueOf(replacement)
	t.checkReplacement(tv.Type().String(), tv.Type(), rv)

	original := *target
	m := &Mock{}
	m.restore = func() { *target = original }
	tv.Set(m.wrap(tv.Type(), rv))
	return m
}
