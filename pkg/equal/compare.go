package equal

import (
	"reflect"
	"regexp"
	"sort"
	"time"
)

// maxIterItems bounds how many elements are pulled from an iterator, so an
// infinite sequence cannot hang a comparison.
const maxIterItems = 1 << 16

// visit identifies a pointer, map or slice pair already being compared.
type visit struct {
	a, e uintptr
	typ  reflect.Type
	n    int
}

type comparer struct {
	path    Path
	diff    *Diff
	visited map[visit]bool
}

func newComparer() *comparer {
	return &comparer{visited: make(map[visit]bool)}
}

func (c *comparer) push(tok Token) { c.path = append(c.path, tok) }

func (c *comparer) pop() { c.path = c.path[:len(c.path)-1] }

func (c *comparer) compare(a, e reflect.Value) bool {
	a, e = unwrap(a), unwrap(e)
	ka, ke := kindOf(a), kindOf(e)

	if ke == kindIgnore {
		return true
	}
	if same(a, ka, e, ke) {
		return true
	}

	ignoreExtra := false
	if ke == kindExtra {
		if e.CanInterface() {
			e = unwrap(reflect.ValueOf(e.Interface().(extraWrapper).value))
		} else {
			e = unwrap(e.Field(0))
		}
		ke = kindOf(e)
		ignoreExtra = true
		if ke == kindIgnore || same(a, ka, e, ke) {
			return true
		}
	}

	origA, origE := a, e
	for ka == kindPointer || ke == kindPointer {
		if ka == kindPointer && ke == kindPointer {
			v := visit{a.Pointer(), e.Pointer(), a.Type(), 0}
			if c.visited[v] {
				return true
			}
			c.visited[v] = true
		}
		if ka == kindPointer {
			a = unwrap(a.Elem())
			ka = kindOf(a)
		}
		if ke == kindPointer {
			e = unwrap(e.Elem())
			ke = kindOf(e)
		}
		if ke == kindIgnore || same(a, ka, e, ke) {
			return true
		}
	}

	if c.revisit(a, e) {
		return true
	}

	switch {
	case ka == kindTime && ke == kindTime:
		return c.compareTimes(a, e)
	case ka == kindRegexp && ke == kindRegexp:
		return c.compareRegexps(a, e)
	case isListLike(ka) && isListLike(ke):
		return c.compareLists(a, ka, e, ke)
	case ka == kindObject && ke == kindObject:
		return c.compareObjects(a, e, ignoreExtra)
	}

	c.record(origA, origE)
	return false
}

// revisit reports whether a map or slice pair is already being compared,
// which happens when the values contain themselves. Pairs are marked on
// first sight; comparison stops at the first difference, so a pair seen
// again can be treated as equal.
func (c *comparer) revisit(a, e reflect.Value) bool {
	if !a.IsValid() || !e.IsValid() || a.Type() != e.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Map, reflect.Slice:
	default:
		return false
	}
	if a.IsNil() || e.IsNil() || a.Len() == 0 {
		return false
	}
	v := visit{a.Pointer(), e.Pointer(), a.Type(), a.Len()}
	if c.visited[v] {
		return true
	}
	c.visited[v] = true
	return false
}

func (c *comparer) compareTimes(a, e reflect.Value) bool {
	ta, okA := timeOf(a)
	te, okE := timeOf(e)
	if !okA || !okE {
		if a.Equal(e) {
			return true
		}
		c.record(a, e)
		return false
	}
	if ta.Equal(te) {
		return true
	}
	c.recordText(ta.Format(time.RFC3339Nano), te.Format(time.RFC3339Nano))
	return false
}

func (c *comparer) compareRegexps(a, e reflect.Value) bool {
	if !a.CanInterface() || !e.CanInterface() {
		c.record(a, e)
		return false
	}
	ra := a.Interface().(*regexp.Regexp)
	re := e.Interface().(*regexp.Regexp)
	if ra.String() == re.String() {
		return true
	}
	c.recordText(formatRegexp(ra), formatRegexp(re))
	return false
}

// compareLists handles slices, arrays and materialized iterators. A length
// mismatch is reported once for the whole value.
func (c *comparer) compareLists(a reflect.Value, ka kind, e reflect.Value, ke kind) bool {
	as := c.elements(a, ka)
	es := c.elements(e, ke)
	if len(as) != len(es) {
		c.recordText(formatElements(as), formatElements(es))
		return false
	}
	for i := range as {
		c.push(indexToken(i))
		if !c.compare(as[i], es[i]) {
			return false
		}
		c.pop()
	}
	return true
}

func (c *comparer) elements(v reflect.Value, k kind) []reflect.Value {
	if k == kindIter {
		return materialize(v)
	}
	out := make([]reflect.Value, v.Len())
	for i := range out {
		out[i] = v.Index(i)
	}
	return out
}

// materialize drains an iter.Seq or iter.Seq2. Seq2 elements become
// two-element [key, value] arrays.
func materialize(fn reflect.Value) []reflect.Value {
	yieldType := fn.Type().In(0)
	var out []reflect.Value
	yield := reflect.MakeFunc(yieldType, func(args []reflect.Value) []reflect.Value {
		if len(args) == 1 {
			out = append(out, args[0])
		} else {
			out = append(out, reflect.ValueOf([2]any{args[0].Interface(), args[1].Interface()}))
		}
		return []reflect.Value{reflect.ValueOf(len(out) < maxIterItems)}
	})
	fn.Call([]reflect.Value{yield})
	return out
}

type property struct {
	name  string
	token Token
	value reflect.Value
}

func (c *comparer) compareObjects(a, e reflect.Value, ignoreExtra bool) bool {
	if a.Kind() == reflect.Struct && e.Kind() == reflect.Struct && a.Type() == e.Type() {
		for i := 0; i < a.NumField(); i++ {
			c.push(fieldToken(a.Type().Field(i).Name))
			if !c.compare(a.Field(i), e.Field(i)) {
				return false
			}
			c.pop()
		}
		return true
	}

	aProps := properties(a)
	eProps := properties(e)

	expectedByName := make(map[string]reflect.Value, len(eProps))
	for _, p := range eProps {
		expectedByName[p.name] = p.value
	}
	actualNames := make(map[string]bool, len(aProps))

	for _, p := range aProps {
		actualNames[p.name] = true
		ev, ok := expectedByName[p.name]
		if !ok {
			if ignoreExtra {
				continue
			}
			ev = absentValue
		}
		c.push(p.token)
		if !c.compare(p.value, ev) {
			return false
		}
		c.pop()
	}

	for _, p := range eProps {
		if actualNames[p.name] {
			continue
		}
		v := unwrap(p.value)
		if k := kindOf(v); k == kindNil || k == kindIgnore {
			continue
		}
		c.push(p.token)
		c.record(absentValue, v)
		c.pop()
		return false
	}
	return true
}

// properties lists the enumerable properties of a struct or map: exported
// struct fields in declaration order, map entries sorted by rendered key.
func properties(v reflect.Value) []property {
	if v.Kind() == reflect.Struct {
		t := v.Type()
		props := make([]property, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			props = append(props, property{name: f.Name, token: fieldToken(f.Name), value: v.Field(i)})
		}
		return props
	}

	keys := v.MapKeys()
	props := make([]property, 0, len(keys))
	for _, k := range keys {
		k = unwrap(k)
		isString := k.IsValid() && k.Kind() == reflect.String
		var name string
		if isString {
			name = k.String()
		} else {
			name = formatValue(k)
		}
		props = append(props, property{name: name, token: keyToken(name, isString), value: v.MapIndex(k)})
	}
	sort.Slice(props, func(i, j int) bool { return props[i].name < props[j].name })
	return props
}

func (c *comparer) record(a, e reflect.Value) {
	d := &Diff{
		Path:     c.path.clone(),
		Actual:   formatValue(a),
		Expected: formatValue(e),
	}
	if a.Kind() == reflect.String && e.Kind() == reflect.String {
		d.Hunk = lineHunk(a.String(), e.String())
	}
	c.diff = d
}

func (c *comparer) recordText(actual, expected string) {
	c.diff = &Diff{
		Path:     c.path.clone(),
		Actual:   actual,
		Expected: expected,
	}
}
