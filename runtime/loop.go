package runtime

import (
	"fmt"
	"reflect"
	"sort"
)

// LoopContext represents the state of a for loop, exposed to the body as
// `loop`. A fresh value is handed to the body on every iteration.
type LoopContext struct {
	Parent    *LoopContext `json:"-"`
	First     bool         `json:"first"`
	Last      bool         `json:"last"`
	Index0    int          `json:"index0"`
	Index     int          `json:"index"`
	Revindex  int          `json:"revindex"`
	Revindex0 int          `json:"revindex0"`
	Length    int          `json:"length"`
}

// Cycle returns args[Index0 % len(args)].
func (l LoopContext) Cycle(args ...interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}
	return args[l.Index0%len(args)]
}

// Depth returns 1 for the outermost loop.
func (l LoopContext) Depth() int {
	depth := 1
	for p := l.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// Unpack describes one loop target: either a single name or a nested tuple.
type Unpack struct {
	Name  string
	Items []Unpack
}

// UnpackSpec is the target list of a for statement, e.g. `for k, (a, b) in ...`.
type UnpackSpec []Unpack

// Name is a single loop target.
func Name(name string) Unpack {
	return Unpack{Name: name}
}

// Tuple is a nested destructuring target.
func Tuple(items ...Unpack) Unpack {
	return Unpack{Items: items}
}

// Names builds a flat spec from names.
func Names(names ...string) UnpackSpec {
	spec := make(UnpackSpec, len(names))
	for i, n := range names {
		spec[i] = Name(n)
	}
	return spec
}

// IsSimple reports whether s binds the whole element to one name.
func (s UnpackSpec) IsSimple() bool {
	return len(s) == 1 && s[0].Items == nil
}

// Arity returns the number of names bound per element.
func (s UnpackSpec) Arity() int {
	n := 0
	for _, u := range s {
		if u.Items == nil {
			n++
		} else {
			n += UnpackSpec(u.Items).Arity()
		}
	}
	return n
}

// Unpack destructures element positionally into one value per name, in
// depth-first order. Missing positions become undefined.
func (s UnpackSpec) Unpack(element interface{}) []interface{} {
	out := make([]interface{}, 0, s.Arity())
	return s.unpackInto(out, element)
}

func (s UnpackSpec) unpackInto(out []interface{}, element interface{}) []interface{} {
	for i, target := range s {
		item, ok := indexElement(element, i)
		if target.Items != nil {
			out = UnpackSpec(target.Items).unpackInto(out, item)
			continue
		}
		out = append(out, MakeUndefined(item, target.Name, ok))
	}
	return out
}

func indexElement(element interface{}, i int) (interface{}, bool) {
	if element == nil || IsUndefined(element) {
		return nil, false
	}
	if seq, ok := element.([]interface{}); ok {
		if i < len(seq) {
			return seq[i], true
		}
		return nil, false
	}
	val := reflect.ValueOf(element)
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		if i < val.Len() {
			return val.Index(i).Interface(), true
		}
	case reflect.String:
		runes := []rune(val.String())
		if i < len(runes) {
			return string(runes[i]), true
		}
	}
	return nil, false
}

// SequenceFromIterable normalises an iterable into an ordered slice.
// Sequences pass through, strings iterate by rune and mappings become
// [key, value] pairs sorted by key.
func SequenceFromIterable(iterable interface{}) ([]interface{}, error) {
	if iterable == nil || IsUndefined(iterable) {
		return nil, nil
	}

	switch v := iterable.(type) {
	case []interface{}:
		return v, nil
	case []string:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = item
		}
		return result, nil
	case string:
		return runesOf(v), nil
	case Markup:
		return runesOf(string(v)), nil
	case map[string]interface{}:
		return SequenceFromMap(v), nil
	}

	val := reflect.ValueOf(iterable)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		result := make([]interface{}, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = val.Index(i).Interface()
		}
		return result, nil
	case reflect.Map:
		type pair struct {
			sortKey string
			key     interface{}
			value   interface{}
		}
		pairs := make([]pair, 0, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			k := iter.Key().Interface()
			pairs = append(pairs, pair{sortKey: fmt.Sprint(k), key: k, value: iter.Value().Interface()})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].sortKey < pairs[j].sortKey })
		result := make([]interface{}, len(pairs))
		for i, p := range pairs {
			result[i] = []interface{}{p.key, p.value}
		}
		return result, nil
	case reflect.String:
		return runesOf(val.String()), nil
	}

	return nil, NewError(ErrorTypeTemplate, fmt.Sprintf("cannot iterate over %T", iterable))
}

// SequenceFromMap returns the [key, value] pairs of m sorted by key.
func SequenceFromMap(m map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]interface{}, len(keys))
	for i, k := range keys {
		result[i] = []interface{}{k, m[k]}
	}
	return result
}

func runesOf(s string) []interface{} {
	result := make([]interface{}, 0, len(s))
	for _, r := range s {
		result = append(result, string(r))
	}
	return result
}

// Each drives body over items with loop metadata. When items is empty,
// elseFn runs instead (if set). The first error aborts the loop.
func Each[T any](items []T, parent *LoopContext, body func(loop LoopContext, item T) error, elseFn func() error) error {
	n := len(items)
	if n == 0 {
		if elseFn != nil {
			return elseFn()
		}
		return nil
	}

	loop := LoopContext{
		Parent:    parent,
		First:     true,
		Index0:    0,
		Index:     1,
		Revindex:  n,
		Revindex0: n - 1,
		Length:    n,
	}
	for i, item := range items {
		loop.Last = i+1 == n
		if err := body(loop, item); err != nil {
			return err
		}
		loop.First = false
		loop.Index0++
		loop.Index++
		loop.Revindex--
		loop.Revindex0--
	}
	return nil
}

// IterateFunc is the body of a dynamic loop: the loop state followed by one
// value per name in the unpack spec.
type IterateFunc func(loop LoopContext, values ...interface{}) error

// Iterate normalises iterable and runs body once per element, destructuring
// each element according to spec. A nil element bound to a single name
// arrives as undefined carrying that name.
func Iterate(iterable interface{}, parent *LoopContext, spec UnpackSpec, body IterateFunc, elseFn func() error) error {
	seq, err := SequenceFromIterable(iterable)
	if err != nil {
		return err
	}

	simple := spec.IsSimple()
	return Each(seq, parent, func(loop LoopContext, item interface{}) error {
		if simple {
			return body(loop, MakeUndefined(item, spec[0].Name, item != nil))
		}
		return body(loop, spec.Unpack(item)...)
	}, elseFn)
}
