package runtime

import (
	"fmt"
	"sync"
)

// Namespace holds attributes a compiled program reassigns from inside a loop
// body, as in `{% set ns.total = ns.total + 1 %}`. Context nodes never change
// once built, so such assignments cannot go through the chain. A namespace
// is a mapping and cannot be printed.
type Namespace struct {
	mu    sync.Mutex
	attrs map[string]interface{}
}

// NewNamespace returns a namespace holding a copy of initial, the keyword
// arguments of `namespace(...)`.
func NewNamespace(initial map[string]interface{}) *Namespace {
	attrs := make(map[string]interface{}, len(initial))
	for name, value := range initial {
		attrs[name] = value
	}
	return &Namespace{attrs: attrs}
}

// Get returns the attribute and whether it was set.
func (ns *Namespace) Get(name string) (interface{}, bool) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	value, ok := ns.attrs[name]
	return value, ok
}

// Set assigns an attribute.
func (ns *Namespace) Set(name string, value interface{}) {
	ns.mu.Lock()
	ns.attrs[name] = value
	ns.mu.Unlock()
}

// Increment adds delta to a numeric attribute and returns the new value. A
// missing attribute counts as 0. The sum stays an integer when both sides
// are integers.
func (ns *Namespace) Increment(name string, delta interface{}) (interface{}, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	current, ok := ns.attrs[name]
	if !ok {
		current = 0
	}
	a, okA := classifyNumber(current)
	b, okB := classifyNumber(delta)
	if !okA || !okB {
		return nil, NewError(ErrorTypeTemplate, fmt.Sprintf("cannot add %T to %T in namespace attribute '%s'", delta, current, name))
	}

	var sum interface{}
	if a.kind == numberInteger && b.kind == numberInteger {
		sum = a.intValue + b.intValue
	} else {
		sum = a.floatValue + b.floatValue
	}
	ns.attrs[name] = sum
	return sum, nil
}

// Append adds value to the list stored under name, creating it when missing.
// The stored list is replaced, not mutated, so copies handed out earlier by
// Get or Items do not change.
func (ns *Namespace) Append(name string, value interface{}) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	var list []interface{}
	if current, ok := ns.attrs[name]; ok && current != nil {
		items, isList := current.([]interface{})
		if !isList {
			return NewError(ErrorTypeTemplate, fmt.Sprintf("namespace attribute '%s' is not a list", name))
		}
		list = make([]interface{}, len(items), len(items)+1)
		copy(list, items)
	}
	ns.attrs[name] = append(list, value)
	return nil
}

// Update merges a mapping, as `ns.update(other)` does.
func (ns *Namespace) Update(values interface{}) error {
	if values == nil {
		return nil
	}
	m, ok := toStringMap(values)
	if !ok {
		return NewError(ErrorTypeTemplate, fmt.Sprintf("cannot update namespace from %T", values))
	}
	ns.mu.Lock()
	for name, value := range m {
		ns.attrs[name] = value
	}
	ns.mu.Unlock()
	return nil
}

// Items returns a shallow copy of the attributes.
func (ns *Namespace) Items() map[string]interface{} {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	items := make(map[string]interface{}, len(ns.attrs))
	for name, value := range ns.attrs {
		items[name] = value
	}
	return items
}
