package runtime

import "sort"

// Context is one immutable scope frame in the variable lookup chain.
// Entering a loop body, block body or nested template builds a new node
// in front of the current one instead of mutating it.
type Context struct {
	vars   map[string]interface{}
	parent *Context
}

// NewContext creates a context node over a copy of vars.
func NewContext(vars map[string]interface{}, parent *Context) *Context {
	copied := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return &Context{vars: copied, parent: parent}
}

// Resolve gets a variable, searching parent scopes if not found
func (c *Context) Resolve(name string) (interface{}, bool) {
	for node := c; node != nil; node = node.parent {
		if value, ok := node.vars[name]; ok {
			return value, true
		}
	}
	return nil, false
}

// Lookup resolves name, returning an undefined sentinel on a miss.
func (c *Context) Lookup(name string) interface{} {
	value, ok := c.Resolve(name)
	return MakeUndefined(value, name, ok)
}

// Overlay wraps locals in front of c.
func (c *Context) Overlay(locals map[string]interface{}) *Context {
	return NewContext(locals, c)
}

// Parent returns the enclosing scope, nil for the root.
func (c *Context) Parent() *Context {
	if c == nil {
		return nil
	}
	return c.parent
}

// Depth returns the number of nodes in the chain.
func (c *Context) Depth() int {
	depth := 0
	for node := c; node != nil; node = node.parent {
		depth++
	}
	return depth
}

// Local returns a copy of variables in this node only
func (c *Context) Local() map[string]interface{} {
	result := make(map[string]interface{}, len(c.vars))
	for k, v := range c.vars {
		result[k] = v
	}
	return result
}

// Names returns every visible variable name, sorted.
func (c *Context) Names() []string {
	seen := make(map[string]struct{})
	for node := c; node != nil; node = node.parent {
		for k := range node.vars {
			seen[k] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for k := range seen {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
