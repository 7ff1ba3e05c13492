package runtime

import "sort"

// TemplateCache memoizes template lookups for one render. It is shared by
// every RuntimeInfo along an extends chain, so an ancestor resolved by the
// child is not resolved again by the parent. A cache belongs to a single
// render and is not safe for concurrent use.
type TemplateCache struct {
	entries map[string]*Template
	misses  int
}

// NewTemplateCache creates an empty cache
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{entries: make(map[string]*Template)}
}

// Get retrieves a template from the cache
func (c *TemplateCache) Get(name string) (*Template, bool) {
	tmpl, ok := c.entries[name]
	if !ok {
		c.misses++
	}
	return tmpl, ok
}

// Set stores a template in the cache
func (c *TemplateCache) Set(name string, tmpl *Template) {
	c.entries[name] = tmpl
}

// Size returns the current number of cached entries
func (c *TemplateCache) Size() int {
	return len(c.entries)
}

// Misses returns how many lookups went to the registry.
func (c *TemplateCache) Misses() int {
	return c.misses
}

// Names returns the cached template names, sorted.
func (c *TemplateCache) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
