package runtime

import (
	"fmt"
	"sync"
)

// TemplateSource is something the registry can hold: a *Template or a
// TemplateFactory.
type TemplateSource interface {
	resolve(cfg *Config) (*Template, error)
}

// TemplateFactory builds a template on first use.
type TemplateFactory func(cfg *Config) (*Template, error)

func (f TemplateFactory) resolve(cfg *Config) (*Template, error) {
	return f(cfg)
}

func (t *Template) resolve(*Config) (*Template, error) {
	return t, nil
}

type registryEntry struct {
	name   string
	source TemplateSource
	once   sync.Once
	tmpl   *Template
	err    error
}

func (e *registryEntry) get(cfg *Config) (*Template, error) {
	e.once.Do(func() {
		tmpl, err := e.source.resolve(cfg)
		switch {
		case err != nil:
			e.err = NewTemplateNotFound(e.name, err)
		case tmpl == nil:
			e.err = NewTemplateNotFound(e.name, fmt.Errorf("factory returned no template"))
		default:
			e.tmpl = tmpl.registered(e.name, cfg)
		}
	})
	return e.tmpl, e.err
}

// Registry maps template names to templates. It is safe for concurrent use.
type Registry struct {
	config  *Config
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

func newRegistry(cfg *Config) *Registry {
	return &Registry{
		config:  cfg,
		entries: make(map[string]*registryEntry),
	}
}

// AddTemplate registers source under name, replacing any previous entry.
// Factories are invoked once, on first lookup.
func (r *Registry) AddTemplate(name string, source TemplateSource) error {
	if name == "" {
		return NewError(ErrorTypeConfig, "template name cannot be empty")
	}
	if source == nil {
		return NewError(ErrorTypeConfig, fmt.Sprintf("template %q has no source", name))
	}
	if tmpl, ok := source.(*Template); ok && tmpl == nil {
		return NewError(ErrorTypeConfig, fmt.Sprintf("template %q is nil", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &registryEntry{name: name, source: source}
	return nil
}

// AddTemplates registers every entry of sources.
func (r *Registry) AddTemplates(sources map[string]TemplateSource) error {
	for _, name := range sortedKeys(sources) {
		if err := r.AddTemplate(name, sources[name]); err != nil {
			return err
		}
	}
	return nil
}

// GetTemplate returns the template registered under name.
func (r *Registry) GetTemplate(name string) (*Template, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, NewTemplateNotFound(name, nil)
	}
	return entry.get(r.config)
}

// RemoveTemplate drops name from the registry.
func (r *Registry) RemoveTemplate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// ListTemplates returns the registered names, sorted.
func (r *Registry) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.entries)
}
