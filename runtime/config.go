package runtime

import (
	"log/slog"
	"os"
	"sort"
	"strings"
)

// JoinPathFunc resolves a template reference made from inside parent.
type JoinPathFunc func(name, parent string) string

// Config holds everything shared by renders: the autoescape policy, the
// filter table, the global variables and the template registry. A Config is
// built once by a ConfigBuilder and is read-only afterwards, except for the
// registry which has its own lock.
type Config struct {
	autoescape      func(string) bool
	filters         map[string]FilterFunc
	globals         *Context
	joinPath        JoinPathFunc
	strictUndefined bool
	logger          *slog.Logger
	registry        *Registry
}

// DefaultAutoescapeExtensions are the template suffixes autoescaped when no
// policy is configured.
var DefaultAutoescapeExtensions = []string{".html", ".xml"}

type pendingTemplate struct {
	name   string
	source TemplateSource
}

// ConfigBuilder collects configuration before the Config is frozen.
type ConfigBuilder struct {
	autoescape      func(string) bool
	filters         map[string]FilterFunc
	globals         map[string]interface{}
	joinPath        JoinPathFunc
	strictUndefined bool
	logger          *slog.Logger
	fileLevel       *slog.Level
	templates       []pendingTemplate
}

// NewConfigBuilder returns a builder preloaded with the builtin filters.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		filters: builtinFilters(),
		globals: make(map[string]interface{}),
	}
}

// WithAutoescape sets the autoescape policy.
func (b *ConfigBuilder) WithAutoescape(policy func(templateName string) bool) *ConfigBuilder {
	b.autoescape = policy
	return b
}

// WithAutoescapeExtensions autoescapes templates whose name ends in one of exts.
func (b *ConfigBuilder) WithAutoescapeExtensions(exts ...string) *ConfigBuilder {
	b.autoescape = SelectAutoescape(exts, nil, false, false)
	return b
}

// WithFilter adds or replaces a filter.
func (b *ConfigBuilder) WithFilter(name string, filter FilterFunc) *ConfigBuilder {
	b.filters[name] = filter
	return b
}

// WithGlobals merges vars into the global context.
func (b *ConfigBuilder) WithGlobals(vars map[string]interface{}) *ConfigBuilder {
	for k, v := range vars {
		b.globals[k] = v
	}
	return b
}

// WithGlobal sets one global variable.
func (b *ConfigBuilder) WithGlobal(name string, value interface{}) *ConfigBuilder {
	b.globals[name] = value
	return b
}

// WithJoinPath sets how template references are resolved.
func (b *ConfigBuilder) WithJoinPath(fn JoinPathFunc) *ConfigBuilder {
	b.joinPath = fn
	return b
}

// WithStrictUndefined makes printing a missing variable an error.
func (b *ConfigBuilder) WithStrictUndefined(strict bool) *ConfigBuilder {
	b.strictUndefined = strict
	return b
}

// WithLogger sets the logger used for render diagnostics.
func (b *ConfigBuilder) WithLogger(logger *slog.Logger) *ConfigBuilder {
	b.logger = logger
	return b
}

// AddTemplate queues a template for registration at Build time.
func (b *ConfigBuilder) AddTemplate(name string, source TemplateSource) *ConfigBuilder {
	b.templates = append(b.templates, pendingTemplate{name: name, source: source})
	return b
}

// ApplyFile copies the settings of a loaded FileConfig onto the builder.
// A log_level in the file selects a stderr text logger at that level unless
// WithLogger supplies one.
func (b *ConfigBuilder) ApplyFile(fc *FileConfig) *ConfigBuilder {
	if fc == nil {
		return b
	}
	if fc.Autoescape.set {
		if fc.Autoescape.Extensions != nil {
			b.WithAutoescapeExtensions(fc.Autoescape.Extensions...)
		} else {
			enabled := fc.Autoescape.Enabled
			b.WithAutoescape(func(string) bool { return enabled })
		}
	}
	if fc.StrictUndefined {
		b.WithStrictUndefined(true)
	}
	if fc.LogLevel != "" {
		if level, err := ParseLogLevel(fc.LogLevel); err == nil {
			b.fileLevel = &level
		}
	}
	b.WithGlobals(fc.Globals)
	return b
}

// Build freezes the builder into a Config and registers the queued templates.
func (b *ConfigBuilder) Build() (*Config, error) {
	filters := make(map[string]FilterFunc, len(b.filters))
	for name, fn := range b.filters {
		filters[name] = fn
	}

	cfg := &Config{
		autoescape:      b.autoescape,
		filters:         filters,
		globals:         NewContext(b.globals, nil),
		joinPath:        b.joinPath,
		strictUndefined: b.strictUndefined,
		logger:          b.logger,
	}
	if cfg.autoescape == nil {
		cfg.autoescape = SelectAutoescape(DefaultAutoescapeExtensions, nil, false, false)
	}
	if cfg.joinPath == nil {
		cfg.joinPath = func(name, _ string) string { return name }
	}
	if cfg.logger == nil && b.fileLevel != nil {
		cfg.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *b.fileLevel}))
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	cfg.registry = newRegistry(cfg)

	for _, pending := range b.templates {
		if err := cfg.registry.AddTemplate(pending.name, pending.source); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Globals returns the root of every render's context chain.
func (c *Config) Globals() *Context {
	return c.globals
}

// Registry returns the template registry.
func (c *Config) Registry() *Registry {
	return c.registry
}

// GetTemplate looks up a registered template.
func (c *Config) GetTemplate(name string) (*Template, error) {
	return c.registry.GetTemplate(name)
}

// Logger returns the configured logger.
func (c *Config) Logger() *slog.Logger {
	return c.logger
}

// ShouldAutoescape applies the autoescape policy to templateName.
func (c *Config) ShouldAutoescape(templateName string) bool {
	return c.autoescape(templateName)
}

// JoinPath resolves name referenced from inside parent.
func (c *Config) JoinPath(name, parent string) string {
	return c.joinPath(name, parent)
}

// StrictUndefined reports whether missing variables fail when printed.
func (c *Config) StrictUndefined() bool {
	return c.strictUndefined
}

// Filters returns a copy of the filter table.
func (c *Config) Filters() map[string]FilterFunc {
	rv := make(map[string]FilterFunc, len(c.filters))
	for name, fn := range c.filters {
		rv[name] = fn
	}
	return rv
}

// FilterNames returns the names of all configured filters, sorted.
func (c *Config) FilterNames() []string {
	return sortedKeys(c.filters)
}

// EvaluateTemplate runs t over ctx with output going to w, bound to info.
func (c *Config) EvaluateTemplate(t *Template, ctx *Context, w WriteFunc, info *RuntimeInfo) error {
	c.logger.Debug("evaluate template", "template", t.Name(), "parent", info.templateName)
	return t.run(ctx, w, info)
}

func (c *Config) newUndefined(name string) Undefined {
	return NewUndefined(name, c.strictUndefined)
}

// SelectAutoescape returns an autoescape policy that checks file extensions
// against enabled and disabled lists, falling back to the provided defaults
// when no match is found. Names are compared case-insensitively and unnamed
// templates return defaultForString.
func SelectAutoescape(enabled, disabled []string, defaultForString, defaultDecision bool) func(string) bool {
	enabledNorm := normalizeExtensionList(enabled)
	disabledNorm := normalizeExtensionList(disabled)

	return func(name string) bool {
		if name == "" || name == "<string>" {
			return defaultForString
		}

		lower := strings.ToLower(name)
		for _, ext := range disabledNorm {
			if strings.HasSuffix(lower, ext) {
				return false
			}
		}
		for _, ext := range enabledNorm {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		return defaultDecision
	}
}

func normalizeExtensionList(exts []string) []string {
	normalized := make([]string, 0, len(exts))
	seen := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		ext = strings.ToLower(ext)
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		normalized = append(normalized, ext)
	}
	return normalized
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
