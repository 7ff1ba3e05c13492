package runtime

import (
	"fmt"
	"sort"
)

// FilterFunc represents a filter function. The receiver value is passed
// first, followed by the arguments from the filter call.
type FilterFunc func(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error)

// InfoBehavior selects what a derived RuntimeInfo inherits from its creator.
type InfoBehavior int

const (
	// BehaviorExtends carries the child's block overrides into the ancestor.
	BehaviorExtends InfoBehavior = iota
	// BehaviorInclude renders another template with its own blocks.
	BehaviorInclude
	// BehaviorImport renders another template only to collect its exports.
	BehaviorImport
)

func (b InfoBehavior) String() string {
	switch b {
	case BehaviorExtends:
		return "extends"
	case BehaviorInclude:
		return "include"
	case BehaviorImport:
		return "import"
	default:
		return "unknown"
	}
}

// RuntimeInfo is the state of one template instantiation. The primary
// template gets one, and every ancestor reached through extends gets its own.
type RuntimeInfo struct {
	config         *Config
	templateName   string
	autoescape     bool
	filters        map[string]FilterFunc
	blockExecutors map[string][]BlockExecutor
	templateCache  *TemplateCache
	exports        map[string]interface{}
}

// NewRuntimeInfo creates the info for templateName. Autoescaping is decided
// here from the config policy and never changes afterwards.
func NewRuntimeInfo(config *Config, templateName string) *RuntimeInfo {
	return &RuntimeInfo{
		config:         config,
		templateName:   templateName,
		autoescape:     config.ShouldAutoescape(templateName),
		filters:        config.Filters(),
		blockExecutors: make(map[string][]BlockExecutor),
		templateCache:  NewTemplateCache(),
		exports:        make(map[string]interface{}),
	}
}

// Config returns the owning configuration.
func (info *RuntimeInfo) Config() *Config {
	return info.config
}

// TemplateName returns the name this info was created for.
func (info *RuntimeInfo) TemplateName() string {
	return info.templateName
}

// Autoescape reports whether output of this instantiation is HTML-escaped.
func (info *RuntimeInfo) Autoescape() bool {
	return info.autoescape
}

// TemplateCache returns the cache shared along the extends chain.
func (info *RuntimeInfo) TemplateCache() *TemplateCache {
	return info.templateCache
}

// MakeInfo derives the info for another template rendered from this one.
// All derived infos share the template cache.
func (info *RuntimeInfo) MakeInfo(templateName string, behavior InfoBehavior) *RuntimeInfo {
	rv := NewRuntimeInfo(info.config, templateName)
	rv.templateCache = info.templateCache
	if behavior == BehaviorExtends {
		for name, executors := range info.blockExecutors {
			rv.blockExecutors[name] = append([]BlockExecutor(nil), executors...)
		}
	}
	return rv
}

// CallFilter applies the named filter to value.
func (info *RuntimeInfo) CallFilter(name string, value interface{}, args ...interface{}) (interface{}, error) {
	filter, ok := info.filters[name]
	if !ok {
		return nil, NewFilterError(name, "no filter named "+name, nil)
	}
	result, err := filter(info, value, args...)
	if err != nil {
		if IsFilterError(err) {
			return nil, err
		}
		return nil, NewFilterError(name, err.Error(), err)
	}
	return result, nil
}

// HasFilter reports whether the filter table contains name.
func (info *RuntimeInfo) HasFilter(name string) bool {
	_, ok := info.filters[name]
	return ok
}

// Finalize converts value to output text honouring this info's autoescape
// policy. Composite values are reported to the config logger.
func (info *RuntimeInfo) Finalize(value interface{}) (string, error) {
	s, err := Finalize(value, info.autoescape)
	if err != nil && IsCompositeValueError(err) {
		info.config.Logger().Error("cannot print composite value",
			"template", info.templateName,
			"type", fmt.Sprintf("%T", value))
	}
	return s, err
}

// ExportVar records a value other templates can import.
func (info *RuntimeInfo) ExportVar(name string, value interface{}) {
	info.exports[name] = value
}

// Exports returns a copy of the exported values.
func (info *RuntimeInfo) Exports() map[string]interface{} {
	result := make(map[string]interface{}, len(info.exports))
	for k, v := range info.exports {
		result[k] = v
	}
	return result
}

// BlockNames returns the names of all registered blocks, sorted.
func (info *RuntimeInfo) BlockNames() []string {
	names := make([]string, 0, len(info.blockExecutors))
	for name := range info.blockExecutors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasBlock reports whether any executor is registered for name.
func (info *RuntimeInfo) HasBlock(name string) bool {
	return len(info.blockExecutors[name]) > 0
}

// BlockDepth returns how many implementations of name are registered.
func (info *RuntimeInfo) BlockDepth(name string) int {
	return len(info.blockExecutors[name])
}
