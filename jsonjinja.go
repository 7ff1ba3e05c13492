// Package jsonjinja runs precompiled Jinja-style template programs.
//
// Templates are compiled ahead of time into Go functions operating on a
// runtime.RuntimeState. This package re-exports the runtime types most
// callers need and wraps the common configuration steps.
package jsonjinja

import (
	"github.com/deicod/jsonjinja/runtime"
)

// Version of the jsonjinja library
const Version = "0.1.0"

// Template represents a compiled template program
type Template = runtime.Template

// Config holds the settings shared by every template of a registry
type Config = runtime.Config

// ConfigBuilder assembles a Config
type ConfigBuilder = runtime.ConfigBuilder

// Context represents the template rendering context
type Context = runtime.Context

// RuntimeState is handed to compiled programs while they render
type RuntimeState = runtime.RuntimeState

// RenderFunc is the body of a compiled template or block
type RenderFunc = runtime.RenderFunc

// Markup is a string that is already safe for HTML output
type Markup = runtime.Markup

// TemplateFactory builds a template on first lookup
type TemplateFactory = runtime.TemplateFactory

// NewConfigBuilder starts a configuration with the builtin filters and
// extension-based autoescaping.
func NewConfigBuilder() *ConfigBuilder {
	return runtime.NewConfigBuilder()
}

// LoadConfig builds a Config from a YAML file, then lets register add
// templates to it. register may be nil.
func LoadConfig(path string, register func(*ConfigBuilder) *ConfigBuilder) (*Config, error) {
	fc, err := runtime.LoadFileConfig(path)
	if err != nil {
		return nil, err
	}
	b := runtime.NewConfigBuilder().ApplyFile(fc)
	if register != nil {
		b = register(b)
	}
	return b.Build()
}

// NewTemplate creates a template from a root program and its blocks.
func NewTemplate(root RenderFunc, blocks map[string]RenderFunc) *Template {
	return runtime.NewTemplate(nil, root, nil, blocks)
}

// MarkSafe marks s as safe markup
func MarkSafe(s string) Markup {
	return runtime.MarkSafe(s)
}

// Escape HTML-escapes s
func Escape(s string) string {
	return runtime.Escape(s)
}

// RenderTemplate renders the template registered under name
func RenderTemplate(cfg *Config, name string, vars map[string]interface{}) (string, error) {
	return runtime.RenderTemplate(cfg, name, vars)
}
