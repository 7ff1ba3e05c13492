package runtime

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/natefinch/atomic"
)

// RenderFunc is a compiled template program. It writes through rts and
// returns the first error it hits.
type RenderFunc func(rts *RuntimeState) error

// Template represents a compiled template ready for rendering. A Template
// is immutable once built and may be rendered concurrently.
type Template struct {
	name   string
	config *Config
	root   RenderFunc
	setup  RenderFunc
	blocks map[string]RenderFunc
}

// NewTemplate creates a template from its compiled parts. setup runs before
// root on every instantiation; a nil setup registers blocks.
func NewTemplate(config *Config, root RenderFunc, setup RenderFunc, blocks map[string]RenderFunc) *Template {
	copied := make(map[string]RenderFunc, len(blocks))
	for name, fn := range blocks {
		copied[name] = fn
	}
	if setup == nil {
		setup = func(rts *RuntimeState) error {
			RegisterBlockMapping(rts.Info(), copied)
			return nil
		}
	}
	return &Template{
		config: config,
		root:   root,
		setup:  setup,
		blocks: copied,
	}
}

// registered returns a copy of t carrying name. Templates built without a
// config adopt cfg.
func (t *Template) registered(name string, cfg *Config) *Template {
	rv := *t
	rv.name = name
	if rv.config == nil {
		rv.config = cfg
	}
	return &rv
}

// Name returns the registered name, or "<string>" for unregistered templates.
func (t *Template) Name() string {
	if t.name == "" {
		return "<string>"
	}
	return t.name
}

// Config returns the configuration the template renders against.
func (t *Template) Config() *Config {
	return t.config
}

// HasBlock checks if the template defines a block
func (t *Template) HasBlock(name string) bool {
	_, ok := t.blocks[name]
	return ok
}

// BlockNames returns the names of the blocks the template defines, sorted.
func (t *Template) BlockNames() []string {
	return sortedKeys(t.blocks)
}

// String returns a string representation of the template
func (t *Template) String() string {
	return fmt.Sprintf("Template(name=%s, blocks=[%s])", t.Name(), strings.Join(t.BlockNames(), ", "))
}

// run executes setup and root in a new frame over ctx bound to info.
func (t *Template) run(ctx *Context, w WriteFunc, info *RuntimeInfo) error {
	if t.root == nil {
		return WrapError(NewError(ErrorTypeTemplate, "template has no root program"), t.Name())
	}
	rts := newRuntimeState(ctx, w, info)
	if err := t.setup(rts); err != nil {
		return WrapError(err, t.Name())
	}
	if err := t.root(rts); err != nil {
		return WrapError(err, t.Name())
	}
	return nil
}

func (t *Template) newRenderContext(vars map[string]interface{}) (*Context, error) {
	if t.config == nil {
		return nil, WrapError(NewError(ErrorTypeConfig, "template has no config"), t.Name())
	}
	return NewContext(vars, t.config.Globals()), nil
}

// Render renders the template with vars layered over the config globals.
// On failure no partial output is returned.
func (t *Template) Render(vars map[string]interface{}) (string, error) {
	ctx, err := t.newRenderContext(vars)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	info := NewRuntimeInfo(t.config, t.Name())
	if err := t.run(ctx, BufferWriter(&buf), info); err != nil {
		t.config.Logger().Debug("render failed", "template", t.Name(), "error", err)
		return "", err
	}
	return buf.String(), nil
}

// RenderTo renders the template and writes the result to w. Nothing is
// written when rendering fails.
func (t *Template) RenderTo(w io.Writer, vars map[string]interface{}) error {
	if w == nil {
		return NewError(ErrorTypeTemplate, "writer cannot be nil")
	}
	out, err := t.Render(vars)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// RenderToFile renders the template and atomically replaces path with the
// result. An existing file is left untouched when rendering fails.
func (t *Template) RenderToFile(path string, vars map[string]interface{}) error {
	out, err := t.Render(vars)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(out))); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderBlock renders a single block of the template with vars.
func (t *Template) RenderBlock(name string, vars map[string]interface{}) (string, error) {
	if !t.HasBlock(name) {
		return "", WrapError(NewBlockNotFound(name, CurrentLevel, 0), t.Name())
	}
	ctx, err := t.newRenderContext(vars)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	info := NewRuntimeInfo(t.config, t.Name())
	rts := newRuntimeState(ctx, BufferWriter(&buf), info)
	if err := t.setup(rts); err != nil {
		return "", WrapError(err, t.Name())
	}
	if err := rts.EvaluateBlock(name, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}
