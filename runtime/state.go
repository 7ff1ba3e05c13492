package runtime

import "strings"

// WriteFunc receives rendered output.
type WriteFunc func(s string)

// BufferWriter returns a WriteFunc appending to b.
func BufferWriter(b *strings.Builder) WriteFunc {
	return func(s string) { b.WriteString(s) }
}

type bufferFrame struct {
	previous WriteFunc
	buffer   *strings.Builder
}

// RuntimeState is the execution state of one render frame: the active
// context, the active output sink and the stack of capture buffers.
type RuntimeState struct {
	context   *Context
	writeFunc WriteFunc
	buffers   []bufferFrame
	info      *RuntimeInfo

	// set while rendering a block body
	blockName  string
	blockLevel int
}

// NewRuntimeState creates a render frame. A nil info starts a fresh
// instantiation of templateName.
func NewRuntimeState(ctx *Context, w WriteFunc, config *Config, templateName string, info *RuntimeInfo) *RuntimeState {
	if info == nil {
		info = NewRuntimeInfo(config, templateName)
	}
	return newRuntimeState(ctx, w, info)
}

func newRuntimeState(ctx *Context, w WriteFunc, info *RuntimeInfo) *RuntimeState {
	if ctx == nil {
		ctx = info.config.Globals()
	}
	return &RuntimeState{
		context:   ctx,
		writeFunc: w,
		info:      info,
	}
}

// Context returns the active context chain.
func (rts *RuntimeState) Context() *Context {
	return rts.context
}

// Info returns the instantiation state this frame renders for.
func (rts *RuntimeState) Info() *RuntimeInfo {
	return rts.info
}

// Config returns the owning configuration.
func (rts *RuntimeState) Config() *Config {
	return rts.info.config
}

// TemplateName returns the name of the template being rendered.
func (rts *RuntimeState) TemplateName() string {
	return rts.info.templateName
}

// LookupVar resolves name through the context chain. A miss produces the
// config's undefined flavour; lookups never fail.
func (rts *RuntimeState) LookupVar(name string) interface{} {
	if value, ok := rts.context.Resolve(name); ok {
		return value
	}
	return rts.info.config.newUndefined(name)
}

// MakeOverlayContext returns a context with locals in front of the active one.
func (rts *RuntimeState) MakeOverlayContext(locals map[string]interface{}) *Context {
	return rts.context.Overlay(locals)
}

// WriteFunc returns the active output sink.
func (rts *RuntimeState) WriteFunc() WriteFunc {
	return rts.writeFunc
}

// Write sends s to the active output sink unchanged.
func (rts *RuntimeState) Write(s string) {
	rts.writeFunc(s)
}

// Output finalizes value and writes it.
func (rts *RuntimeState) Output(value interface{}) error {
	s, err := rts.info.Finalize(value)
	if err != nil {
		return WrapError(err, rts.info.templateName)
	}
	rts.writeFunc(s)
	return nil
}

// CallFilter applies a filter from the info's filter table.
func (rts *RuntimeState) CallFilter(name string, value interface{}, args ...interface{}) (interface{}, error) {
	result, err := rts.info.CallFilter(name, value, args...)
	if err != nil {
		return nil, WrapError(err, rts.info.templateName)
	}
	return result, nil
}

// EvaluateBlock renders the most-derived implementation of name.
func (rts *RuntimeState) EvaluateBlock(name string, ctx *Context) error {
	return rts.EvaluateBlockAt(name, ctx, CurrentLevel)
}

// EvaluateBlockAt renders the implementation of name at level, writing to
// the active sink. Levels below -1 reach ancestor implementations.
func (rts *RuntimeState) EvaluateBlockAt(name string, ctx *Context, level int) error {
	if ctx == nil {
		ctx = rts.context
	}
	return rts.info.EvaluateBlock(name, level, ctx, rts.writeFunc)
}

// Super renders the implementation the current block overrides. It fails
// outside a block body and in the least-derived implementation.
func (rts *RuntimeState) Super() error {
	if rts.blockName == "" {
		return WrapError(NewError(ErrorTypeBlock, "super() used outside of a block"), rts.info.templateName)
	}
	return rts.EvaluateBlockAt(rts.blockName, nil, rts.blockLevel-1)
}

// BlockName returns the block being rendered, empty outside blocks.
func (rts *RuntimeState) BlockName() string {
	return rts.blockName
}

// ExportVar records a value for importers of this template.
func (rts *RuntimeState) ExportVar(name string, value interface{}) {
	rts.info.ExportVar(name, value)
}

// GetTemplate resolves name relative to the current template and memoizes
// the result for the rest of the extends chain.
func (rts *RuntimeState) GetTemplate(name string) (*Template, error) {
	config := rts.info.config
	templateName := config.JoinPath(name, rts.info.templateName)
	if tmpl, ok := rts.info.templateCache.Get(templateName); ok {
		return tmpl, nil
	}

	tmpl, err := config.GetTemplate(templateName)
	if err != nil {
		return nil, WrapError(err, rts.info.templateName)
	}
	rts.info.templateCache.Set(templateName, tmpl)
	return tmpl, nil
}

// ExtendTemplate renders the named ancestor with this template's block
// overrides in scope. The child has already registered its blocks, so the
// ancestor's block slots render the most-derived implementations.
func (rts *RuntimeState) ExtendTemplate(name string, ctx *Context, w WriteFunc) error {
	tmpl, err := rts.GetTemplate(name)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = rts.context
	}
	if w == nil {
		w = rts.writeFunc
	}
	info := rts.info.MakeInfo(tmpl.Name(), BehaviorExtends)
	return rts.info.config.EvaluateTemplate(tmpl, ctx, w, info)
}

// IncludeTemplate renders another template into the active sink. It sees
// ctx but none of this template's block overrides.
func (rts *RuntimeState) IncludeTemplate(name string, ctx *Context) error {
	tmpl, err := rts.GetTemplate(name)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = rts.context
	}
	info := rts.info.MakeInfo(tmpl.Name(), BehaviorInclude)
	return rts.info.config.EvaluateTemplate(tmpl, ctx, rts.writeFunc, info)
}

// ImportTemplate renders another template, discarding its output, and
// returns the values it exported.
func (rts *RuntimeState) ImportTemplate(name string, ctx *Context) (map[string]interface{}, error) {
	tmpl, err := rts.GetTemplate(name)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = rts.info.config.Globals()
	}
	info := rts.info.MakeInfo(tmpl.Name(), BehaviorImport)
	var discard strings.Builder
	if err := rts.info.config.EvaluateTemplate(tmpl, ctx, BufferWriter(&discard), info); err != nil {
		return nil, err
	}
	return info.Exports(), nil
}

// StartBuffering redirects output into a new buffer and returns the
// buffer's WriteFunc.
func (rts *RuntimeState) StartBuffering() WriteFunc {
	buffer := &strings.Builder{}
	rts.buffers = append(rts.buffers, bufferFrame{previous: rts.writeFunc, buffer: buffer})
	rts.writeFunc = BufferWriter(buffer)
	return rts.writeFunc
}

// EndBuffering restores the previous sink and returns the captured output,
// marked safe when the template autoescapes.
func (rts *RuntimeState) EndBuffering() (interface{}, error) {
	if len(rts.buffers) == 0 {
		return nil, WrapError(NewError(ErrorTypeTemplate, "EndBuffering called without StartBuffering"), rts.info.templateName)
	}
	frame := rts.buffers[len(rts.buffers)-1]
	rts.buffers = rts.buffers[:len(rts.buffers)-1]
	rts.writeFunc = frame.previous

	rv := frame.buffer.String()
	if rts.info.autoescape {
		return MarkSafe(rv), nil
	}
	return rv, nil
}

// Capture renders fn into a buffer and returns the result as EndBuffering
// does. The buffer is popped even when fn fails.
func (rts *RuntimeState) Capture(fn func() error) (interface{}, error) {
	rts.StartBuffering()
	fnErr := fn()
	rv, err := rts.EndBuffering()
	if fnErr != nil {
		return nil, fnErr
	}
	return rv, err
}

// BufferDepth returns the number of active capture buffers.
func (rts *RuntimeState) BufferDepth() int {
	return len(rts.buffers)
}
