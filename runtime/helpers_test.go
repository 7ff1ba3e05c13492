package runtime

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBuilder() *ConfigBuilder {
	return NewConfigBuilder().WithLogger(discardLogger())
}

func mustBuild(t *testing.T, b *ConfigBuilder) *Config {
	t.Helper()
	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("build config: %v", err)
	}
	return cfg
}

// text returns a program writing s.
func text(s string) RenderFunc {
	return func(rts *RuntimeState) error {
		rts.Write(s)
		return nil
	}
}

// seq runs programs in order.
func seq(parts ...RenderFunc) RenderFunc {
	return func(rts *RuntimeState) error {
		for _, part := range parts {
			if err := part(rts); err != nil {
				return err
			}
		}
		return nil
	}
}

// output returns a program printing the variable name.
func output(name string) RenderFunc {
	return func(rts *RuntimeState) error {
		return rts.Output(rts.LookupVar(name))
	}
}

func block(name string) RenderFunc {
	return func(rts *RuntimeState) error {
		return rts.EvaluateBlock(name, nil)
	}
}

func extends(name string) RenderFunc {
	return func(rts *RuntimeState) error {
		return rts.ExtendTemplate(name, nil, nil)
	}
}

func mustRender(t *testing.T, cfg *Config, name string, vars map[string]interface{}) string {
	t.Helper()
	out, err := RenderTemplate(cfg, name, vars)
	if err != nil {
		t.Fatalf("render %s: %v", name, err)
	}
	return out
}
