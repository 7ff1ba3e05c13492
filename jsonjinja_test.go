package jsonjinja

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func greeting() *Template {
	return NewTemplate(func(rts *RuntimeState) error {
		rts.Write("<p>Hello ")
		if err := rts.Output(rts.LookupVar("name")); err != nil {
			return err
		}
		rts.Write("</p>")
		return nil
	}, nil)
}

func TestRenderTemplate(t *testing.T) {
	cfg, err := NewConfigBuilder().AddTemplate("hello.html", greeting()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got, err := RenderTemplate(cfg, "hello.html", map[string]interface{}{"name": "<World>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<p>Hello &lt;World&gt;</p>" {
		t.Fatalf("render = %q", got)
	}

	got, err = RenderTemplate(cfg, "hello.html", map[string]interface{}{"name": MarkSafe("<em>World</em>")})
	if err != nil || got != "<p>Hello <em>World</em></p>" {
		t.Fatalf("render safe = %q, %v", got, err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsonjinja.yaml")
	if err := os.WriteFile(path, []byte("autoescape: false\nglobals:\n  name: <file>\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path, func(b *ConfigBuilder) *ConfigBuilder {
		return b.AddTemplate("hello.html", greeting())
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := RenderTemplate(cfg, "hello.html", nil)
	if err != nil || got != "<p>Hello <file></p>" {
		t.Fatalf("render = %q, %v", got, err)
	}

	verbose := filepath.Join(t.TempDir(), "verbose.yaml")
	if err := os.WriteFile(verbose, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = LoadConfig(verbose, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Logger().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("log_level: debug should reach the config logger")
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`<a href="x">'&'</a>`); got != "&lt;a href=&#34;x&#34;&gt;&#39;&amp;&#39;&lt;/a&gt;" {
		t.Fatalf("Escape = %q", got)
	}
}
