package runtime

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFileConfig(t *testing.T) {
	data := []byte(`
autoescape: [".html", "svg"]
strict_undefined: true
log_level: debug
globals:
  site: Open States
  nav:
    home: /
`)
	fc, err := ParseFileConfig(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !fc.Autoescape.IsSet() {
		t.Fatal("autoescape should be set")
	}
	if diff := cmp.Diff([]string{".html", "svg"}, fc.Autoescape.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	want := map[string]interface{}{
		"site": "Open States",
		"nav":  map[string]interface{}{"home": "/"},
	}
	if diff := cmp.Diff(want, fc.Globals); diff != "" {
		t.Fatalf("globals mismatch (-want +got):\n%s", diff)
	}
	if !fc.StrictUndefined || fc.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", fc)
	}
}

func TestParseFileConfigAutoescapeBool(t *testing.T) {
	fc, err := ParseFileConfig([]byte("autoescape: false\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := mustBuild(t, newTestBuilder().ApplyFile(fc))
	if cfg.ShouldAutoescape("page.html") {
		t.Fatal("autoescape: false should disable escaping for html")
	}

	fc, err = ParseFileConfig([]byte("autoescape: true\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg = mustBuild(t, newTestBuilder().ApplyFile(fc))
	if !cfg.ShouldAutoescape("notes.txt") {
		t.Fatal("autoescape: true should escape every template")
	}
}

func TestParseFileConfigErrors(t *testing.T) {
	cases := map[string]string{
		"autoescape map":  "autoescape: {a: 1}\n",
		"autoescape word": "autoescape: sometimes\n",
		"unknown level":   "log_level: loud\n",
		"malformed yaml":  "globals: [\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseFileConfig([]byte(data)); err == nil {
				t.Fatalf("expected error for %q", data)
			}
		})
	}
}

func TestParseFileConfigEmpty(t *testing.T) {
	fc, err := ParseFileConfig([]byte("  \n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fc.Autoescape.IsSet() {
		t.Fatal("empty config should leave autoescape unset")
	}
	cfg := mustBuild(t, newTestBuilder().ApplyFile(fc))
	if !cfg.ShouldAutoescape("page.html") {
		t.Fatal("defaults should apply")
	}
}

func TestLoadFileConfigAppliesGlobals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsonjinja.yaml")
	if err := os.WriteFile(path, []byte("globals:\n  name: <file>\nstrict_undefined: true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := mustBuild(t, newTestBuilder().ApplyFile(fc).AddTemplate("bold.html", boldTemplate()))

	if got := mustRender(t, cfg, "bold.html", nil); got != "<b>&lt;file&gt;</b>" {
		t.Fatalf("render = %q", got)
	}
	if !cfg.StrictUndefined() {
		t.Fatal("strict_undefined not applied")
	}

	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestApplyFileLogLevel(t *testing.T) {
	fc, err := ParseFileConfig([]byte("log_level: debug\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx := context.Background()

	cfg := mustBuild(t, NewConfigBuilder().ApplyFile(fc))
	if !cfg.Logger().Enabled(ctx, slog.LevelDebug) {
		t.Fatal("log_level: debug should enable debug records")
	}

	quiet, err := ParseFileConfig([]byte("log_level: error\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg = mustBuild(t, NewConfigBuilder().ApplyFile(quiet))
	if cfg.Logger().Enabled(ctx, slog.LevelWarn) {
		t.Fatal("log_level: error should drop warnings")
	}

	explicit := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	for _, b := range []*ConfigBuilder{
		NewConfigBuilder().WithLogger(explicit).ApplyFile(fc),
		NewConfigBuilder().ApplyFile(fc).WithLogger(explicit),
	} {
		if got := mustBuild(t, b).Logger(); got != explicit {
			t.Fatal("an explicit logger should win over log_level")
		}
	}
}
