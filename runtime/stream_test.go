package runtime

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestStreamYieldsFragments(t *testing.T) {
	cfg := mustBuild(t, newTestBuilder().AddTemplate("bold.html", boldTemplate()))
	tmpl, err := cfg.GetTemplate("bold.html")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	s := tmpl.Stream(map[string]interface{}{"name": "<x>"})
	var parts []string
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		parts = append(parts, chunk)
	}
	if got := strings.Join(parts, "|"); got != "<b>|&lt;x&gt;|</b>" {
		t.Fatalf("fragments = %q", got)
	}
}

func TestStreamDeliversPartialOutputBeforeError(t *testing.T) {
	tmpl := NewTemplate(nil, seq(text("head"), output("missing")), nil, nil)
	cfg := mustBuild(t, newTestBuilder().WithStrictUndefined(true).AddTemplate("s.html", tmpl))
	tmpl, err := cfg.GetTemplate("s.html")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	var out strings.Builder
	n, err := tmpl.Stream(nil).WriteTo(&out)
	if !IsUndefinedError(err) {
		t.Fatalf("expected undefined error, got %v", err)
	}
	if out.String() != "head" || n != 4 {
		t.Fatalf("partial output %q (%d bytes)", out.String(), n)
	}

	if _, err := tmpl.Stream(nil).Collect(); !IsUndefinedError(err) {
		t.Fatalf("collect: expected undefined error, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestStreamCloseReleasesRender(t *testing.T) {
	parts := make([]RenderFunc, 20)
	for i := range parts {
		parts[i] = text("x")
	}
	cfg := mustBuild(t, newTestBuilder().AddTemplate("long.txt", NewTemplate(nil, seq(parts...), nil, nil)))
	tmpl, err := cfg.GetTemplate("long.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if _, err := tmpl.Stream(nil).WriteTo(failingWriter{}); err == nil || err.Error() != "closed pipe" {
		t.Fatalf("expected writer error, got %v", err)
	}

	s := tmpl.Stream(nil)
	s.Close()
	s.Close()
	for {
		if _, err := s.Next(); err != nil {
			break
		}
	}
}
