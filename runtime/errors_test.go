package runtime

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorPredicates(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"undefined", NewUndefinedError("x"), IsUndefinedError},
		{"template not found", NewTemplateNotFound("a.html", nil), IsTemplateNotFound},
		{"block not found", NewBlockNotFound("content", -2, 1), IsBlockNotFound},
		{"filter", NewFilterError("upper", "bad", nil), IsFilterError},
		{"composite", NewCompositeValueError([]int{1}), IsCompositeValueError},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Fatalf("predicate rejected %v", tt.err)
			}
			wrapped := fmt.Errorf("render page: %w", tt.err)
			if !tt.check(wrapped) {
				t.Fatalf("predicate rejected wrapped %v", wrapped)
			}
			if tt.check(errors.New("plain")) {
				t.Fatal("predicate accepted a plain error")
			}
		})
	}
}

func TestWrapErrorSetsTemplateOnce(t *testing.T) {
	err := WrapError(NewTemplateNotFound("gone.html", nil), "child.html")
	err = WrapError(err, "layout.html")

	if !strings.Contains(err.Error(), "child.html") {
		t.Fatalf("expected innermost template in message, got %q", err.Error())
	}
	if !IsTemplateNotFound(err) {
		t.Fatal("wrapping lost the error type")
	}
	if WrapError(nil, "x") != nil {
		t.Fatal("wrapping nil should stay nil")
	}
}

func TestWrapErrorForeignErrors(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(cause, "page.html")

	var rtErr *Error
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rtErr.Type != ErrorTypeTemplate || rtErr.Template != "page.html" || !errors.Is(err, cause) {
		t.Fatalf("unexpected wrapped error %#v", rtErr)
	}
}
