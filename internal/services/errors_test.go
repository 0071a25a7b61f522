package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"rewatch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransport, "feed", "fetch", "request failed", base)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"feed", "fetch", "request failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "", "", "", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestKindAndRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      string
		retryable bool
	}{
		{"nil", nil, "", false},
		{"transport", services.Wrap(services.ErrTransport, "search", "post", "", nil), "transport", true},
		{"deadline", fmt.Errorf("lookup: %w", context.DeadlineExceeded), "transport", true},
		{"canceled", fmt.Errorf("lookup: %w", context.Canceled), "unknown", false},
		{"parse", services.Wrap(services.ErrParse, "search", "decode", "", nil), "parse", false},
		{"persistence", services.Wrap(services.ErrPersistence, "catalog", "save", "", nil), "persistence", false},
		{"plain", errors.New("other"), "unknown", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Kind(tc.err); got != tc.kind {
				t.Fatalf("Kind = %q, want %q", got, tc.kind)
			}
			if got := services.IsRetryable(tc.err); got != tc.retryable {
				t.Fatalf("IsRetryable = %v, want %v", got, tc.retryable)
			}
		})
	}
}
