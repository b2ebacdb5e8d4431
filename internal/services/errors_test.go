package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"talkclip/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtraction, "extract", "mux", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "mux", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapTagsDeadlineAsTimeout(t *testing.T) {
	cause := fmt.Errorf("ffmpeg trim: %w", context.DeadlineExceeded)
	err := services.Wrap(services.ErrExtraction, "extract", "trim", "", cause)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction marker, got %v", err)
	}
	if got := services.Kind(err); got != "timeout" {
		t.Fatalf("Kind = %q, want timeout", got)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrMissingInput, "", "", "", nil)
	if err.Error() != "missing input: service failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"missing input", services.Wrap(services.ErrMissingInput, "store", "load", "scores", nil), true},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "", "fps", nil), true},
		{"missing media", services.Wrap(services.ErrMissingTrackMedia, "extract", "", "", nil), false},
		{"extraction", services.Wrap(services.ErrExtraction, "extract", "trim", "", errors.New("exit 1")), false},
		{"cleanup", services.Wrap(services.ErrCleanup, "extract", "remove", "", errors.New("busy")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.IsFatal(tt.err); got != tt.want {
				t.Fatalf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
