package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	h := newFanoutHandler(nil, nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewFanoutHandlerSingleHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)

	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsEachLevel(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	infoLvl := new(slog.LevelVar)
	errLvl := new(slog.LevelVar)
	errLvl.Set(slog.LevelError)

	h := newFanoutHandler(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: infoLvl}),
		slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: errLvl}),
	)
	logger := slog.New(h).With("component", "test")
	logger.Info("hello")
	logger.Error("boom")

	if !strings.Contains(infoBuf.String(), "hello") || !strings.Contains(infoBuf.String(), "boom") {
		t.Fatalf("info handler missing records: %q", infoBuf.String())
	}
	if strings.Contains(errBuf.String(), "hello") {
		t.Fatalf("error handler received info record: %q", errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "component=test") {
		t.Fatalf("attrs not propagated: %q", errBuf.String())
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected fanout to be enabled when any handler is")
	}
}
