package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

type recorder struct {
	name  string
	args  []string
	err   error
	dline bool
}

func (r *recorder) run(ctx context.Context, name string, args ...string) error {
	r.name = name
	r.args = append([]string(nil), args...)
	_, r.dline = ctx.Deadline()
	return r.err
}

func TestTrimUsesStreamCopy(t *testing.T) {
	rec := &recorder{}
	tool := New("/opt/ffmpeg", WithCommandRunner(rec.run), WithTimeout(time.Minute))

	if err := tool.Trim(context.Background(), "in.avi", 0.08, 0.12, "out.avi"); err != nil {
		t.Fatalf("Trim returned error: %v", err)
	}
	if rec.name != "/opt/ffmpeg" {
		t.Fatalf("binary = %q", rec.name)
	}
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", "in.avi", "-ss", "0.080", "-t", "0.120", "-c", "copy", "out.avi"}
	if !reflect.DeepEqual(rec.args, want) {
		t.Fatalf("args = %v, want %v", rec.args, want)
	}
	if !rec.dline {
		t.Fatal("expected per-call deadline")
	}
}

func TestTrimRejectsEmptyWindow(t *testing.T) {
	rec := &recorder{}
	tool := New("", WithCommandRunner(rec.run))
	if err := tool.Trim(context.Background(), "in.avi", 1, 0, "out.avi"); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if rec.name != "" {
		t.Fatal("runner should not be invoked")
	}
	if tool.Binary() != "ffmpeg" {
		t.Fatalf("default binary = %q", tool.Binary())
	}
}

func TestMuxMapsBothInputs(t *testing.T) {
	rec := &recorder{}
	tool := New("ffmpeg", WithCommandRunner(rec.run))
	if err := tool.Mux(context.Background(), "v.avi", "a.wav", "out.avi"); err != nil {
		t.Fatalf("Mux returned error: %v", err)
	}
	joined := strings.Join(rec.args, " ")
	for _, want := range []string{"-i v.avi -i a.wav", "-map 0:v:0 -map 1:a:0", "-c:v copy -c:a copy"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if rec.dline {
		t.Fatal("no deadline expected without timeout")
	}
}

func TestExtractAudioDecodesToPCM(t *testing.T) {
	rec := &recorder{}
	tool := New("ffmpeg", WithCommandRunner(rec.run))
	if err := tool.ExtractAudio(context.Background(), "clip.avi", "clip.wav"); err != nil {
		t.Fatalf("ExtractAudio returned error: %v", err)
	}
	joined := strings.Join(rec.args, " ")
	for _, want := range []string{"-i clip.avi", "-vn", "-ac 1", "-ar 16000", "-c:a pcm_s16le"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if rec.args[len(rec.args)-1] != "clip.wav" {
		t.Fatalf("destination should be last, got %v", rec.args)
	}
}

func TestRunnerErrorIsWrapped(t *testing.T) {
	cause := errors.New("exit status 1: Invalid data found")
	rec := &recorder{err: cause}
	tool := New("ffmpeg", WithCommandRunner(rec.run))
	err := tool.Mux(context.Background(), "v", "a", "o")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "ffmpeg mux:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDefaultRunnerReportsDeadline(t *testing.T) {
	script := filepath.Join(t.TempDir(), "slow.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexec sleep 5\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	tool := New(script, WithTimeout(50*time.Millisecond))
	err := tool.ExtractAudio(context.Background(), "in", "out")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDefaultRunnerIncludesOutput(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fail.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'no such stream' >&2\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	err := New(script).Trim(context.Background(), "in", 0, 1, "out")
	if err == nil || !strings.Contains(err.Error(), "no such stream") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
}
