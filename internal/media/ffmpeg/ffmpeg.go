package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultBinary = "ffmpeg"

// CommandRunner executes an external command and returns an error carrying its
// combined output on failure.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Tool drives ffmpeg with stream-copy trimming and muxing.
type Tool struct {
	binary  string
	timeout time.Duration
	run     CommandRunner
}

// Option customizes a Tool.
type Option func(*Tool)

// WithCommandRunner replaces the process runner, mainly for tests.
func WithCommandRunner(r CommandRunner) Option {
	return func(t *Tool) {
		if r != nil {
			t.run = r
		}
	}
}

// WithTimeout bounds each ffmpeg invocation. Zero disables the per-call bound.
func WithTimeout(d time.Duration) Option {
	return func(t *Tool) {
		t.timeout = d
	}
}

// New constructs a Tool for the given binary.
func New(binary string, opts ...Option) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}
	t := &Tool{binary: binary, run: defaultCommandRunner}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Binary returns the configured executable name.
func (t *Tool) Binary() string {
	return t.binary
}

// Trim copies [start, start+duration) of src into dst without re-encoding.
func (t *Tool) Trim(ctx context.Context, src string, start, duration float64, dst string) error {
	if duration <= 0 {
		return fmt.Errorf("ffmpeg trim: invalid duration %.3f", duration)
	}
	if err := t.invoke(ctx, TrimArgs(src, start, duration, dst)); err != nil {
		return fmt.Errorf("ffmpeg trim: %w", err)
	}
	return nil
}

// Mux combines the video stream of video and the audio stream of audio into dst.
func (t *Tool) Mux(ctx context.Context, video, audio, dst string) error {
	if err := t.invoke(ctx, MuxArgs(video, audio, dst)); err != nil {
		return fmt.Errorf("ffmpeg mux: %w", err)
	}
	return nil
}

// ExtractAudio decodes the embedded audio of src to mono 16 kHz 16-bit PCM.
func (t *Tool) ExtractAudio(ctx context.Context, src, dst string) error {
	if err := t.invoke(ctx, ExtractAudioArgs(src, dst)); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

func (t *Tool) invoke(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.run(ctx, t.binary, args...)
}

// TrimArgs builds the stream-copy trim command line.
func TrimArgs(src string, start, duration float64, dst string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-ss", fmt.Sprintf("%.3f", start),
		"-t", fmt.Sprintf("%.3f", duration),
		"-c", "copy",
		dst,
	}
}

// MuxArgs builds the stream-copy mux command line.
func MuxArgs(video, audio, dst string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "copy",
		dst,
	}
}

// ExtractAudioArgs builds the PCM decode command line.
func ExtractAudioArgs(src, dst string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dst,
	}
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return fmt.Errorf("%w: %w: %s", ctxErr, err, strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
