package wavcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWAV(t *testing.T, path string, sampleRate, channels, samples int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	data := make([]int, samples*channels)
	for i := range data {
		data[i] = (i % 200) - 100
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestCheckFallbackFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeWAV(t, path, 16000, 1, 8000)

	info, err := Check(path, FallbackPCM)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if info.Duration != 500*time.Millisecond {
		t.Fatalf("duration = %v, want 500ms", info.Duration)
	}
	if info.Samples != 8000 || info.Channels != 1 || info.BitDepth != 16 {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestCheckRejectsWrongFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeWAV(t, path, 48000, 2, 4800)

	if _, err := Check(path, Expect{}); err != nil {
		t.Fatalf("unconstrained check failed: %v", err)
	}
	_, err := Check(path, FallbackPCM)
	if err == nil || !strings.Contains(err.Error(), "sample rate 48000") {
		t.Fatalf("expected sample rate mismatch, got %v", err)
	}
}

func TestInspectRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.wav")
	if err := os.WriteFile(path, []byte("definitely not riff"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Inspect(path); err == nil {
		t.Fatal("expected error for invalid file")
	}
	if _, err := Inspect(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
