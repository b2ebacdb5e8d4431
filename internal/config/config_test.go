package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"talkclip/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "talkclip", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Paths.LedgerPath != filepath.Join(wantLogDir, "ledger.db") {
		t.Fatalf("unexpected ledger path: %q", cfg.Paths.LedgerPath)
	}
	if cfg.Detection.Threshold != 0 {
		t.Fatalf("unexpected threshold: %v", cfg.Detection.Threshold)
	}
	if cfg.Detection.MinDurationSeconds != 0.5 {
		t.Fatalf("unexpected min duration: %v", cfg.Detection.MinDurationSeconds)
	}
	if cfg.Detection.FPS != 25 {
		t.Fatalf("unexpected fps: %v", cfg.Detection.FPS)
	}
	if cfg.Extraction.VideoExtension != "avi" || cfg.Extraction.AudioExtension != "wav" {
		t.Fatalf("unexpected extensions: %q %q", cfg.Extraction.VideoExtension, cfg.Extraction.AudioExtension)
	}
	if cfg.Layout.OutputDir != "speaking_segments" {
		t.Fatalf("unexpected output dir: %q", cfg.Layout.OutputDir)
	}
	if got := cfg.ToolTimeout(); got != 300*time.Second {
		t.Fatalf("unexpected tool timeout: %v", got)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.LogDir); err != nil || !info.IsDir() {
		t.Fatalf("expected log dir to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "talkclip.toml")

	type payload struct {
		Detection struct {
			Threshold          float64 `toml:"threshold"`
			MinDurationSeconds float64 `toml:"min_duration_seconds"`
			FPS                float64 `toml:"fps"`
		} `toml:"detection"`
		Extraction struct {
			Workers        int    `toml:"workers"`
			VideoExtension string `toml:"video_extension"`
		} `toml:"extraction"`
		Batch struct {
			VideoExtensions []string `toml:"video_extensions"`
		} `toml:"batch"`
	}
	custom := payload{}
	custom.Detection.Threshold = 0.25
	custom.Detection.MinDurationSeconds = 1.5
	custom.Detection.FPS = 30
	custom.Extraction.Workers = 2
	custom.Extraction.VideoExtension = ".MKV"
	custom.Batch.VideoExtensions = []string{" MP4", "mp4", ".Avi", ""}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Detection.Threshold != 0.25 || cfg.Detection.MinDurationSeconds != 1.5 || cfg.Detection.FPS != 30 {
		t.Fatalf("unexpected detection section: %+v", cfg.Detection)
	}
	if cfg.Extraction.Workers != 2 {
		t.Fatalf("expected 2 workers, got %d", cfg.Extraction.Workers)
	}
	if cfg.Extraction.VideoExtension != "mkv" {
		t.Fatalf("expected normalized extension mkv, got %q", cfg.Extraction.VideoExtension)
	}
	if got := strings.Join(cfg.Batch.VideoExtensions, ","); got != "mp4,avi" {
		t.Fatalf("unexpected batch extensions: %q", got)
	}
}

func TestEnvVarSuppliesBinaries(t *testing.T) {
	t.Setenv("TALKCLIP_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("TALKCLIP_FFPROBE", "/opt/ffmpeg/bin/ffprobe")
	t.Setenv("HOME", t.TempDir())

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Extraction.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("expected ffmpeg from env, got %q", cfg.Extraction.FFmpegBinary)
	}
	if cfg.Extraction.FFprobeBinary != "/opt/ffmpeg/bin/ffprobe" {
		t.Errorf("expected ffprobe from env, got %q", cfg.Extraction.FFprobeBinary)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Detection.FPS != 25 {
		t.Fatalf("expected sample fps 25, got %v", cfg.Detection.FPS)
	}
	if cfg.Layout.OutputDir != "speaking_segments" {
		t.Fatalf("expected sample output dir, got %q", cfg.Layout.OutputDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"zero fps":             func(c *config.Config) { c.Detection.FPS = 0 },
		"negative min":         func(c *config.Config) { c.Detection.MinDurationSeconds = -1 },
		"zero workers":         func(c *config.Config) { c.Extraction.Workers = 0 },
		"zero timeout":         func(c *config.Config) { c.Extraction.ToolTimeoutSeconds = 0 },
		"same extensions":      func(c *config.Config) { c.Extraction.AudioExtension = "avi" },
		"absolute output dir":  func(c *config.Config) { c.Layout.OutputDir = "/tmp/out" },
		"escaping scores file": func(c *config.Config) { c.Layout.ScoresFile = "../scores.json" },
		"unknown level":        func(c *config.Config) { c.Logging.Level = "verbose" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.Detection.Threshold = 0.4
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), "threshold = 0.4") {
		t.Fatalf("expected threshold in encoded config, got:\n%s", data)
	}
}
