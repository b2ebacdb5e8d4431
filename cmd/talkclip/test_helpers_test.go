package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talkclip/internal/config"
	"talkclip/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// stubFFmpeg writes a placeholder to the last argument, which is the output
// path of every command line the adapter builds.
const stubFFmpeg = "#!/bin/sh\nfor last; do :; done\nprintf clip > \"$last\"\n"

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TALKCLIP_FFMPEG", "")
	t.Setenv("TALKCLIP_FFPROBE", "")

	cfg := testsupport.NewConfig(t, opts...)
	ffmpegPath := filepath.Join(base, "bin", "ffmpeg")
	testsupport.WriteFile(t, ffmpegPath, stubFFmpeg)
	if err := os.Chmod(ffmpegPath, 0o755); err != nil {
		t.Fatalf("chmod stub: %v", err)
	}
	cfg.Extraction.FFmpegBinary = ffmpegPath
	cfg.Extraction.FFprobeBinary = filepath.Join(base, "bin", "ffprobe")
	cfg.Logging.Level = "error"

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
