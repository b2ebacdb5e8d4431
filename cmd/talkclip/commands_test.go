package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talkclip/internal/testsupport"
)

func TestSegmentsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	folder := filepath.Join(env.baseDir, "videos")
	testsupport.WriteWorkspace(t, folder, "talk", testsupport.Workspace{
		Scores: [][]float64{{0, 1, 1, 0, 1}, {0, 0}},
	})

	out, _, err := runCLI(t, []string{"segments", "--video-folder", folder, "--video-name", "talk", "--min-duration", "0", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("segments --json: %v", err)
	}
	var rows []segmentRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(rows) != 2 || rows[0].StartFrame != 1 || rows[0].EndFrame != 3 || rows[1].StartFrame != 4 || rows[1].EndFrame != 5 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	out, _, err = runCLI(t, []string{"segments", "--video-folder", folder, "--video-name", "talk", "--min-duration", "0.08"}, env.configPath)
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	requireContains(t, out, "00000")
	requireContains(t, out, "1 segments across 2 tracks")
	if _, err := os.Stat(filepath.Join(folder, "talk", "speaking_segments")); !os.IsNotExist(err) {
		t.Fatal("segments must not create output")
	}
}

func TestSegmentsCommandRejectsInvalidOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"segments", "--video-folder", env.baseDir, "--video-name", "x", "--fps", "0"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid flags") {
		t.Fatalf("expected invalid flags error, got %v", err)
	}
}

func TestExtractAndHistoryCommands(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDetection(0, 0, 25))
	folder := filepath.Join(env.baseDir, "videos")
	testsupport.WriteWorkspace(t, folder, "talk", testsupport.Workspace{
		Scores: [][]float64{{1, 1, 0}, {0, 1, 1}},
		Video:  []int{0, 1},
		Audio:  []int{0},
	})

	out, _, err := runCLI(t, []string{"extract", "--video-folder", folder, "--video-name", "talk"}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "Segments extracted: 2")
	outDir := filepath.Join(folder, "talk", "speaking_segments")
	for _, name := range []string{"track_00000_segment_000.avi", "track_00001_segment_000.wav", "summary.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	var runID string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Run:") {
			runID = strings.TrimSpace(strings.TrimPrefix(line, "Run:"))
		}
	}
	if runID == "" {
		t.Fatalf("run id not printed:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, runID[:8])
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, []string{"history", runID}, env.configPath)
	if err != nil {
		t.Fatalf("history <run>: %v", err)
	}
	requireContains(t, out, "decoded")
	requireContains(t, out, "track")
}

func TestExtractCommandRequiresFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Extraction.FFmpegBinary = filepath.Join(env.baseDir, "missing", "ffmpeg")
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"extract", "--video-folder", env.baseDir, "--video-name", "x"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "missing required tools") {
		t.Fatalf("expected missing tools error, got %v", err)
	}
}

func TestBatchCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDetection(0, 0, 25))
	videos := filepath.Join(env.baseDir, "videos")
	output := filepath.Join(env.baseDir, "work")
	testsupport.WriteFile(t, filepath.Join(videos, "a.MP4"), "a")
	testsupport.WriteFile(t, filepath.Join(videos, "b.mp4"), "b")
	testsupport.WriteWorkspace(t, output, "a", testsupport.Workspace{Scores: [][]float64{{1, 1}}, Video: []int{0}})

	args := []string{"batch", "--video-folder", videos, "--output-folder", output, "--extensions", "mp4"}
	out, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, out, "no_workspace")
	requireContains(t, out, "Processed 2 videos: 1 extracted, 0 skipped, 1 without detector output, 0 failed")

	out, _, err = runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	requireContains(t, out, "0 extracted, 1 skipped")
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "[OK]")
	requireContains(t, out, "(optional)")

	env.cfg.Extraction.VerifyOutputs = true
	writeTestConfig(t, env.configPath, env.cfg)
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatalf("expected doctor to fail when ffprobe is required\n%s", out)
	}
	requireContains(t, out, "[ERROR]")
}
