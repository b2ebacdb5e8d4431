package summary

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"talkclip/internal/extract"
	"talkclip/internal/segments"
	"talkclip/internal/services"
)

func result(index, start, end int, ok bool) extract.SegmentResult {
	res := extract.SegmentResult{Segment: segments.Segment{Interval: segments.Interval{Start: start, End: end}, Index: index, FPS: 25}}
	if ok {
		res.VideoPath = "clip.avi"
		res.AudioPath = "clip.wav"
	} else {
		res.Err = services.ErrExtraction
	}
	return res
}

func TestRenderMatchesReportLayout(t *testing.T) {
	params := segments.Params{Threshold: 0, MinDurationSeconds: 0.5, FPS: 25}
	results := []extract.TrackResult{
		{Index: 0, Segments: []extract.SegmentResult{result(0, 2, 20, true), result(1, 50, 100, false)}},
		{Index: 1},
		{Index: 2, Err: errors.New("missing")},
		{Index: 4, Err: services.ErrMissingTrackMedia, Segments: []extract.SegmentResult{result(0, 5, 30, false)}},
		{Index: 3, Segments: []extract.SegmentResult{result(0, 25, 75, true)}},
	}

	report := Build("interview", params, 6, results)
	if report.Extracted != 2 {
		t.Fatalf("Extracted = %d, want 2", report.Extracted)
	}

	want := "Speaking Segments Extraction Summary\n" +
		"============================================================\n\n" +
		"Video: interview\n" +
		"Threshold: 0.0\n" +
		"Minimum duration: 0.5s\n" +
		"Total tracks: 6\n" +
		"Total segments extracted: 2\n\n" +
		"\nTrack 00000:\n" +
		"  Segment 0: 0.08s - 0.80s (0.72s)\n" +
		"  Segment 1: 2.00s - 4.00s (2.00s) [not extracted]\n" +
		"\nTrack 00003:\n" +
		"  Segment 0: 1.00s - 3.00s (2.00s)\n" +
		"\nTrack 00004:\n" +
		"  Segment 0: 0.20s - 1.20s (1.00s) [not extracted]\n"
	if got := Render(report); got != want {
		t.Fatalf("Render mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderNoSegments(t *testing.T) {
	report := Build("quiet", segments.Params{Threshold: 0.25, MinDurationSeconds: 1, FPS: 25}, 2, nil)
	want := "Speaking Segments Extraction Summary\n" +
		"============================================================\n\n" +
		"Video: quiet\n" +
		"Threshold: 0.25\n" +
		"Minimum duration: 1.0s\n" +
		"Total tracks: 2\n" +
		"Total segments extracted: 0\n\n"
	if got := Render(report); got != want {
		t.Fatalf("Render mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestFormatParam(t *testing.T) {
	tests := map[float64]string{
		0:     "0.0",
		0.5:   "0.5",
		-1.25: "-1.25",
		3:     "3.0",
		0.12:  "0.12",
	}
	for in, want := range tests {
		if got := formatParam(in); got != want {
			t.Errorf("formatParam(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	report := Build("v", segments.Params{FPS: 25}, 0, nil)
	path, err := WriteFile(dir, report)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	first, _ := os.ReadFile(path)
	if _, err := WriteFile(dir, report); err != nil {
		t.Fatalf("second WriteFile: %v", err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) || path != filepath.Join(dir, FileName) {
		t.Fatal("summary should be stable across writes")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should not remain")
	}
}
