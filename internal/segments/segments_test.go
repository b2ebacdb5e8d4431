package segments_test

import (
	"math"
	"reflect"
	"testing"

	"talkclip/internal/segments"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		scores    []float64
		threshold float64
		want      []segments.Interval
	}{
		{
			name:      "two runs",
			scores:    []float64{0, 0, 1, 1, 1, 0, 1, 1, 0},
			threshold: 0,
			want:      []segments.Interval{{Start: 2, End: 5}, {Start: 6, End: 8}},
		},
		{
			name:      "empty",
			scores:    nil,
			threshold: 0,
			want:      nil,
		},
		{
			name:      "tie is silent",
			scores:    []float64{0.5, 0.5, 0.6, 0.5},
			threshold: 0.5,
			want:      []segments.Interval{{Start: 2, End: 3}},
		},
		{
			name:      "open at tail",
			scores:    []float64{-1, 2, 3},
			threshold: 0,
			want:      []segments.Interval{{Start: 1, End: 3}},
		},
		{
			name:      "all active",
			scores:    []float64{1, 1, 1, 1},
			threshold: 0,
			want:      []segments.Interval{{Start: 0, End: 4}},
		},
		{
			name:      "negative threshold",
			scores:    []float64{-0.5, -2, -0.1},
			threshold: -1,
			want:      []segments.Interval{{Start: 0, End: 1}, {Start: 2, End: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := segments.Detect(tt.scores, tt.threshold)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectIntervalsAreDisjointAndIncreasing(t *testing.T) {
	scores := make([]float64, 500)
	for i := range scores {
		scores[i] = math.Sin(float64(i) * 0.37)
	}
	for _, threshold := range []float64{-0.9, -0.2, 0, 0.3, 0.95} {
		intervals := segments.Detect(scores, threshold)
		prevEnd := -1
		for _, iv := range intervals {
			if iv.Start >= iv.End {
				t.Fatalf("threshold %v: empty interval %v", threshold, iv)
			}
			if iv.Start <= prevEnd {
				t.Fatalf("threshold %v: interval %v overlaps or touches previous end %d", threshold, iv, prevEnd)
			}
			if iv.End > len(scores) {
				t.Fatalf("threshold %v: interval %v exceeds length", threshold, iv)
			}
			if scores[iv.Start] <= threshold {
				t.Fatalf("threshold %v: interval %v starts on a silent frame", threshold, iv)
			}
			prevEnd = iv.End
		}
		again := segments.Detect(scores, threshold)
		if !reflect.DeepEqual(intervals, again) {
			t.Fatalf("threshold %v: detection not deterministic", threshold)
		}
	}
}

func TestMinFrames(t *testing.T) {
	tests := []struct {
		minDuration float64
		fps         float64
		want        int
	}{
		{0.5, 25, 12},
		{0.12, 25, 3},
		{0, 25, 0},
		{1, 30, 30},
		{0.99, 10, 9},
		{-1, 25, 0},
	}
	for _, tt := range tests {
		if got := segments.MinFrames(tt.minDuration, tt.fps); got != tt.want {
			t.Errorf("MinFrames(%v, %v) = %d, want %d", tt.minDuration, tt.fps, got, tt.want)
		}
	}
}

func TestFilterByDurationDropsShortRun(t *testing.T) {
	detected := segments.Detect([]float64{0, 0, 1, 1, 1, 0, 1, 1, 0}, 0)
	got := segments.FilterByDuration(detected, 0.12, 25)
	want := []segments.Interval{{Start: 2, End: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterByDuration() = %v, want %v", got, want)
	}
}

func TestFilterByDurationBoundaryIsInclusive(t *testing.T) {
	intervals := []segments.Interval{
		{Start: 0, End: 11},
		{Start: 20, End: 32},
		{Start: 40, End: 53},
	}
	got := segments.FilterByDuration(intervals, 0.5, 25)
	want := []segments.Interval{{Start: 20, End: 32}, {Start: 40, End: 53}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterByDuration() = %v, want %v", got, want)
	}
}

func TestFindAssignsKeptIndices(t *testing.T) {
	scores := []float64{1, 0, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1}
	got := segments.Find(scores, segments.Params{Threshold: 0, MinDurationSeconds: 0.3, FPS: 10})
	if len(got) != 2 {
		t.Fatalf("expected 2 kept segments, got %v", got)
	}
	if got[0].Index != 0 || got[0].Start != 2 || got[0].End != 5 {
		t.Fatalf("unexpected first segment %+v", got[0])
	}
	if got[1].Index != 1 || got[1].Start != 8 || got[1].End != 12 {
		t.Fatalf("unexpected second segment %+v", got[1])
	}
	if got[1].StartTime() != 0.8 || got[1].EndTime() != 1.2 {
		t.Fatalf("unexpected times %v-%v", got[1].StartTime(), got[1].EndTime())
	}
	if math.Abs(got[1].Duration()-0.4) > 1e-9 {
		t.Fatalf("duration = %v, want 0.4", got[1].Duration())
	}
}

func TestFindNoSegments(t *testing.T) {
	if got := segments.Find([]float64{0, 0, 0}, segments.Params{FPS: 25}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
