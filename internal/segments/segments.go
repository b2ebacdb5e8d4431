// Package segments turns per-frame speaking scores into frame intervals and
// filters them by minimum duration.
package segments

import "math"

// Interval is a half-open frame range [Start, End).
type Interval struct {
	Start int
	End   int
}

// Frames returns the interval length in frames.
func (i Interval) Frames() int {
	return i.End - i.Start
}

// Detect scans scores left to right and returns every maximal run of frames whose
// score is strictly greater than threshold. A run still open at the tail closes at
// len(scores). The result is sorted and disjoint.
func Detect(scores []float64, threshold float64) []Interval {
	var intervals []Interval
	speaking := false
	start := 0
	for idx, score := range scores {
		active := score > threshold
		switch {
		case active && !speaking:
			speaking = true
			start = idx
		case !active && speaking:
			speaking = false
			intervals = append(intervals, Interval{Start: start, End: idx})
		}
	}
	if speaking {
		intervals = append(intervals, Interval{Start: start, End: len(scores)})
	}
	return intervals
}

// MinFrames converts a minimum duration into a frame count. The product is
// truncated toward zero: 0.5s at 25fps is 12 frames.
func MinFrames(minDurationSeconds, fps float64) int {
	product := minDurationSeconds * fps
	if math.IsNaN(product) || product <= 0 {
		return 0
	}
	if product >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Trunc(product))
}

// FilterByDuration keeps intervals at least MinFrames(minDurationSeconds, fps)
// long, preserving input order.
func FilterByDuration(intervals []Interval, minDurationSeconds, fps float64) []Interval {
	minFrames := MinFrames(minDurationSeconds, fps)
	kept := make([]Interval, 0, len(intervals))
	for _, interval := range intervals {
		if interval.Frames() >= minFrames {
			kept = append(kept, interval)
		}
	}
	return kept
}
