package segments

// Segment is an Interval that survived duration filtering, paired with the
// frame rate used to derive its time window.
type Segment struct {
	Interval
	// Index is the 0-based position within the track's kept list.
	Index int
	FPS   float64
}

// StartTime is the segment start in seconds.
func (s Segment) StartTime() float64 {
	return float64(s.Start) / s.FPS
}

// EndTime is the segment end in seconds.
func (s Segment) EndTime() float64 {
	return float64(s.End) / s.FPS
}

// Duration is computed from the frame count, never from the rounded start and end.
func (s Segment) Duration() float64 {
	return float64(s.Frames()) / s.FPS
}

// Params holds the detection parameters for one run.
type Params struct {
	Threshold          float64
	MinDurationSeconds float64
	FPS                float64
}

// Find runs detection and filtering and returns the kept segments in order.
func Find(scores []float64, params Params) []Segment {
	kept := FilterByDuration(Detect(scores, params.Threshold), params.MinDurationSeconds, params.FPS)
	if len(kept) == 0 {
		return nil
	}
	out := make([]Segment, len(kept))
	for idx, interval := range kept {
		out[idx] = Segment{Interval: interval, Index: idx, FPS: params.FPS}
	}
	return out
}
