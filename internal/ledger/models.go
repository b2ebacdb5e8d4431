package ledger

import (
	"strconv"
	"time"

	"talkclip/internal/segments"
)

// Status is a run lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one per-video extraction.
type Run struct {
	ID          string
	Video       string
	VideoFolder string
	Params      segments.Params
	Status      Status
	TotalTracks int
	Kept        int
	Extracted   int
	Failed      int
	Error       string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// ParamsKey is the identity used to decide whether a run can be skipped.
func (r Run) ParamsKey() string {
	return ParamsKey(r.Params)
}

// Elapsed returns the run duration, or zero while it is still running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome is recorded when a run ends.
type Outcome struct {
	Status      Status
	TotalTracks int
	Kept        int
	Extracted   int
	Failed      int
	Err         error
}

// Clip is one attempted segment.
type Clip struct {
	Track           int
	Segment         int
	StartFrame      int
	EndFrame        int
	StartSeconds    float64
	DurationSeconds float64
	VideoPath       string
	AudioPath       string
	AudioDecoded    bool
	Error           string
}

// ParamsKey renders detection parameters with full precision.
func ParamsKey(p segments.Params) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return "threshold=" + f(p.Threshold) + ";min_duration=" + f(p.MinDurationSeconds) + ";fps=" + f(p.FPS)
}
