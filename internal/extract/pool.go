package extract

import (
	"context"
	"sync"
	"sync/atomic"

	"talkclip/internal/logging"
	"talkclip/internal/services"
)

// Totals counts segment outcomes across a run.
type Totals struct {
	Extracted int64
	Failed    int64
}

type job struct {
	track   int
	segment int
	plan    *TrackPlan
}

// Run extracts every segment of every plan into outputDir using the configured
// worker count. Tracks with a missing video artifact are skipped as a whole;
// their segments are reported with the track error and do not count toward
// Totals. The returned slice is index-aligned with plans.
func (e *Extractor) Run(ctx context.Context, outputDir string, plans []TrackPlan) ([]TrackResult, Totals) {
	results := make([]TrackResult, len(plans))
	var jobs []job
	for ti := range plans {
		plan := &plans[ti]
		results[ti] = TrackResult{Index: plan.Track.Index}
		if len(plan.Segments) == 0 {
			continue
		}
		if err := CheckTrackMedia(plan.Track); err != nil {
			results[ti].Err = err
			results[ti].Segments = make([]SegmentResult, len(plan.Segments))
			for si, seg := range plan.Segments {
				results[ti].Segments[si] = SegmentResult{Segment: seg, Err: err}
			}
			trackCtx := services.WithTrack(ctx, plan.Track.Index)
			logging.WarnWithContext(logging.WithContext(trackCtx, e.logger), "track video missing; skipping track", "track_media_missing",
				logging.Error(err),
				logging.Int("segments_skipped", len(plan.Segments)),
				logging.String(logging.FieldErrorHint, "check the detector crop output for this track"),
				logging.String(logging.FieldImpact, "no clips are produced for this track"))
			continue
		}
		results[ti].Segments = make([]SegmentResult, len(plan.Segments))
		for si := range plan.Segments {
			jobs = append(jobs, job{track: ti, segment: si, plan: plan})
		}
	}

	var extracted, failed int64
	workers := min(e.opts.Workers, len(jobs))
	work := make(chan job, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range work {
				res := e.ExtractSegment(ctx, outputDir, j.plan.Track, j.plan.Segments[j.segment])
				results[j.track].Segments[j.segment] = res
				if res.Extracted() {
					atomic.AddInt64(&extracted, 1)
					continue
				}
				atomic.AddInt64(&failed, 1)
				e.reportFailure(ctx, j, res)
			}
		}()
	}

	for _, j := range jobs {
		work <- j
	}
	close(work)
	wg.Wait()

	return results, Totals{Extracted: atomic.LoadInt64(&extracted), Failed: atomic.LoadInt64(&failed)}
}

func (e *Extractor) reportFailure(ctx context.Context, j job, res SegmentResult) {
	ctx = services.WithTrack(ctx, j.plan.Track.Index)
	ctx = services.WithSegment(ctx, res.Segment.Index)
	attrs := append(logging.FrameSpan(res.Segment.Start, res.Segment.End),
		logging.Error(res.Err),
		logging.String("error_kind", services.Kind(res.Err)),
		logging.String(logging.FieldErrorHint, "rerun with --log-level debug to see the ffmpeg output"),
		logging.String(logging.FieldImpact, "segment missing from output directory"))
	logging.WarnWithContext(logging.WithContext(ctx, e.logger), "segment extraction failed; skipping segment", "segment_extraction_failed", attrs...)
}
