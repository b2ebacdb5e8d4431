package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"talkclip/internal/config"
	"talkclip/internal/extract"
	"talkclip/internal/fileutil"
	"talkclip/internal/ledger"
	"talkclip/internal/logging"
	"talkclip/internal/scores"
	"talkclip/internal/segments"
	"talkclip/internal/services"
	"talkclip/internal/summary"
)

// Dependencies are the collaborators a Runner drives.
type Dependencies struct {
	Clips extract.ClipExtractor
	// Verifier is used only when extraction.verify_outputs is enabled.
	Verifier extract.Verifier
	// Ledger is optional; runs are not recorded when nil.
	Ledger *ledger.Store
}

// Runner executes extraction runs with a fixed configuration.
type Runner struct {
	params    segments.Params
	batch     config.Batch
	store     *scores.Store
	extractor *extract.Extractor
	ledger    *ledger.Store
	logger    *slog.Logger
	newRunID  func() string
}

// ParamsFromConfig extracts the detection parameters.
func ParamsFromConfig(cfg *config.Config) segments.Params {
	return segments.Params{
		Threshold:          cfg.Detection.Threshold,
		MinDurationSeconds: cfg.Detection.MinDurationSeconds,
		FPS:                cfg.Detection.FPS,
	}
}

// NewRunner constructs a Runner. The config is read once; later changes to it
// have no effect.
func NewRunner(cfg *config.Config, deps Dependencies, logger *slog.Logger) *Runner {
	var opts []extract.Option
	if cfg.Extraction.VerifyOutputs && deps.Verifier != nil {
		opts = append(opts, extract.WithVerifier(deps.Verifier))
	}
	batch := cfg.Batch
	batch.VideoExtensions = append([]string(nil), cfg.Batch.VideoExtensions...)
	return &Runner{
		params: ParamsFromConfig(cfg),
		batch:  batch,
		store:  scores.NewStore(scores.LayoutFromConfig(cfg), logger),
		extractor: extract.New(deps.Clips, extract.Options{
			VideoExtension: cfg.Extraction.VideoExtension,
			AudioExtension: cfg.Extraction.AudioExtension,
			Workers:        cfg.Extraction.Workers,
		}, logger, opts...),
		ledger:   deps.Ledger,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		newRunID: uuid.NewString,
	}
}

// Params returns the detection parameters used by this runner.
func (r *Runner) Params() segments.Params {
	return r.params
}

// Plan is the detection result for one video before extraction.
type Plan struct {
	Video  *scores.Video
	Params segments.Params
	Tracks []extract.TrackPlan
}

// KeptSegments counts segments across all tracks.
func (p *Plan) KeptSegments() int {
	total := 0
	for _, track := range p.Tracks {
		total += len(track.Segments)
	}
	return total
}

// Plan loads a video's detector output and runs detection and filtering on
// every track. It does not touch media.
func (r *Runner) Plan(ctx context.Context, videoFolder, videoName string) (*Plan, error) {
	ctx = services.WithStage(services.WithVideo(ctx, videoName), "detect")
	logger := logging.WithContext(ctx, r.logger)

	video, err := r.store.Load(videoFolder, videoName)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Video: video, Params: r.params, Tracks: make([]extract.TrackPlan, len(video.Tracks))}
	for idx, track := range video.Tracks {
		kept := segments.Find(track.Scores, r.params)
		plan.Tracks[idx] = extract.TrackPlan{Track: track, Segments: kept}
		trackLogger := logging.WithContext(services.WithTrack(ctx, track.Index), r.logger)
		if len(kept) == 0 {
			trackLogger.Info("no speaking segments found", logging.Int("frames", len(track.Scores)))
			continue
		}
		trackLogger.Info("found speaking segments",
			logging.Int("segments", len(kept)),
			logging.Int("frames", len(track.Scores)),
			logging.Bool("separate_audio", track.HasAudio()))
		for _, seg := range kept {
			attrs := append(logging.FrameSpan(seg.Start, seg.End),
				logging.Int(logging.FieldSegment, seg.Index),
				logging.Seconds("start", seg.StartTime()),
				logging.Seconds("end", seg.EndTime()),
				logging.Seconds("duration", seg.Duration()))
			trackLogger.Debug("speaking segment", logging.Args(attrs...)...)
		}
	}
	logger.Info("detection complete",
		logging.Int("tracks", len(video.Tracks)),
		logging.Int("segments_kept", plan.KeptSegments()))
	return plan, nil
}

// VideoResult summarizes one completed run.
type VideoResult struct {
	RunID       string
	Video       string
	OutputDir   string
	SummaryPath string
	Report      summary.Report
	Kept        int
	Totals      extract.Totals
	Elapsed     time.Duration
}

// RunVideo extracts every kept segment of one video and writes its summary.
// The returned error is non-nil only when the run could not produce a summary
// or was canceled.
func (r *Runner) RunVideo(ctx context.Context, videoFolder, videoName string) (*VideoResult, error) {
	started := time.Now()
	runID := r.newRunID()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithVideo(ctx, videoName)
	logger := logging.WithContext(ctx, r.logger)

	r.beginRun(ctx, logger, runID, videoFolder, videoName, started)

	plan, err := r.Plan(ctx, videoFolder, videoName)
	if err != nil {
		r.finishRun(ctx, logger, runID, ledger.Outcome{Status: ledger.StatusFailed, Err: err})
		return nil, err
	}

	outputDir := plan.Video.OutputDir
	lock, err := fileutil.LockDir(outputDir)
	if err != nil {
		wrapped := fmt.Errorf("lock output %s: %w", outputDir, err)
		r.finishRun(ctx, logger, runID, ledger.Outcome{Status: ledger.StatusFailed, Err: wrapped})
		return nil, wrapped
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(logger, "failed to release output lock", "lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+lock.Path()+" if no other run is active"),
				logging.String(logging.FieldImpact, "stale lock file left in output directory"))
		}
	}()

	extractCtx := services.WithStage(ctx, "extract")
	results, totals := r.extractor.Run(extractCtx, outputDir, plan.Tracks)

	report := summary.Build(videoName, plan.Params, plan.Video.DescriptorCount, results)
	summaryPath, err := summary.WriteFile(outputDir, report)
	if err != nil {
		err = services.Wrap(services.ErrExtraction, "summary", "write", outputDir, err)
		r.finishRun(ctx, logger, runID, ledger.Outcome{Status: ledger.StatusFailed, Err: err})
		return nil, err
	}

	r.recordClips(ctx, logger, runID, results)
	outcome := ledger.Outcome{
		Status:      ledger.StatusCompleted,
		TotalTracks: plan.Video.DescriptorCount,
		Kept:        plan.KeptSegments(),
		Extracted:   int(totals.Extracted),
		Failed:      int(totals.Failed),
	}
	runErr := ctx.Err()
	if runErr != nil {
		outcome.Status = ledger.StatusFailed
		outcome.Err = runErr
	}
	r.finishRun(ctx, logger, runID, outcome)

	result := &VideoResult{
		RunID:       runID,
		Video:       videoName,
		OutputDir:   outputDir,
		SummaryPath: summaryPath,
		Report:      report,
		Kept:        plan.KeptSegments(),
		Totals:      totals,
		Elapsed:     time.Since(started),
	}
	logger.Info("extraction complete",
		logging.Int("tracks", plan.Video.DescriptorCount),
		logging.Int("segments_kept", result.Kept),
		logging.Int64("segments_extracted", totals.Extracted),
		logging.Int64("segments_failed", totals.Failed),
		logging.String("summary", summaryPath),
		logging.Duration("elapsed", result.Elapsed))
	return result, runErr
}

func (r *Runner) beginRun(ctx context.Context, logger *slog.Logger, runID, folder, video string, started time.Time) {
	if r.ledger == nil {
		return
	}
	err := r.ledger.BeginRun(context.WithoutCancel(ctx), ledger.Run{
		ID:          runID,
		Video:       video,
		VideoFolder: folder,
		Params:      r.params,
		StartedAt:   started,
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record run start", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ledger_path permissions"),
			logging.String(logging.FieldImpact, "run will be missing from history"))
	}
}

func (r *Runner) finishRun(ctx context.Context, logger *slog.Logger, runID string, outcome ledger.Outcome) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.FinishRun(context.WithoutCancel(ctx), runID, outcome); err != nil {
		logging.WarnWithContext(logger, "failed to record run outcome", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ledger_path permissions"),
			logging.String(logging.FieldImpact, "batch skip decisions may rerun this video"))
	}
}

func (r *Runner) recordClips(ctx context.Context, logger *slog.Logger, runID string, results []extract.TrackResult) {
	if r.ledger == nil {
		return
	}
	var clips []ledger.Clip
	for _, track := range results {
		for _, res := range track.Segments {
			clip := ledger.Clip{
				Track:           track.Index,
				Segment:         res.Segment.Index,
				StartFrame:      res.Segment.Start,
				EndFrame:        res.Segment.End,
				StartSeconds:    res.Segment.StartTime(),
				DurationSeconds: res.Segment.Duration(),
				VideoPath:       res.VideoPath,
				AudioPath:       res.AudioPath,
				AudioDecoded:    res.AudioDecoded,
			}
			if res.Err != nil {
				clip.Error = res.Err.Error()
			}
			clips = append(clips, clip)
		}
	}
	if err := r.ledger.RecordClips(context.WithoutCancel(ctx), runID, clips); err != nil {
		logging.WarnWithContext(logger, "failed to record clips", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ledger_path permissions"),
			logging.String(logging.FieldImpact, "clip history incomplete for this run"))
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
