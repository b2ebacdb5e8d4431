package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"talkclip/internal/fileutil"
	"talkclip/internal/ledger"
	"talkclip/internal/logging"
	"talkclip/internal/preflight"
	"talkclip/internal/services"
)

// BatchStatus is the per-video outcome of a batch run.
type BatchStatus string

const (
	BatchExtracted   BatchStatus = "extracted"
	BatchSkipped     BatchStatus = "skipped"
	BatchNoWorkspace BatchStatus = "no_workspace"
	BatchFailed      BatchStatus = "failed"
)

// BatchRequest selects the videos to process.
type BatchRequest struct {
	VideoFolder string
	// OutputFolder defaults to <VideoFolder>_output.
	OutputFolder string
	// Extensions overrides batch.video_extensions when non-empty.
	Extensions []string
	// Force reruns videos even when an identical completed run exists.
	Force bool
}

// BatchItem is one discovered video.
type BatchItem struct {
	Name      string
	Source    string
	Status    BatchStatus
	RunID     string
	Extracted int64
	Failed    int64
	Err       error
}

// BatchResult lists every discovered video in name order.
type BatchResult struct {
	OutputFolder string
	Items        []BatchItem
	Elapsed      time.Duration
}

// Count returns how many items ended with status.
func (b *BatchResult) Count(status BatchStatus) int {
	n := 0
	for _, item := range b.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// DefaultOutputFolder returns the sibling <folder>_output directory.
func DefaultOutputFolder(videoFolder string) string {
	return filepath.Clean(videoFolder) + "_output"
}

// DiscoverVideos lists regular files in folder whose extension matches one of
// extensions, ignoring case. Results are sorted by name.
func DiscoverVideos(folder string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "batch", "list videos", folder, err)
	}
	fold := cases.Fold()
	wanted := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			wanted[fold.String(ext)] = struct{}{}
		}
	}

	var videos []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if ext == "" {
			continue
		}
		if _, ok := wanted[fold.String(ext)]; ok {
			videos = append(videos, entry.Name())
		}
	}
	sort.Strings(videos)
	return videos, nil
}

// RunBatch processes every discovered video. Per-video failures are recorded
// and the batch continues; only discovery problems, an unusable output folder,
// or cancellation stop it early.
func (r *Runner) RunBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	started := time.Now()
	ctx = services.WithStage(ctx, "batch")
	logger := logging.WithContext(ctx, r.logger)

	output := strings.TrimSpace(req.OutputFolder)
	if output == "" {
		output = DefaultOutputFolder(req.VideoFolder)
	}
	extensions := req.Extensions
	if len(extensions) == 0 {
		extensions = r.batch.VideoExtensions
	}

	files, err := DiscoverVideos(req.VideoFolder, extensions)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "create output folder", output, err)
	}
	if check := preflight.CheckDirectoryAccess("Output folder", output); !check.Passed {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "check output folder", check.Detail, nil)
	}

	logger.Info("batch started",
		logging.String("video_folder", req.VideoFolder),
		logging.String("output_folder", output),
		logging.Int("videos", len(files)),
		logging.Bool("force", req.Force))

	result := &BatchResult{OutputFolder: output, Items: make([]BatchItem, 0, len(files))}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			result.Elapsed = time.Since(started)
			return result, err
		}
		item := r.runBatchItem(ctx, req, output, file)
		result.Items = append(result.Items, item)
		if errors.Is(item.Err, context.Canceled) {
			result.Elapsed = time.Since(started)
			return result, item.Err
		}
	}

	result.Elapsed = time.Since(started)
	logger.Info("batch complete",
		logging.Int("videos", len(result.Items)),
		logging.Int("extracted", result.Count(BatchExtracted)),
		logging.Int("skipped", result.Count(BatchSkipped)),
		logging.Int("no_workspace", result.Count(BatchNoWorkspace)),
		logging.Int("failed", result.Count(BatchFailed)),
		logging.Duration("elapsed", result.Elapsed))
	return result, nil
}

func (r *Runner) runBatchItem(ctx context.Context, req BatchRequest, output, file string) BatchItem {
	name := strings.TrimSuffix(file, filepath.Ext(file))
	item := BatchItem{Name: name, Source: filepath.Join(req.VideoFolder, file)}
	ctx = services.WithVideo(ctx, name)
	logger := logging.WithContext(ctx, r.logger)

	if r.batch.CopySource {
		dest := filepath.Join(output, file)
		if !fileExists(dest) {
			if err := fileutil.CopyFileVerified(item.Source, dest); err != nil {
				item.Status = BatchFailed
				item.Err = fmt.Errorf("copy source: %w", err)
				logging.WarnWithContext(logger, "failed to copy source video", "batch_copy_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check free space in the output folder"),
					logging.String(logging.FieldImpact, "video skipped"))
				return item
			}
			logger.Debug("copied source video", logging.String("dest", dest))
		}
	}

	if !r.store.WorkspaceExists(output, name) {
		item.Status = BatchNoWorkspace
		logging.WarnWithContext(logger, "no detector output for video", "batch_no_workspace",
			logging.String("expected", r.store.VideoRoot(output, name)),
			logging.String(logging.FieldErrorHint, "run the speaker detector for this video first"),
			logging.String(logging.FieldImpact, "video skipped"))
		return item
	}

	if r.ledger != nil && r.batch.SkipCompleted && !req.Force {
		last, err := r.ledger.LastCompleted(ctx, output, name)
		if err != nil {
			logging.WarnWithContext(logger, "ledger lookup failed; processing video", "ledger_read_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check ledger_path"),
				logging.String(logging.FieldImpact, "video may be re-extracted"))
		} else if last != nil && last.Failed == 0 && last.ParamsKey() == ledger.ParamsKey(r.params) {
			item.Status = BatchSkipped
			item.RunID = last.ID
			item.Extracted = int64(last.Extracted)
			item.Failed = int64(last.Failed)
			logger.Info("video already extracted with these parameters; skipping",
				logging.String(logging.FieldRunID, last.ID),
				logging.String("completed_at", last.StartedAt.Format(time.RFC3339)))
			return item
		}
	}

	res, err := r.RunVideo(ctx, output, name)
	if res != nil {
		item.RunID = res.RunID
		item.Extracted = res.Totals.Extracted
		item.Failed = res.Totals.Failed
	}
	if err != nil {
		item.Status = BatchFailed
		item.Err = err
		if !errors.Is(err, context.Canceled) {
			logging.WarnWithContext(logger, "video failed; continuing batch", "batch_video_failed",
				logging.Error(err),
				logging.String("error_kind", services.Kind(err)),
				logging.String(logging.FieldErrorHint, "rerun this video alone with talkclip extract"),
				logging.String(logging.FieldImpact, "no clips for this video"))
		}
		return item
	}
	item.Status = BatchExtracted
	return item
}
