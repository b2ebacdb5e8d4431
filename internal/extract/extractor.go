package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"talkclip/internal/logging"
	"talkclip/internal/scores"
	"talkclip/internal/segments"
	"talkclip/internal/services"
)

// ClipExtractor is the media capability the extractor drives.
type ClipExtractor interface {
	Trim(ctx context.Context, src string, start, duration float64, dst string) error
	Mux(ctx context.Context, video, audio, dst string) error
	ExtractAudio(ctx context.Context, src, dst string) error
}

// Verifier checks finished artifacts before they are moved into place.
type Verifier interface {
	Verify(ctx context.Context, clipPath, audioPath string, decoded bool) error
}

// Options carries the immutable extraction settings for a run.
type Options struct {
	VideoExtension string
	AudioExtension string
	Workers        int
}

// Extractor turns segments into clips.
type Extractor struct {
	clips     ClipExtractor
	verifier  Verifier
	opts      Options
	logger    *slog.Logger
	removeAll func(string) error
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithVerifier enables post-mux verification.
func WithVerifier(v Verifier) Option {
	return func(e *Extractor) {
		e.verifier = v
	}
}

// WithRemoveAll overrides temp directory removal, mainly for tests.
func WithRemoveAll(fn func(string) error) Option {
	return func(e *Extractor) {
		if fn != nil {
			e.removeAll = fn
		}
	}
}

// New constructs an Extractor.
func New(clips ClipExtractor, opts Options, logger *slog.Logger, options ...Option) *Extractor {
	if opts.VideoExtension == "" {
		opts.VideoExtension = "avi"
	}
	if opts.AudioExtension == "" {
		opts.AudioExtension = "wav"
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	e := &Extractor{
		clips:     clips,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "extract"),
		removeAll: os.RemoveAll,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// ClipBaseName returns track_<track:05d>_segment_<segment:03d>.
func ClipBaseName(track, segment int) string {
	return fmt.Sprintf("track_%05d_segment_%03d", track, segment)
}

// SegmentResult is the outcome of one segment extraction.
type SegmentResult struct {
	Segment   segments.Segment
	VideoPath string
	AudioPath string
	// AudioDecoded is true when audio came from the video stream instead of a separate artifact.
	AudioDecoded bool
	Err          error
}

// Extracted reports whether both outputs were written.
func (r SegmentResult) Extracted() bool {
	return r.Err == nil && r.VideoPath != ""
}

// ExtractSegment runs the trim, audio, and mux protocol for a single segment.
func (e *Extractor) ExtractSegment(ctx context.Context, outputDir string, track scores.Track, seg segments.Segment) (result SegmentResult) {
	result = SegmentResult{Segment: seg}
	ctx = services.WithTrack(ctx, track.Index)
	ctx = services.WithSegment(ctx, seg.Index)
	logger := logging.WithContext(ctx, e.logger)

	if err := ctx.Err(); err != nil {
		result.Err = services.Wrap(services.ErrExtraction, "extract", "start", "run canceled", err)
		return result
	}

	base := ClipBaseName(track.Index, seg.Index)
	tmpDir, err := os.MkdirTemp(outputDir, "."+base+"-*")
	if err != nil {
		result.Err = services.Wrap(services.ErrExtraction, "extract", "create temp dir", outputDir, err)
		return result
	}
	defer e.cleanup(logger, tmpDir)

	start := seg.StartTime()
	duration := seg.Duration()

	trimmedVideo := filepath.Join(tmpDir, "video."+e.opts.VideoExtension)
	if err := e.clips.Trim(ctx, track.VideoPath, start, duration, trimmedVideo); err != nil {
		result.Err = services.Wrap(services.ErrExtraction, "extract", "trim video", track.VideoPath, err)
		return result
	}

	audio := filepath.Join(tmpDir, "audio."+e.opts.AudioExtension)
	if track.HasAudio() {
		if err := e.clips.Trim(ctx, track.AudioPath, start, duration, audio); err != nil {
			result.Err = services.Wrap(services.ErrExtraction, "extract", "trim audio", track.AudioPath, err)
			return result
		}
	} else {
		result.AudioDecoded = true
		logger.Debug("no separate audio artifact; decoding audio from video clip")
		if err := e.clips.ExtractAudio(ctx, trimmedVideo, audio); err != nil {
			result.Err = services.Wrap(services.ErrExtraction, "extract", "decode audio", trimmedVideo, err)
			return result
		}
	}

	muxed := filepath.Join(tmpDir, "clip."+e.opts.VideoExtension)
	if err := e.clips.Mux(ctx, trimmedVideo, audio, muxed); err != nil {
		result.Err = services.Wrap(services.ErrExtraction, "extract", "mux", muxed, err)
		return result
	}

	if e.verifier != nil {
		if err := e.verifier.Verify(ctx, muxed, audio, result.AudioDecoded); err != nil {
			result.Err = services.Wrap(services.ErrExtraction, "extract", "verify", base, err)
			return result
		}
	}

	finalVideo := filepath.Join(outputDir, base+"."+e.opts.VideoExtension)
	finalAudio := filepath.Join(outputDir, base+"."+e.opts.AudioExtension)
	if err := os.Rename(muxed, finalVideo); err != nil {
		result.Err = services.Wrap(services.ErrExtraction, "extract", "publish clip", finalVideo, err)
		return result
	}
	if err := os.Rename(audio, finalAudio); err != nil {
		if rmErr := os.Remove(finalVideo); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			e.warnCleanup(logger, finalVideo, rmErr)
		}
		result.Err = services.Wrap(services.ErrExtraction, "extract", "publish audio", finalAudio, err)
		return result
	}

	result.VideoPath = finalVideo
	result.AudioPath = finalAudio
	logger.Debug("segment extracted",
		logging.String("clip", filepath.Base(finalVideo)),
		logging.Seconds("start", start),
		logging.Seconds("duration", duration),
		logging.Bool("audio_decoded", result.AudioDecoded))
	return result
}

func (e *Extractor) cleanup(logger *slog.Logger, dir string) {
	if err := e.removeAll(dir); err != nil {
		e.warnCleanup(logger, dir, err)
	}
}

func (e *Extractor) warnCleanup(logger *slog.Logger, path string, err error) {
	wrapped := services.Wrap(services.ErrCleanup, "extract", "remove intermediates", path, err)
	logging.WarnWithContext(logger, "intermediate cleanup failed", "cleanup_warning",
		logging.Error(wrapped),
		logging.String("path", path),
		logging.String(logging.FieldErrorHint, "remove the leftover path manually"),
		logging.String(logging.FieldImpact, "temporary files remain in the output directory"))
}

// TrackPlan is one track and its kept segments.
type TrackPlan struct {
	Track    scores.Track
	Segments []segments.Segment
}

// TrackResult is the outcome for one track.
type TrackResult struct {
	Index    int
	Segments []SegmentResult
	// Err is set when the whole track was skipped. Segments then carries
	// every kept segment with the same error.
	Err error
}

// Skipped reports whether the track was not attempted.
func (r TrackResult) Skipped() bool {
	return r.Err != nil
}

// CheckTrackMedia returns ErrMissingTrackMedia when the track's video artifact is absent.
func CheckTrackMedia(track scores.Track) error {
	info, err := os.Stat(track.VideoPath)
	if err != nil {
		return services.Wrap(services.ErrMissingTrackMedia, "extract", "stat track video", track.VideoPath, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrMissingTrackMedia, "extract", "stat track video", strings.TrimSpace(track.VideoPath)+" is a directory", nil)
	}
	return nil
}
