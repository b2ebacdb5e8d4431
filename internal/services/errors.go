package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingInput marks an absent score or track collection. It aborts the run.
	ErrMissingInput = errors.New("missing input")
	// ErrMissingTrackMedia marks a track whose cropped video artifact does not exist.
	ErrMissingTrackMedia = errors.New("missing track media")
	// ErrExtraction marks a failed trim, mux, audio extraction or output verification.
	ErrExtraction = errors.New("extraction failure")
	// ErrCleanup marks a failure removing intermediate artifacts.
	ErrCleanup       = errors.New("cleanup warning")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExtraction
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(marker, ErrTimeout) {
			return fmt.Errorf("%w: %w: %s: %w", marker, ErrTimeout, detail, err)
		}
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must abort the whole run rather than being
// converted into a logged skip at track or segment scope.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrConfiguration)
}

// Kind returns a short label for the marker carried by err, used as the
// event_type suffix in logs and the ledger.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrMissingTrackMedia):
		return "missing_track_media"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrExtraction):
		return "extraction_failure"
	case errors.Is(err, ErrCleanup):
		return "cleanup_warning"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
