package services_test

import (
	"context"
	"testing"

	"talkclip/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithVideo(ctx, "002")
	ctx = services.WithTrack(ctx, 3)
	ctx = services.WithSegment(ctx, 0)
	ctx = services.WithStage(ctx, "extract")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if video, ok := services.VideoFromContext(ctx); !ok || video != "002" {
		t.Fatalf("unexpected video: %v %v", video, ok)
	}
	if track, ok := services.TrackFromContext(ctx); !ok || track != 3 {
		t.Fatalf("unexpected track: %v %v", track, ok)
	}
	if seg, ok := services.SegmentFromContext(ctx); !ok || seg != 0 {
		t.Fatalf("unexpected segment: %v %v", seg, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "extract" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithTrack(ctx, -1)
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.TrackFromContext(ctx); ok {
		t.Fatal("expected no track value")
	}
}
