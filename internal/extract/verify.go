package extract

import (
	"context"

	"talkclip/internal/media/ffprobe"
	"talkclip/internal/media/wavcheck"
)

// MediaVerifier checks clips with ffprobe and WAV headers with wavcheck.
type MediaVerifier struct {
	prober *ffprobe.Prober
}

// NewMediaVerifier wraps an ffprobe prober.
func NewMediaVerifier(prober *ffprobe.Prober) *MediaVerifier {
	return &MediaVerifier{prober: prober}
}

// Verify requires a video and audio stream in the clip and a readable WAV.
// Decoded audio must also match the fixed fallback PCM format.
func (v *MediaVerifier) Verify(ctx context.Context, clipPath, audioPath string, decoded bool) error {
	if _, err := v.prober.VerifyClip(ctx, clipPath); err != nil {
		return err
	}
	expect := wavcheck.Expect{}
	if decoded {
		expect = wavcheck.FallbackPCM
	}
	_, err := wavcheck.Check(audioPath, expect)
	return err
}
