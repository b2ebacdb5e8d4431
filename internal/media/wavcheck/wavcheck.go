// Package wavcheck validates extracted WAV clips.
package wavcheck

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Info summarizes a decoded WAV file.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    int
	Duration   time.Duration
}

// Expect constrains a WAV file. Zero fields are not checked.
type Expect struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// FallbackPCM is the format produced when audio is decoded from the video track.
var FallbackPCM = Expect{SampleRate: 16000, Channels: 1, BitDepth: 16}

// Inspect decodes path and reports its format and length.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Info{}, fmt.Errorf("wav %s: not a valid RIFF/WAVE file", path)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Info{}, fmt.Errorf("wav %s: read pcm: %w", path, err)
	}

	info := Info{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}
	if info.Channels > 0 {
		info.Samples = len(buf.Data) / info.Channels
	}
	if info.SampleRate > 0 {
		info.Duration = time.Duration(float64(info.Samples) / float64(info.SampleRate) * float64(time.Second))
	}
	return info, nil
}

// Check inspects path and enforces expect plus a non-empty payload.
func Check(path string, expect Expect) (Info, error) {
	info, err := Inspect(path)
	if err != nil {
		return info, err
	}
	if info.Samples == 0 {
		return info, fmt.Errorf("wav %s: no samples", path)
	}
	if expect.SampleRate > 0 && info.SampleRate != expect.SampleRate {
		return info, fmt.Errorf("wav %s: sample rate %d, want %d", path, info.SampleRate, expect.SampleRate)
	}
	if expect.Channels > 0 && info.Channels != expect.Channels {
		return info, fmt.Errorf("wav %s: %d channels, want %d", path, info.Channels, expect.Channels)
	}
	if expect.BitDepth > 0 && info.BitDepth != expect.BitDepth {
		return info, fmt.Errorf("wav %s: bit depth %d, want %d", path, info.BitDepth, expect.BitDepth)
	}
	return info, nil
}
