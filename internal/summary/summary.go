// Package summary aggregates one video's extraction results and renders summary.txt.
package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"talkclip/internal/extract"
	"talkclip/internal/segments"
)

// FileName is the report written next to the clips.
const FileName = "summary.txt"

const notExtractedSuffix = " [not extracted]"

// Line is one kept segment in the report.
type Line struct {
	Index     int
	StartTime float64
	EndTime   float64
	Duration  float64
	Extracted bool
}

// Track lists a track's kept segments.
type Track struct {
	Index int
	Lines []Line
}

// Report is the aggregate for one video.
type Report struct {
	Video       string
	Params      segments.Params
	TotalTracks int
	Extracted   int
	Tracks      []Track
}

// Build aggregates track results. Every track with a kept segment is listed,
// including tracks skipped for missing media; tracks without kept segments
// are counted in TotalTracks only.
func Build(video string, params segments.Params, totalTracks int, results []extract.TrackResult) Report {
	report := Report{Video: video, Params: params, TotalTracks: totalTracks}
	for _, tr := range results {
		if len(tr.Segments) == 0 {
			continue
		}
		track := Track{Index: tr.Index, Lines: make([]Line, 0, len(tr.Segments))}
		for _, res := range tr.Segments {
			line := Line{
				Index:     res.Segment.Index,
				StartTime: res.Segment.StartTime(),
				EndTime:   res.Segment.EndTime(),
				Duration:  res.Segment.Duration(),
				Extracted: res.Extracted(),
			}
			if line.Extracted {
				report.Extracted++
			}
			track.Lines = append(track.Lines, line)
		}
		report.Tracks = append(report.Tracks, track)
	}
	return report
}

// Render formats the report as summary.txt content.
func Render(r Report) string {
	var b strings.Builder
	b.WriteString("Speaking Segments Extraction Summary\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Video: %s\n", r.Video)
	fmt.Fprintf(&b, "Threshold: %s\n", formatParam(r.Params.Threshold))
	fmt.Fprintf(&b, "Minimum duration: %ss\n", formatParam(r.Params.MinDurationSeconds))
	fmt.Fprintf(&b, "Total tracks: %d\n", r.TotalTracks)
	fmt.Fprintf(&b, "Total segments extracted: %d\n\n", r.Extracted)

	for _, track := range r.Tracks {
		fmt.Fprintf(&b, "\nTrack %05d:\n", track.Index)
		for _, line := range track.Lines {
			fmt.Fprintf(&b, "  Segment %d: %.2fs - %.2fs (%.2fs)", line.Index, line.StartTime, line.EndTime, line.Duration)
			if !line.Extracted {
				b.WriteString(notExtractedSuffix)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// WriteFile renders the report into dir/summary.txt and returns the path.
func WriteFile(dir string, r Report) (string, error) {
	path := filepath.Join(dir, FileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(Render(r)), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("publish summary: %w", err)
	}
	return path, nil
}

// formatParam prints a float the way the detector tooling does: shortest
// round-trip digits with at least one decimal place.
func formatParam(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
