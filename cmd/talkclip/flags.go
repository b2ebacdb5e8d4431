package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"talkclip/internal/config"
)

// detectionFlags override the detection and extraction settings of the loaded
// config for a single invocation.
type detectionFlags struct {
	threshold   float64
	minDuration float64
	fps         float64
	workers     int
}

func (f *detectionFlags) register(cmd *cobra.Command, withWorkers bool) {
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "Speaking score threshold (frames must score strictly above it)")
	cmd.Flags().Float64Var(&f.minDuration, "min-duration", 0, "Minimum segment duration in seconds")
	cmd.Flags().Float64Var(&f.fps, "fps", 0, "Frame rate of the score sequences")
	if withWorkers {
		cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel segment extractions")
	}
}

// apply returns a copy of cfg with every explicitly set flag applied.
func (f *detectionFlags) apply(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		out.Detection.Threshold = f.threshold
	}
	if flags.Changed("min-duration") {
		out.Detection.MinDurationSeconds = f.minDuration
	}
	if flags.Changed("fps") {
		out.Detection.FPS = f.fps
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		out.Extraction.Workers = f.workers
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return &out, nil
}

func addVideoFlags(cmd *cobra.Command, folder, name *string) {
	cmd.Flags().StringVar(folder, "video-folder", "", "Folder containing the per-video detector workspaces")
	cmd.Flags().StringVar(name, "video-name", "", "Video name (workspace directory under --video-folder)")
	_ = cmd.MarkFlagRequired("video-folder")
	_ = cmd.MarkFlagRequired("video-name")
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.2fs", v)
}
