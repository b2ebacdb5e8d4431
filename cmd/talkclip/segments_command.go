package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"talkclip/internal/config"
	"talkclip/internal/logging"
	"talkclip/internal/workflow"
)

type segmentRow struct {
	Track      int     `json:"track"`
	Segment    int     `json:"segment"`
	StartFrame int     `json:"start_frame"`
	EndFrame   int     `json:"end_frame"`
	Start      float64 `json:"start_seconds"`
	End        float64 `json:"end_seconds"`
	Duration   float64 `json:"duration_seconds"`
	HasAudio   bool    `json:"separate_audio"`
}

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	var videoFolder, videoName string
	var overrides detectionFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "List the speaking segments of one video without extracting them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := overrides.apply(cmd, base)
			if err != nil {
				return err
			}
			folder, err := config.ExpandPath(videoFolder)
			if err != nil {
				return fmt.Errorf("resolve video folder: %w", err)
			}

			logger := logging.NewNop()
			if !jsonOutput {
				if logger, err = newLogger(cfg); err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
			}
			runner := workflow.NewRunner(cfg, workflow.Dependencies{}, logger)
			plan, err := runner.Plan(cmd.Context(), folder, videoName)
			if err != nil {
				return err
			}

			rows := make([]segmentRow, 0, plan.KeptSegments())
			for _, track := range plan.Tracks {
				for _, seg := range track.Segments {
					rows = append(rows, segmentRow{
						Track:      track.Track.Index,
						Segment:    seg.Index,
						StartFrame: seg.Start,
						EndFrame:   seg.End,
						Start:      seg.StartTime(),
						End:        seg.EndTime(),
						Duration:   seg.Duration(),
						HasAudio:   track.Track.HasAudio(),
					})
				}
			}
			if jsonOutput {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No speaking segments found in %d tracks\n", len(plan.Tracks))
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{
					fmt.Sprintf("%05d", row.Track),
					strconv.Itoa(row.Segment),
					strconv.Itoa(row.StartFrame),
					strconv.Itoa(row.EndFrame),
					formatSeconds(row.Start),
					formatSeconds(row.End),
					formatSeconds(row.Duration),
					yesNo(row.HasAudio),
				})
			}
			fmt.Fprint(out, renderTable(
				[]column{
					textCol("Track"), numCol("Segment"), numCol("Start Frame"), numCol("End Frame"),
					numCol("Start"), numCol("End"), numCol("Duration"), textCol("Audio"),
				},
				table,
			))
			fmt.Fprintf(out, "\n%d segments across %d tracks\n", len(rows), len(plan.Tracks))
			return nil
		},
	}

	addVideoFlags(cmd, &videoFolder, &videoName)
	overrides.register(cmd, false)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
