package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"talkclip/internal/config"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var videoFolder, videoName string
	var overrides detectionFlags

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract every speaking segment of one video as audio+video clips",
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

			sess, err := openSession(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			res, runErr := sess.runner.RunVideo(cmd.Context(), folder, videoName)
			if res == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Video:              %s\n", res.Video)
			fmt.Fprintf(out, "Run:                %s\n", res.RunID)
			fmt.Fprintf(out, "Output:             %s\n", res.OutputDir)
			fmt.Fprintf(out, "Tracks:             %d\n", res.Report.TotalTracks)
			fmt.Fprintf(out, "Segments kept:      %d\n", res.Kept)
			fmt.Fprintf(out, "Segments extracted: %d\n", res.Totals.Extracted)
			if res.Totals.Failed > 0 {
				fmt.Fprintf(out, "Segments failed:    %d\n", res.Totals.Failed)
			}
			fmt.Fprintf(out, "Summary:            %s\n", res.SummaryPath)
			return runErr
		},
	}

	addVideoFlags(cmd, &videoFolder, &videoName)
	overrides.register(cmd, true)
	return cmd
}
