package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"talkclip/internal/config"
	"talkclip/internal/workflow"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var videoFolder, outputFolder string
	var extensions []string
	var force bool
	var overrides detectionFlags

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Extract speaking segments for every video in a folder",
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
			output := strings.TrimSpace(outputFolder)
			if output != "" {
				if output, err = config.ExpandPath(output); err != nil {
					return fmt.Errorf("resolve output folder: %w", err)
				}
			}

			sess, err := openSession(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			res, runErr := sess.runner.RunBatch(cmd.Context(), workflow.BatchRequest{
				VideoFolder:  folder,
				OutputFolder: output,
				Extensions:   extensions,
				Force:        force,
			})
			if res == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if len(res.Items) == 0 {
				fmt.Fprintf(out, "No videos found in %s\n", folder)
				return runErr
			}
			fmt.Fprintln(out, renderBatchTable(res))
			fmt.Fprintf(out, "\nOutput folder: %s\n", res.OutputFolder)
			fmt.Fprintf(out, "Processed %d videos: %d extracted, %d skipped, %d without detector output, %d failed (%s)\n",
				len(res.Items),
				res.Count(workflow.BatchExtracted),
				res.Count(workflow.BatchSkipped),
				res.Count(workflow.BatchNoWorkspace),
				res.Count(workflow.BatchFailed),
				res.Elapsed.Round(time.Millisecond))
			if runErr != nil {
				return runErr
			}
			if failed := res.Count(workflow.BatchFailed); failed > 0 {
				return fmt.Errorf("%d of %d videos failed; see the log for details", failed, len(res.Items))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&videoFolder, "video-folder", "", "Folder containing source videos")
	cmd.Flags().StringVar(&outputFolder, "output-folder", "", "Folder holding detector workspaces (default <video-folder>_output)")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "Video extensions to include (default batch.video_extensions)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-extract videos already completed with the same parameters")
	_ = cmd.MarkFlagRequired("video-folder")
	overrides.register(cmd, true)
	return cmd
}

func renderBatchTable(res *workflow.BatchResult) string {
	rows := make([][]string, 0, len(res.Items))
	for _, item := range res.Items {
		clips := "-"
		failed := "-"
		if item.Status == workflow.BatchExtracted || item.Status == workflow.BatchSkipped || item.RunID != "" {
			clips = strconv.FormatInt(item.Extracted, 10)
			failed = strconv.FormatInt(item.Failed, 10)
		}
		rows = append(rows, []string{item.Name, string(item.Status), clips, failed, shortID(item.RunID)})
	}
	return renderTable(
		[]column{textCol("Video"), textCol("Status"), numCol("Clips"), numCol("Failed"), textCol("Run")},
		rows,
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}
