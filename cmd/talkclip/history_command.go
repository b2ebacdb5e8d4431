package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"talkclip/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent extraction runs, or the clips of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cmd.Context(), cfg.Paths.LedgerPath)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, strings.TrimSpace(args[0]), jsonOutput)
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func showRun(cmd *cobra.Command, store *ledger.Store, id string, jsonOutput bool) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}
	clips, err := store.ListClips(cmd.Context(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd, struct {
			Run   *ledger.Run   `json:"run"`
			Clips []ledger.Clip `json:"clips"`
		}{run, clips})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:        %s\n", run.ID)
	fmt.Fprintf(out, "Video:      %s (%s)\n", run.Video, run.VideoFolder)
	fmt.Fprintf(out, "Parameters: %s\n", run.ParamsKey())
	fmt.Fprintf(out, "Status:     %s\n", run.Status)
	if run.Error != "" {
		fmt.Fprintf(out, "Error:      %s\n", run.Error)
	}
	fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format(time.DateTime))
	if len(clips) == 0 {
		fmt.Fprintln(out, "No clips recorded")
		return nil
	}
	rows := make([][]string, 0, len(clips))
	for _, clip := range clips {
		result := "ok"
		if clip.Error != "" {
			result = "failed"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%05d", clip.Track),
			strconv.Itoa(clip.Segment),
			fmt.Sprintf("%d-%d", clip.StartFrame, clip.EndFrame),
			formatSeconds(clip.DurationSeconds),
			audioSource(clip),
			result,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]column{textCol("Track"), numCol("Segment"), numCol("Frames"), numCol("Duration"), textCol("Audio"), textCol("Result")},
		rows,
	))
	return nil
}

func audioSource(clip ledger.Clip) string {
	if clip.Error != "" && clip.AudioPath == "" {
		return "-"
	}
	if clip.AudioDecoded {
		return "decoded"
	}
	return "track"
}

func renderRunTable(runs []ledger.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		elapsed := "-"
		if d := run.Elapsed(); d > 0 {
			elapsed = d.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.Video,
			string(run.Status),
			fmt.Sprintf("%d/%d", run.Extracted, run.Kept),
			strconv.FormatFloat(run.Params.Threshold, 'g', -1, 64),
			strconv.FormatFloat(run.Params.MinDurationSeconds, 'g', -1, 64),
			strconv.FormatFloat(run.Params.FPS, 'g', -1, 64),
			humanize.Time(run.StartedAt),
			elapsed,
		})
	}
	return renderTable(
		[]column{
			textCol("Run"), textCol("Video"), textCol("Status"), numCol("Clips"),
			numCol("Threshold"), numCol("Min Dur"), numCol("FPS"), textCol("Started"), numCol("Elapsed"),
		},
		rows,
	)
}
