package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"talkclip/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			results := preflight.RunAll(cfg)
			for _, line := range checkLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d required checks failed", len(failed))
			}
			return nil
		},
	}
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := renderSectionHeader("Dependencies", colorize)
	failed := len(preflight.Failed(results))
	if failed == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, "All required checks passed", colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d required checks failed", failed), colorize))
	}
	for _, r := range results {
		kind := statusOK
		switch {
		case r.Passed:
		case r.Optional:
			kind = statusWarn
		default:
			kind = statusError
		}
		detail := r.Detail
		if r.Optional && !r.Passed {
			detail += " (optional)"
		}
		lines = append(lines, renderStatusLine(r.Name, kind, detail, colorize))
	}
	return lines
}
