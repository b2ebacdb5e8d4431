package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"talkclip/internal/config"
	"talkclip/internal/deps"
	"talkclip/internal/extract"
	"talkclip/internal/ledger"
	"talkclip/internal/logging"
	"talkclip/internal/media/ffmpeg"
	"talkclip/internal/media/ffprobe"
	"talkclip/internal/workflow"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger writes human output to stderr and a JSON copy to the log directory.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
		FilePath:    filepath.Join(cfg.Paths.LogDir, logging.LogFileName),
	})
}

// session bundles what a media-touching command needs.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	ledger *ledger.Store
	runner *workflow.Runner
}

func (s *session) Close() {
	if s.ledger != nil {
		_ = s.ledger.Close()
	}
}

// openSession builds the logger, ledger, and runner for cfg. When requireTools
// is set the configured ffmpeg (and ffprobe if verification is on) must exist.
func openSession(ctx context.Context, cfg *config.Config, requireTools bool) (*session, error) {
	if requireTools {
		if missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
			names := make([]string, 0, len(missing))
			for _, m := range missing {
				names = append(names, fmt.Sprintf("%s (%s)", m.Name, m.Detail))
			}
			return nil, fmt.Errorf("missing required tools: %s; run `talkclip doctor` for details", strings.Join(names, ", "))
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	store, err := ledger.Open(ctx, cfg.Paths.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	timeout := cfg.ToolTimeout()
	tool := ffmpeg.New(cfg.Extraction.FFmpegBinary, ffmpeg.WithTimeout(timeout))
	prober := ffprobe.NewProber(cfg.Extraction.FFprobeBinary, timeout, nil)
	runner := workflow.NewRunner(cfg, workflow.Dependencies{
		Clips:    tool,
		Verifier: extract.NewMediaVerifier(prober),
		Ledger:   store,
	}, logger)

	return &session{cfg: cfg, logger: logger, ledger: store, runner: runner}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
