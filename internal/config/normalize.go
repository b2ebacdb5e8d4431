package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeLayout()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = filepath.Join(c.Paths.LogDir, defaultLedgerFile)
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.FFmpegBinary = strings.TrimSpace(c.Extraction.FFmpegBinary)
	if c.Extraction.FFmpegBinary == "" || c.Extraction.FFmpegBinary == defaultFFmpegBinary {
		if value, ok := os.LookupEnv("TALKCLIP_FFMPEG"); ok && strings.TrimSpace(value) != "" {
			c.Extraction.FFmpegBinary = strings.TrimSpace(value)
		} else {
			c.Extraction.FFmpegBinary = defaultFFmpegBinary
		}
	}
	c.Extraction.FFprobeBinary = strings.TrimSpace(c.Extraction.FFprobeBinary)
	if c.Extraction.FFprobeBinary == "" || c.Extraction.FFprobeBinary == defaultFFprobeBinary {
		if value, ok := os.LookupEnv("TALKCLIP_FFPROBE"); ok && strings.TrimSpace(value) != "" {
			c.Extraction.FFprobeBinary = strings.TrimSpace(value)
		} else {
			c.Extraction.FFprobeBinary = defaultFFprobeBinary
		}
	}
	c.Extraction.VideoExtension = normalizeExtension(c.Extraction.VideoExtension, defaultVideoExtension)
	c.Extraction.AudioExtension = normalizeExtension(c.Extraction.AudioExtension, defaultAudioExtension)
}

func (c *Config) normalizeLayout() {
	c.Layout.CropDir = defaultIfBlank(c.Layout.CropDir, defaultCropDir)
	c.Layout.WorkDir = defaultIfBlank(c.Layout.WorkDir, defaultWorkDir)
	c.Layout.OutputDir = defaultIfBlank(c.Layout.OutputDir, defaultOutputDir)
	c.Layout.ScoresFile = defaultIfBlank(c.Layout.ScoresFile, defaultScoresFile)
	c.Layout.TracksFile = defaultIfBlank(c.Layout.TracksFile, defaultTracksFile)
}

func (c *Config) normalizeBatch() {
	exts := make([]string, 0, len(c.Batch.VideoExtensions))
	seen := make(map[string]struct{}, len(c.Batch.VideoExtensions))
	for _, ext := range c.Batch.VideoExtensions {
		normalized := normalizeExtension(ext, "")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultVideoExtensions...)
	}
	c.Batch.VideoExtensions = exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeExtension(value, fallback string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func defaultIfBlank(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
