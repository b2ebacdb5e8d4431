package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if math.IsNaN(d.Threshold) || math.IsInf(d.Threshold, 0) {
		return errors.New("detection.threshold must be a finite number")
	}
	if math.IsNaN(d.FPS) || math.IsInf(d.FPS, 0) || d.FPS <= 0 {
		return errors.New("detection.fps must be positive")
	}
	if math.IsNaN(d.MinDurationSeconds) || math.IsInf(d.MinDurationSeconds, 0) || d.MinDurationSeconds < 0 {
		return errors.New("detection.min_duration_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if err := ensurePositiveMap(map[string]int{
		"extraction.workers":              c.Extraction.Workers,
		"extraction.tool_timeout_seconds": c.Extraction.ToolTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Extraction.FFmpegBinary == "" {
		return errors.New("extraction.ffmpeg_binary must be set")
	}
	if strings.ContainsAny(c.Extraction.VideoExtension, `/\`) || strings.ContainsAny(c.Extraction.AudioExtension, `/\`) {
		return errors.New("extraction.video_extension and extraction.audio_extension must be bare extensions")
	}
	if c.Extraction.VideoExtension == c.Extraction.AudioExtension {
		return fmt.Errorf("extraction.video_extension and extraction.audio_extension must differ (both %q)", c.Extraction.VideoExtension)
	}
	return nil
}

func (c *Config) validateLayout() error {
	for key, value := range map[string]string{
		"layout.crop_dir":    c.Layout.CropDir,
		"layout.work_dir":    c.Layout.WorkDir,
		"layout.output_dir":  c.Layout.OutputDir,
		"layout.scores_file": c.Layout.ScoresFile,
		"layout.tracks_file": c.Layout.TracksFile,
	} {
		if filepath.IsAbs(value) || strings.Contains(value, "..") {
			return fmt.Errorf("%s must be a relative name inside the video workspace", key)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
