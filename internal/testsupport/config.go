package testsupport

import (
	"path/filepath"
	"testing"

	"talkclip/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LedgerPath = filepath.Join(base, "logs", "ledger.db")
	cfgVal.Extraction.Workers = 2
	cfgVal.Extraction.ToolTimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDetection overrides the detection parameters.
func WithDetection(threshold, minDuration, fps float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Detection.Threshold = threshold
		b.cfg.Detection.MinDurationSeconds = minDuration
		b.cfg.Detection.FPS = fps
	}
}

// WithWorkers sets the extraction worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.Workers = n
	}
}

// WithVerifyOutputs toggles post-extraction verification.
func WithVerifyOutputs(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.VerifyOutputs = enabled
	}
}

// WithBaseDir hands the builder temp root to fn for ad-hoc fixtures.
func WithBaseDir(fn func(string)) ConfigOption {
	return func(b *configBuilder) {
		fn(b.baseDir)
	}
}
