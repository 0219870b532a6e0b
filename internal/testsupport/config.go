package testsupport

import (
	"path/filepath"
	"testing"

	"surfacegate/internal/config"
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
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

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

// WithEngine replaces the engine list with a single engine entry.
func WithEngine(engine config.Engine) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engines = []config.Engine{engine}
	}
}

// WithAPIToken sets the promotion credential on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithFetchBaseURL points network manifest fetches at the given base URL.
func WithFetchBaseURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.FetchBaseURL = baseURL
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
