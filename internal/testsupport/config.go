package testsupport

import (
	"path/filepath"
	"testing"

	"celldump/internal/config"
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
	cfgVal.Cache.Path = filepath.Join(base, "cache", "fingerprints.db")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Parser.Binary = filepath.Join(base, "bin", "skyrim-cell-dump")
	cfgVal.Parser.TimeoutSeconds = 10

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

// WithCacheDisabled turns the fingerprint cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithParserBinary overrides the parser executable.
func WithParserBinary(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Parser.Binary = path
	}
}

// WithStubParser writes a stub parser at the configured binary path.
func WithStubParser(stub StubParser) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Parser.Binary = WriteStubParser(b.t, filepath.Join(b.baseDir, "bin"), stub)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Cache.Path))
}
