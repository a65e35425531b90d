package testsupport

import (
	"path/filepath"
	"testing"

	"studiodrop/internal/config"
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
	cfgVal.Paths.ProfilesDir = filepath.Join(base, "profiles")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Defaults.OutputRoot = filepath.Join(base, "output")
	cfgVal.Package.MinFreeMiB = 0

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

// WithProfile sets the default profile name on the test config.
func WithProfile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Defaults.Profile = name
	}
}

// WithHistoryDisabled turns off the run history store.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithHistoryKeep sets how many runs the history store retains.
func WithHistoryKeep(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Keep = n
	}
}

// WithoutLock disables the output-root package lock.
func WithoutLock() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Package.LockOutputRoot = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
