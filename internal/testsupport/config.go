package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"audittray/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The schedule is shortened and ntfy stays disabled unless an option sets it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Signal.Dir = filepath.Join(base, "signal")
	cfgVal.Signal.Backend = config.SignalBackendFsnotify
	cfgVal.Schedule.IntervalSeconds = 3600
	cfgVal.Schedule.JitterSeconds = 0
	cfgVal.Audit.AdvisoryBaseURL = "https://security.example.org"

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

// WithAuditScript installs a stub audit command with the given shell body and
// points the config at it.
func WithAuditScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audit.Binary = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "arch-audit", body)
	}
}

// WithNtfyTopic enables ntfy notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, arch-audit is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"arch-audit"}
		}
		binDir := filepath.Join(b.baseDir, "path-bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
