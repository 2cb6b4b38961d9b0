package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"audittray/internal/config"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("ARCH_AUDIT_BIN", "")
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	home := isolateHome(t)

	cfg, applied, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	for _, path := range applied {
		if strings.HasPrefix(path, home) {
			t.Fatalf("expected no user config to be applied, got %v", applied)
		}
	}

	if want := filepath.Join(home, ".local", "state", "audittray"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.Audit.Binary != "arch-audit" {
		t.Fatalf("unexpected audit binary %q", cfg.Audit.Binary)
	}
	if cfg.CheckInterval() != 2*time.Hour {
		t.Fatalf("unexpected interval %s", cfg.CheckInterval())
	}
	if cfg.CheckJitter() != 4*time.Hour {
		t.Fatalf("unexpected jitter %s", cfg.CheckJitter())
	}
	if cfg.MarkerPath() != "/run/audittray/notify" {
		t.Fatalf("unexpected marker path %q", cfg.MarkerPath())
	}
	if cfg.Signal.Backend != config.SignalBackendInotify {
		t.Fatalf("unexpected backend %q", cfg.Signal.Backend)
	}
	if cfg.AuditTimeout() != 0 {
		t.Fatalf("expected unbounded audit timeout, got %s", cfg.AuditTimeout())
	}
}

func TestLoadEnvOverridesAuditBinary(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, filepath.Join(home, ".config", "audittray", "config.toml"), "[audit]\nbinary = \"from-file\"\n")
	t.Setenv("ARCH_AUDIT_BIN", "/opt/bin/arch-audit")

	cfg, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Audit.Binary != "/opt/bin/arch-audit" {
		t.Fatalf("expected env override, got %q", cfg.Audit.Binary)
	}
}

func TestLoadLayersUserAndExplicitFiles(t *testing.T) {
	home := isolateHome(t)
	userPath := filepath.Join(home, ".config", "audittray", "config.toml")
	writeFile(t, userPath, "[schedule]\ninterval_seconds = 60\njitter_seconds = 30\n\n[design]\nicon_theme = \"dark\"\n")

	explicit := filepath.Join(home, "override.toml")
	writeFile(t, explicit, "[schedule]\njitter_seconds = 0\n")

	cfg, applied, err := config.Load(explicit)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(applied) < 2 || applied[len(applied)-1] != explicit || applied[len(applied)-2] != userPath {
		t.Fatalf("unexpected applied files %v", applied)
	}
	if cfg.Schedule.IntervalSeconds != 60 {
		t.Fatalf("expected interval from user file, got %d", cfg.Schedule.IntervalSeconds)
	}
	if cfg.Schedule.JitterSeconds != 0 {
		t.Fatalf("expected jitter from explicit file, got %d", cfg.Schedule.JitterSeconds)
	}
	if cfg.Design.IconTheme != "dark" {
		t.Fatalf("expected theme from user file, got %q", cfg.Design.IconTheme)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	home := isolateHome(t)
	if _, _, err := config.Load(filepath.Join(home, "missing.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "typo.toml")
	writeFile(t, path, "[schedule]\nintervall = 5\n")
	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "zero interval", mutate: func(c *config.Config) { c.Schedule.IntervalSeconds = 0 }, wantErr: "interval_seconds"},
		{name: "negative jitter", mutate: func(c *config.Config) { c.Schedule.JitterSeconds = -1 }, wantErr: "jitter_seconds"},
		{name: "traversal theme", mutate: func(c *config.Config) { c.Design.IconTheme = "../etc" }, wantErr: "icon_theme"},
		{name: "upper case theme", mutate: func(c *config.Config) { c.Design.IconTheme = "Dark" }, wantErr: "icon_theme"},
		{name: "unknown backend", mutate: func(c *config.Config) { c.Signal.Backend = "poll" }, wantErr: "signal.backend"},
		{name: "marker with slash", mutate: func(c *config.Config) { c.Signal.Marker = "a/b" }, wantErr: "signal.marker"},
		{name: "bad advisory url", mutate: func(c *config.Config) { c.Audit.AdvisoryBaseURL = "ftp://x" }, wantErr: "advisory_base_url"},
		{name: "bad log level", mutate: func(c *config.Config) { c.Logging.Level = "trace" }, wantErr: "logging.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}

	defaults := config.Default()
	if decoded.Schedule != defaults.Schedule {
		t.Fatalf("sample schedule %+v differs from defaults %+v", decoded.Schedule, defaults.Schedule)
	}
	if decoded.Signal != defaults.Signal {
		t.Fatalf("sample signal %+v differs from defaults %+v", decoded.Signal, defaults.Signal)
	}
	if decoded.Audit != defaults.Audit {
		t.Fatalf("sample audit %+v differs from defaults %+v", decoded.Audit, defaults.Audit)
	}
}

func TestEncodeRoundTripsThroughLoad(t *testing.T) {
	home := isolateHome(t)
	cfg := config.Default()
	cfg.Schedule.IntervalSeconds = 90
	rendered, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(home, "rendered.toml")
	writeFile(t, path, rendered)

	loaded, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load rendered config: %v", err)
	}
	if loaded.Schedule.IntervalSeconds != 90 {
		t.Fatalf("expected interval 90, got %d", loaded.Schedule.IntervalSeconds)
	}
}
