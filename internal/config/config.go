package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Audit configures the external audit command.
type Audit struct {
	Binary          string `toml:"binary"`
	AdvisoryBaseURL string `toml:"advisory_base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Schedule configures the check cadence.
type Schedule struct {
	IntervalSeconds int `toml:"interval_seconds"`
	JitterSeconds   int `toml:"jitter_seconds"`
}

// Signal configures the filesystem signal watcher fed by package-manager hooks.
type Signal struct {
	Dir     string `toml:"dir"`
	Marker  string `toml:"marker"`
	Backend string `toml:"backend"`
}

// Design holds presentation settings handed to front-ends.
type Design struct {
	IconTheme string `toml:"icon_theme"`
}

// Notifications configures status-change notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Desktop        bool   `toml:"desktop"`
}

// Paths contains runtime state locations.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for audittray.
//
// Configuration sections by subsystem:
//   - Audit: external audit binary and advisory links
//   - Schedule: base interval and jitter bound
//   - Signal: watched directory and backend for package-manager signals
//   - Design: icon theme name for front-ends
//   - Notifications: ntfy and desktop notifications
//   - Paths: lock file, socket and log location
//   - Logging: log format and level
type Config struct {
	Audit         Audit         `toml:"audit"`
	Schedule      Schedule      `toml:"schedule"`
	Signal        Signal        `toml:"signal"`
	Design        Design        `toml:"design"`
	Notifications Notifications `toml:"notifications"`
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
}

// SystemConfigPath is read first and overridden by the user file.
const SystemConfigPath = "/etc/audittray/config.toml"

// DefaultConfigPath returns the absolute path to the per-user configuration file.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return expandPath(filepath.Join(base, "audittray", "config.toml"))
	}
	return expandPath("~/.config/audittray/config.toml")
}

// Load applies the system file, the user file and finally the explicit path (when
// given) on top of the defaults. Later files only override keys they set. It
// returns the config and the list of files that were applied.
func Load(path string) (*Config, []string, error) {
	cfg := Default()

	candidates := []string{SystemConfigPath}
	if userPath, err := DefaultConfigPath(); err == nil {
		candidates = append(candidates, userPath)
	}
	if strings.TrimSpace(path) != "" {
		explicit, err := expandPath(path)
		if err != nil {
			return nil, nil, err
		}
		if _, err := os.Stat(explicit); err != nil {
			return nil, nil, fmt.Errorf("stat config: %w", err)
		}
		candidates = append(candidates, explicit)
	}

	var applied []string
	for _, candidate := range candidates {
		ok, err := applyFile(&cfg, candidate)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			applied = append(applied, candidate)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, applied, nil
}

func applyFile(cfg *Config, path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open config %s: %w", path, err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return true, nil
}

// EnsureDirectories creates the state directory used for the lock, socket and log.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// CheckInterval returns the base wait between scheduled checks.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Schedule.IntervalSeconds) * time.Second
}

// CheckJitter returns the exclusive upper bound of the random addition to the interval.
func (c *Config) CheckJitter() time.Duration {
	return time.Duration(c.Schedule.JitterSeconds) * time.Second
}

// AuditTimeout bounds a single audit run. Zero means unbounded.
func (c *Config) AuditTimeout() time.Duration {
	return time.Duration(c.Audit.TimeoutSeconds) * time.Second
}

// MarkerPath is the file the package-manager hook touches.
func (c *Config) MarkerPath() string {
	return filepath.Join(c.Signal.Dir, c.Signal.Marker)
}

// LockPath guards against a second daemon instance.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "audittray.lock")
}

// SocketPath is where the daemon serves IPC.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "audittray.sock")
}

// LogPath is the daemon log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "audittray.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(out), nil
}
