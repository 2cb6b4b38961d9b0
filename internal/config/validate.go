package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if err := c.validateSignal(); err != nil {
		return err
	}
	if err := c.validateDesign(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSchedule() error {
	if c.Schedule.IntervalSeconds <= 0 {
		return errors.New("schedule.interval_seconds must be positive")
	}
	if c.Schedule.JitterSeconds < 0 {
		return errors.New("schedule.jitter_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.TimeoutSeconds < 0 {
		return errors.New("audit.timeout_seconds must be zero or positive")
	}
	if !strings.HasPrefix(c.Audit.AdvisoryBaseURL, "http://") && !strings.HasPrefix(c.Audit.AdvisoryBaseURL, "https://") {
		return fmt.Errorf("audit.advisory_base_url must be an http(s) URL, got %q", c.Audit.AdvisoryBaseURL)
	}
	return nil
}

func (c *Config) validateSignal() error {
	switch c.Signal.Backend {
	case SignalBackendInotify, SignalBackendFsnotify:
	default:
		return fmt.Errorf("signal.backend: unsupported value %q (expected %s or %s)", c.Signal.Backend, SignalBackendInotify, SignalBackendFsnotify)
	}
	if strings.ContainsAny(c.Signal.Marker, `/\`) {
		return fmt.Errorf("signal.marker must be a file name, got %q", c.Signal.Marker)
	}
	return nil
}

// The theme name ends up inside an icon path, so it must not allow traversal.
func (c *Config) validateDesign() error {
	if !ValidIconTheme(c.Design.IconTheme) {
		return fmt.Errorf("design.icon_theme %q is invalid: only characters a to z are allowed", c.Design.IconTheme)
	}
	return nil
}

// ValidIconTheme reports whether name consists only of lower-case ASCII letters.
func ValidIconTheme(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
