package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAudit()
	if err := c.normalizeSignal(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Design.IconTheme = strings.TrimSpace(c.Design.IconTheme)
	if c.Design.IconTheme == "" {
		c.Design.IconTheme = defaultIconTheme
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	return nil
}

func (c *Config) normalizeAudit() {
	if value, ok := os.LookupEnv(auditBinaryEnvOverride); ok && strings.TrimSpace(value) != "" {
		c.Audit.Binary = value
	}
	c.Audit.Binary = strings.TrimSpace(c.Audit.Binary)
	if c.Audit.Binary == "" {
		c.Audit.Binary = defaultAuditBinary
	}
	c.Audit.AdvisoryBaseURL = strings.TrimRight(strings.TrimSpace(c.Audit.AdvisoryBaseURL), "/")
	if c.Audit.AdvisoryBaseURL == "" {
		c.Audit.AdvisoryBaseURL = defaultAdvisoryBaseURL
	}
}

func (c *Config) normalizeSignal() error {
	if strings.TrimSpace(c.Signal.Dir) == "" {
		c.Signal.Dir = defaultSignalDir
	}
	var err error
	if c.Signal.Dir, err = expandPath(c.Signal.Dir); err != nil {
		return fmt.Errorf("signal.dir: %w", err)
	}
	c.Signal.Marker = strings.TrimSpace(c.Signal.Marker)
	if c.Signal.Marker == "" {
		c.Signal.Marker = defaultSignalMarker
	}
	c.Signal.Backend = strings.ToLower(strings.TrimSpace(c.Signal.Backend))
	if c.Signal.Backend == "" {
		c.Signal.Backend = defaultSignalBackend
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
