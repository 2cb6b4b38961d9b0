package config

const (
	defaultAuditBinary     = "arch-audit"
	defaultAdvisoryBaseURL = "https://security.archlinux.org"
	defaultIntervalSeconds = 2 * 60 * 60
	defaultJitterSeconds   = 4 * 60 * 60
	defaultSignalDir       = "/run/audittray"
	defaultSignalMarker    = "notify"
	defaultSignalBackend   = SignalBackendInotify
	defaultIconTheme       = "default"
	defaultNotifyTimeout   = 10
	defaultStateDir        = "~/.local/state/audittray"
	defaultLogFormat       = "console"
	defaultLogLevel        = "warn"
	auditBinaryEnvOverride = "ARCH_AUDIT_BIN"
)

// Signal watcher backends.
const (
	SignalBackendInotify  = "inotify"
	SignalBackendFsnotify = "fsnotify"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Audit: Audit{
			Binary:          defaultAuditBinary,
			AdvisoryBaseURL: defaultAdvisoryBaseURL,
		},
		Schedule: Schedule{
			IntervalSeconds: defaultIntervalSeconds,
			JitterSeconds:   defaultJitterSeconds,
		},
		Signal: Signal{
			Dir:     defaultSignalDir,
			Marker:  defaultSignalMarker,
			Backend: defaultSignalBackend,
		},
		Design: Design{
			IconTheme: defaultIconTheme,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
