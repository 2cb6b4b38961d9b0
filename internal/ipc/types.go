package ipc

import (
	"time"

	"audittray/internal/audit"
)

// ServiceName is the RPC receiver name.
const ServiceName = "AuditTray"

// CheckNowRequest asks the daemon for an immediate check.
type CheckNowRequest struct{}

// CheckNowResponse reports whether the request was queued.
type CheckNowResponse struct {
	Queued bool `json:"queued"`
}

// StatusRequest fetches the latest status.
type StatusRequest struct{}

// StatusResponse describes the latest completed check and daemon state.
type StatusResponse struct {
	PID            int            `json:"pid"`
	LockPath       string         `json:"lock_path"`
	AuditBinary    string         `json:"audit_binary"`
	Checked        bool           `json:"checked"`
	CheckID        string         `json:"check_id,omitempty"`
	CheckedAt      time.Time      `json:"checked_at"`
	Text           string         `json:"text"`
	Icon           string         `json:"icon"`
	IconTheme      string         `json:"icon_theme"`
	IconDir        string         `json:"icon_dir,omitempty"`
	Updates        []audit.Update `json:"updates,omitempty"`
	Error          string         `json:"error,omitempty"`
	NeedsUpdates   bool           `json:"needs_updates"`
	Checks         uint64         `json:"checks"`
	NextCheck      time.Time      `json:"next_check"`
	WatcherRunning bool           `json:"watcher_running"`
	WatcherError   string         `json:"watcher_error,omitempty"`
}

// TestNotificationRequest asks the daemon to send a test notification.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the outcome of a test notification.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
