// Package ipc exposes the daemon over JSON-RPC on a Unix socket and ships the
// matching client used by the CLI and front-ends.
//
// The server depends only on the Controller interface, so the daemon can own
// the server without an import cycle. AuditTray.CheckNow is the trigger
// boundary for front-ends; AuditTray.Status returns the latest projected
// status together with scheduler and watcher state.
package ipc
