// Package daemon coordinates the long-running audittray process.
//
// It wires the audit invoker, scheduler, signal watcher, status board,
// notifications and IPC server into a single lifecycle with flock-based
// locking to prevent multiple instances. Individual behaviours live in their
// own packages; the daemon focuses on startup, shutdown and the glue between
// the wake queue and the result queue.
package daemon
