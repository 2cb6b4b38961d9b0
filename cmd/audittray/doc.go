// Package main hosts the audittray CLI entrypoint and command graph.
//
// The run command starts the daemon that checks for missing security updates
// on a jittered schedule, on demand, and after package upgrades. The remaining
// commands talk to that daemon over its unix socket, run one-shot checks, or
// scaffold configuration. The pacman hook calls `audittray notify`.
package main
