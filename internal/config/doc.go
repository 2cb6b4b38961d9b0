// Package config loads, normalizes, and validates audittray configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), layers the system and user TOML files, and honours the
// ARCH_AUDIT_BIN environment override for the audit command. The Config type
// centralizes every knob the daemon and CLI need, including the base check
// interval and jitter bound handed to the scheduler.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
