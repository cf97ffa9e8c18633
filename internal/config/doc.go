// Package config loads, normalizes, and validates actled configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files from the usual locations, and rejects unusable values before
// any hardware is touched. Command-line flags are applied on top of a loaded
// Config and re-checked with Validate.
package config
