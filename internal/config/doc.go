// Package config loads, normalizes, and validates stitch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and pipeline need: workspace/output directories, engine binaries,
// the fixed audio target profile, fetch timeouts, and log settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
