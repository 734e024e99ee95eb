// Package config loads, normalizes, and validates kashi configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the KASHI_OUTPUT_DIR environment fallback. The
// Config type centralizes every knob the CLI needs: output and catalog
// locations, decode tuning, batch parallelism, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum spellings, and clear validation errors.
package config
