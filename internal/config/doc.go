// Package config loads, normalizes, and validates celldump configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CELLDUMP_PARSER_BINARY and XDG_CACHE_HOME. The Config type centralizes the
// parser, cache and logging knobs the CLI needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
