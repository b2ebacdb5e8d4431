// Package config loads, normalizes, and validates talkclip configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TALKCLIP_FFMPEG. The Config type centralizes the detection parameters,
// extraction tooling and workspace layout, so the CLI can derive immutable
// per-run values in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
