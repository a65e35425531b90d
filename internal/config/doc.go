// Package config loads, normalizes, and validates studiodrop configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STUDIODROP_PROFILE. The Config type centralizes every knob the CLI and the
// packaging engine need, allowing profile/state/log directories and the
// default delivery profile to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
