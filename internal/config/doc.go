// Package config loads, normalizes, and validates rewatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY. The Config type centralizes every knob the CLI needs: where
// the catalog lives, which feed to reconcile against, how the streaming
// search is throttled, and the studio tables that drive native-service
// inference.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
