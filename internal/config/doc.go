// Package config loads, normalizes, and validates streamcheck configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and fills backend credentials from the environment, loading a
// .env file first when one sits in the working directory. Validation reports
// every missing credential at once so a fresh install can be fixed in one pass.
package config
