// Package config loads, validates, and normalizes cutroom's TOML
// configuration. Paths are expanded to absolute form during load so the rest
// of the codebase never deals with ~ or relative directories.
package config
