// Package config loads and validates hearth's TOML configuration.
//
// Load resolves the config path (flag value, then ~/.config/hearth/config.toml,
// then ./hearth.toml), applies defaults, normalizes paths and trims values,
// pulls secrets from the environment when the file leaves them empty, and
// validates the result. Command-specific requirements are exposed as Require
// helpers so each command fails fast on exactly the settings it needs.
package config
