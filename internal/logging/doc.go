// Package logging configures structured slog output for hearth commands,
// with a compact console format for interactive use and JSON for files.
package logging
