// Package services provides shared error classification for hearth
// subsystems.
//
// Commands and services tag failures with sentinel errors (configuration,
// external tool, transient) via Wrap so the CLI layer can choose exit
// behavior with errors.Is instead of string matching.
package services
