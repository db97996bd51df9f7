// Package main hosts the hearth CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the household chores hearth automates:
// importing credit card statement CSVs into MySQL, shipping database backups
// to S3, repacking comic zip archives as cbz, playing announcements on the
// cast device, and browsing the run journal. It centralizes configuration
// resolution, logger construction, and journal bookkeeping so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
