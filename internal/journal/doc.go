// Package journal keeps a local history of hearth command runs so the
// history command can show what ran, when, and whether it worked. Journal
// writes are advisory; a journal failure never fails the command being
// recorded.
package journal
