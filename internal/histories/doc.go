// Package histories is the MySQL persistence layer for imported credit
// card statement rows. Rows are written in per-file batches and files are
// deduplicated on the (service, file) pair, so re-running an import never
// doubles up transactions.
package histories
