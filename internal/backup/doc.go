// Package backup dumps the histories MySQL database with mysqldump,
// compresses the dump, and uploads it to S3 under a stable key so the
// bucket always holds the latest snapshot.
package backup
