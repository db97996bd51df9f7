// Package importer loads credit card statement exports into the histories
// database. Files are processed independently so one broken statement never
// blocks the rest of the inbox, and each file commits as a single batch.
package importer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hearth/internal/histories"
	"hearth/internal/logging"
	"hearth/internal/services"
	"hearth/internal/statement"
)

// FileStatus summarizes the outcome for one statement file.
type FileStatus string

const (
	StatusImported  FileStatus = "imported"
	StatusDuplicate FileStatus = "duplicate"
	StatusFailed    FileStatus = "failed"
)

// FileReport describes what happened to one statement file.
type FileReport struct {
	Service     string
	File        string
	Path        string
	Status      FileStatus
	Rows        int
	SkippedRows int
	Err         error
}

// Summary aggregates the reports of one import pass.
type Summary struct {
	Reports []FileReport
}

// Imported counts files whose rows were committed.
func (s Summary) Imported() int { return s.countStatus(StatusImported) }

// Duplicates counts files skipped because they were already loaded.
func (s Summary) Duplicates() int { return s.countStatus(StatusDuplicate) }

// Failed counts files that could not be imported.
func (s Summary) Failed() int { return s.countStatus(StatusFailed) }

// Rows totals the committed rows across all files.
func (s Summary) Rows() int {
	total := 0
	for _, report := range s.Reports {
		total += report.Rows
	}
	return total
}

// Err joins the errors of all failed files, or returns nil when every file
// imported or deduplicated cleanly.
func (s Summary) Err() error {
	var errs []error
	for _, report := range s.Reports {
		if report.Err != nil {
			errs = append(errs, report.Err)
		}
	}
	return errors.Join(errs...)
}

func (s Summary) countStatus(status FileStatus) int {
	count := 0
	for _, report := range s.Reports {
		if report.Status == status {
			count++
		}
	}
	return count
}

// Service imports statement files into a histories store.
type Service struct {
	store  *histories.Store
	logger *slog.Logger
}

// New creates an importer backed by the given store.
func New(store *histories.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logging.NewComponentLogger(logger, "importer"),
	}
}

// ImportFile loads one statement file. A file whose (service, file) pair
// already has rows is skipped, and any failure rolls back the whole file.
func (s *Service) ImportFile(ctx context.Context, serviceName, path string) FileReport {
	report := FileReport{Service: serviceName, File: filepath.Base(path), Path: path}

	exists, err := s.store.Exists(ctx, serviceName, report.File)
	if err != nil {
		return report.fail(services.Wrap(services.ErrTransient, "importer", "check duplicates", report.File, err))
	}
	if exists {
		report.Status = StatusDuplicate
		s.logger.Info("file already imported", "service", serviceName, "file", report.File)
		return report
	}

	file, err := os.Open(path)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return report.fail(services.Wrap(marker, "importer", "open statement", path, err))
	}
	defer file.Close()

	scanner, err := statement.NewScanner(file, serviceName, report.File)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, statement.ErrDecode) {
			marker = services.ErrValidation
		}
		return report.fail(services.Wrap(marker, "importer", "decode statement", path, err))
	}

	batch, err := s.store.Begin(ctx)
	if err != nil {
		return report.fail(services.Wrap(services.ErrTransient, "importer", "begin batch", report.File, err))
	}

	inserted := 0
	for scanner.Scan() {
		if err := batch.Insert(ctx, scanner.Record()); err != nil {
			_ = batch.Rollback()
			return report.fail(services.Wrap(services.ErrTransient, "importer", "insert record", report.File, err))
		}
		inserted++
	}
	if err := scanner.Err(); err != nil {
		_ = batch.Rollback()
		return report.fail(services.Wrap(services.ErrValidation, "importer", "read statement", path, err))
	}
	if err := batch.Commit(); err != nil {
		_ = batch.Rollback()
		return report.fail(services.Wrap(services.ErrTransient, "importer", "commit batch", report.File, err))
	}

	report.Status = StatusImported
	report.Rows = inserted
	report.SkippedRows = scanner.Skipped()
	if report.SkippedRows > 0 {
		s.logger.Warn("skipped malformed rows",
			"service", serviceName,
			"file", report.File,
			"skipped", report.SkippedRows)
	}
	s.logger.Info("file imported",
		"service", serviceName,
		"file", report.File,
		"rows", inserted)
	return report
}

// ImportDir walks <root>/<service>/*.csv for every configured service and
// imports each file. Missing service directories are skipped.
func (s *Service) ImportDir(ctx context.Context, root string, serviceNames []string) (Summary, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "importer", "inbox", root, err)
	}
	if !info.IsDir() {
		return Summary{}, services.Wrap(services.ErrConfiguration, "importer", "inbox", root+" is not a directory", nil)
	}

	var summary Summary
	for _, serviceName := range serviceNames {
		dir := filepath.Join(root, serviceName)
		paths, err := statementPaths(dir)
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("service directory missing", "dir", dir)
			continue
		}
		if err != nil {
			return summary, services.Wrap(services.ErrTransient, "importer", "list statements", dir, err)
		}
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			summary.Reports = append(summary.Reports, s.ImportFile(ctx, serviceName, path))
		}
	}
	return summary, nil
}

func (r FileReport) fail(err error) FileReport {
	r.Status = StatusFailed
	r.Err = err
	return r
}

// statementPaths lists the CSV files directly inside dir in name order.
func statementPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
