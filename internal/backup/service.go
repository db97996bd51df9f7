package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/gzip"

	"hearth/internal/config"
	"hearth/internal/logging"
	"hearth/internal/services"
)

// Result describes a completed backup.
type Result struct {
	Bucket   string
	Key      string
	Bytes    int64
	Duration time.Duration
}

// Location renders the destination as an s3:// URL.
func (r Result) Location() string {
	return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key)
}

// Service dumps the histories database and ships the compressed dump to S3.
type Service struct {
	cfg      *config.Config
	dumper   *Dumper
	uploader Uploader
	logger   *slog.Logger
}

// ServiceOption configures the backup service.
type ServiceOption func(*Service)

// WithUploader injects an uploader (primarily for tests).
func WithUploader(uploader Uploader) ServiceOption {
	return func(s *Service) {
		if uploader != nil {
			s.uploader = uploader
		}
	}
}

// WithDumper injects a dumper (primarily for tests).
func WithDumper(dumper *Dumper) ServiceOption {
	return func(s *Service) {
		if dumper != nil {
			s.dumper = dumper
		}
	}
}

// NewService builds the backup service from configuration.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if err := cfg.RequireMySQL(); err != nil {
		return nil, err
	}
	if err := cfg.RequireBackup(); err != nil {
		return nil, err
	}

	dumper, err := NewDumper(cfg.Backup.MysqldumpBinary, cfg.Backup.TimeoutSeconds)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "backup", "", err.Error(), nil)
	}

	service := &Service{
		cfg:    cfg,
		dumper: dumper,
		logger: logging.NewComponentLogger(logger, "backup"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Run produces one backup: dump, compress, upload. A lock file in the
// state directory guards against concurrent invocations.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := s.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "backup", "ensure directories", "", err)
	}

	lock := flock.New(s.cfg.BackupLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "backup", "lock", s.cfg.BackupLockPath(), err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "backup", "lock", "another backup is already running", nil)
	}
	defer func() { _ = lock.Unlock() }()

	if s.uploader == nil {
		uploader, err := NewS3Uploader(ctx, s.cfg.Backup.Region)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "backup", "aws", "", err)
		}
		s.uploader = uploader
	}

	dumpPath, size, err := s.writeDump(ctx)
	if dumpPath != "" {
		defer func() { _ = os.Remove(dumpPath) }()
	}
	if err != nil {
		return nil, err
	}

	key := path.Join(s.cfg.Backup.Prefix, s.cfg.MySQL.Database+".sql.gz")
	file, err := os.Open(dumpPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "backup", "open dump", dumpPath, err)
	}
	defer file.Close()

	s.logger.Info("uploading dump",
		"bucket", s.cfg.Backup.Bucket,
		"key", key,
		"bytes", size)
	if err := s.uploader.Upload(ctx, s.cfg.Backup.Bucket, key, file); err != nil {
		return nil, services.Wrap(services.ErrTransient, "backup", "upload", "", err)
	}

	result := &Result{
		Bucket:   s.cfg.Backup.Bucket,
		Key:      key,
		Bytes:    size,
		Duration: time.Since(start),
	}
	s.logger.Info("backup complete",
		"location", result.Location(),
		"bytes", result.Bytes,
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// writeDump stages the compressed dump in the state directory and returns
// its path and size.
func (s *Service) writeDump(ctx context.Context) (string, int64, error) {
	tmp, err := os.CreateTemp(s.cfg.Paths.StateDir, "backup-*.sql.gz")
	if err != nil {
		return "", 0, services.Wrap(services.ErrTransient, "backup", "create temp file", "", err)
	}
	tmpPath := tmp.Name()

	gz, err := gzip.NewWriterLevel(tmp, gzip.BestCompression)
	if err != nil {
		_ = tmp.Close()
		return tmpPath, 0, services.Wrap(services.ErrTransient, "backup", "gzip", "", err)
	}

	s.logger.Info("dumping database",
		"database", s.cfg.MySQL.Database,
		"host", s.cfg.MySQL.Host)
	if err := s.dumper.Dump(ctx, s.cfg.MySQL, s.cfg.Backup.DumpArgs, gz); err != nil {
		_ = gz.Close()
		_ = tmp.Close()
		return tmpPath, 0, services.Wrap(services.ErrExternalTool, "backup", "mysqldump", "", err)
	}
	if err := gz.Close(); err != nil {
		_ = tmp.Close()
		return tmpPath, 0, services.Wrap(services.ErrTransient, "backup", "flush gzip", "", err)
	}
	if err := tmp.Close(); err != nil {
		return tmpPath, 0, services.Wrap(services.ErrTransient, "backup", "close dump", "", err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return tmpPath, 0, services.Wrap(services.ErrTransient, "backup", "stat dump", "", err)
	}
	return tmpPath, info.Size(), nil
}
