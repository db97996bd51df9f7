package backup_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/gzip"

	"hearth/internal/backup"
	"hearth/internal/config"
	"hearth/internal/logging"
	"hearth/internal/services"
)

type stubExecutor struct {
	binary string
	args   []string
	env    []string
	output string
	err    error
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, env []string, stdout io.Writer) error {
	s.binary = binary
	s.args = args
	s.env = env
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(stdout, s.output)
	return err
}

type stubUploader struct {
	bucket string
	key    string
	body   []byte
	err    error
}

func (s *stubUploader) Upload(_ context.Context, bucket, key string, body io.Reader) error {
	s.bucket = bucket
	s.key = key
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.body = data
	return s.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StateDir = base
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.MySQL.User = "hearth"
	cfg.MySQL.Password = "secret"
	cfg.MySQL.Database = "money"
	cfg.Backup.Bucket = "statements-backup"
	return &cfg
}

func newService(t *testing.T, cfg *config.Config, exec backup.Executor, uploader backup.Uploader) *backup.Service {
	t.Helper()
	dumper, err := backup.NewDumper(cfg.Backup.MysqldumpBinary, cfg.Backup.TimeoutSeconds, backup.WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewDumper returned error: %v", err)
	}
	service, err := backup.NewService(cfg, logging.NewNop(),
		backup.WithDumper(dumper),
		backup.WithUploader(uploader))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return service
}

func TestRunDumpsCompressesAndUploads(t *testing.T) {
	cfg := testConfig(t)
	exec := &stubExecutor{output: "-- MySQL dump\nCREATE TABLE credit_histories (id INT);\n"}
	uploader := &stubUploader{}
	service := newService(t, cfg, exec, uploader)

	result, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if exec.binary != "mysqldump" {
		t.Fatalf("binary = %q", exec.binary)
	}
	joined := strings.Join(exec.args, " ")
	for _, want := range []string{"--host localhost", "--port 3306", "--user hearth", "--single-transaction", "money"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %q", want, joined)
		}
	}
	if strings.Contains(joined, "secret") {
		t.Fatalf("password leaked into args: %q", joined)
	}
	found := false
	for _, entry := range exec.env {
		if entry == "MYSQL_PWD=secret" {
			found = true
		}
	}
	if !found {
		t.Fatalf("MYSQL_PWD missing from env: %v", exec.env)
	}

	if uploader.bucket != "statements-backup" {
		t.Fatalf("bucket = %q", uploader.bucket)
	}
	if uploader.key != "mysql-backups/money.sql.gz" {
		t.Fatalf("key = %q", uploader.key)
	}

	gz, err := gzip.NewReader(bytes.NewReader(uploader.body))
	if err != nil {
		t.Fatalf("uploaded body is not gzip: %v", err)
	}
	dump, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("decompress body: %v", err)
	}
	if string(dump) != exec.output {
		t.Fatalf("dump content mismatch: %q", dump)
	}

	if result.Bytes != int64(len(uploader.body)) {
		t.Fatalf("Bytes = %d, uploaded %d", result.Bytes, len(uploader.body))
	}
	if result.Location() != "s3://statements-backup/mysql-backups/money.sql.gz" {
		t.Fatalf("Location = %q", result.Location())
	}
}

func TestRunCleansUpTempFile(t *testing.T) {
	cfg := testConfig(t)
	service := newService(t, cfg, &stubExecutor{output: "dump"}, &stubUploader{})

	if _, err := service.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	entries, err := os.ReadDir(cfg.Paths.StateDir)
	if err != nil {
		t.Fatalf("read state dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "backup-") {
			t.Fatalf("temp dump left behind: %s", entry.Name())
		}
	}
}

func TestRunReportsDumpFailure(t *testing.T) {
	cfg := testConfig(t)
	uploader := &stubUploader{}
	service := newService(t, cfg, &stubExecutor{err: errors.New("Access denied for user")}, uploader)

	_, err := service.Run(context.Background())
	if err == nil {
		t.Fatal("expected dump failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if uploader.bucket != "" {
		t.Fatal("upload should not run after a failed dump")
	}
}

func TestRunReportsUploadFailure(t *testing.T) {
	cfg := testConfig(t)
	service := newService(t, cfg, &stubExecutor{output: "dump"}, &stubUploader{err: errors.New("no such bucket")})

	_, err := service.Run(context.Background())
	if err == nil {
		t.Fatal("expected upload failure")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestRunRefusesConcurrentBackups(t *testing.T) {
	cfg := testConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	lock := flock.New(cfg.BackupLockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take test lock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	service := newService(t, cfg, &stubExecutor{output: "dump"}, &stubUploader{})
	_, err = service.Run(context.Background())
	if err == nil {
		t.Fatal("expected lock contention error")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewServiceRequiresBucket(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backup.Bucket = ""

	_, err := backup.NewService(cfg, logging.NewNop())
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
