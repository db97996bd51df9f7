// Package testsupport provides shared fixtures for hearth tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"hearth/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Import.InboxDir = filepath.Join(base, "statements")
	cfgVal.Convert.SourceDir = filepath.Join(base, "zip")
	cfgVal.Convert.OutputDir = filepath.Join(base, "cbz")
	cfgVal.Speech.AudioDir = filepath.Join(base, "audio")
	cfgVal.MySQL.User = "hearth"
	cfgVal.MySQL.Password = "secret"
	cfgVal.MySQL.Database = "money"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBucket sets the backup bucket on the test config.
func WithBucket(bucket string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backup.Bucket = bucket
	}
}

// WithWebhook sets the Discord webhook URL on the test config.
func WithWebhook(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.WebhookURL = url
	}
}

// WithCastDevice sets the cast device and media server on the test config.
func WithCastDevice(addr, serverURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Speech.DeviceAddr = addr
		b.cfg.Speech.ServerURL = serverURL
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
