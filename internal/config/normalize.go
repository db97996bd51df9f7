package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMySQL()
	if err := c.normalizeImport(); err != nil {
		return err
	}
	c.normalizeBackup()
	if err := c.normalizeConvert(); err != nil {
		return err
	}
	if err := c.normalizeSpeech(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMySQL() {
	c.MySQL.Host = strings.TrimSpace(c.MySQL.Host)
	if c.MySQL.Host == "" {
		c.MySQL.Host = defaultMySQLHost
	}
	if c.MySQL.Port <= 0 {
		c.MySQL.Port = defaultMySQLPort
	}
	c.MySQL.User = strings.TrimSpace(c.MySQL.User)
	c.MySQL.Database = strings.TrimSpace(c.MySQL.Database)
	if c.MySQL.Password == "" {
		if value, ok := os.LookupEnv("DB_PASSWORD"); ok {
			c.MySQL.Password = value
		}
	}
	if c.MySQL.Database == "" {
		if value, ok := os.LookupEnv("DB_NAME"); ok {
			c.MySQL.Database = strings.TrimSpace(value)
		}
	}
	if c.MySQL.User == "" {
		if value, ok := os.LookupEnv("DB_USER"); ok {
			c.MySQL.User = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeImport() error {
	var err error
	if c.Import.InboxDir, err = expandPath(c.Import.InboxDir); err != nil {
		return fmt.Errorf("import.inbox_dir: %w", err)
	}
	services := make([]string, 0, len(c.Import.Services))
	for _, svc := range c.Import.Services {
		svc = strings.ToLower(strings.TrimSpace(svc))
		if svc != "" {
			services = append(services, svc)
		}
	}
	if len(services) == 0 {
		services = Default().Import.Services
	}
	c.Import.Services = services
	return nil
}

func (c *Config) normalizeBackup() {
	c.Backup.MysqldumpBinary = strings.TrimSpace(c.Backup.MysqldumpBinary)
	if c.Backup.MysqldumpBinary == "" {
		c.Backup.MysqldumpBinary = defaultMysqldumpBinary
	}
	if c.Backup.TimeoutSeconds <= 0 {
		c.Backup.TimeoutSeconds = defaultBackupTimeout
	}
	c.Backup.Bucket = strings.TrimSpace(c.Backup.Bucket)
	if c.Backup.Bucket == "" {
		if value, ok := os.LookupEnv("S3_BUCKET"); ok {
			c.Backup.Bucket = strings.TrimSpace(value)
		}
	}
	c.Backup.Prefix = strings.Trim(strings.TrimSpace(c.Backup.Prefix), "/")
	if c.Backup.Prefix == "" {
		c.Backup.Prefix = defaultBackupPrefix
	}
	c.Backup.Region = strings.TrimSpace(c.Backup.Region)
}

func (c *Config) normalizeConvert() error {
	var err error
	if c.Convert.SourceDir, err = expandPath(c.Convert.SourceDir); err != nil {
		return fmt.Errorf("convert.source_dir: %w", err)
	}
	if c.Convert.OutputDir, err = expandPath(c.Convert.OutputDir); err != nil {
		return fmt.Errorf("convert.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSpeech() error {
	c.Speech.DeviceAddr = strings.TrimSpace(c.Speech.DeviceAddr)
	if c.Speech.DeviceAddr == "" {
		if value, ok := os.LookupEnv("CHROMECAST_HOST"); ok {
			c.Speech.DeviceAddr = strings.TrimSpace(value)
		}
	}
	if c.Speech.DevicePort <= 0 {
		c.Speech.DevicePort = defaultSpeechDevicePort
	}
	c.Speech.ServerURL = strings.TrimRight(strings.TrimSpace(c.Speech.ServerURL), "/")
	if c.Speech.ServerURL == "" {
		if value, ok := os.LookupEnv("SERVER_URL"); ok {
			c.Speech.ServerURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	var err error
	if c.Speech.AudioDir, err = expandPath(c.Speech.AudioDir); err != nil {
		return fmt.Errorf("speech.audio_dir: %w", err)
	}
	c.Speech.Language = strings.TrimSpace(c.Speech.Language)
	if c.Speech.Language == "" {
		c.Speech.Language = defaultSpeechLanguage
	}
	c.Speech.QuietStart = strings.TrimSpace(c.Speech.QuietStart)
	c.Speech.QuietEnd = strings.TrimSpace(c.Speech.QuietEnd)
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)
	if c.Notifications.WebhookURL == "" {
		if value, ok := os.LookupEnv("WEBHOOK_URL"); ok {
			c.Notifications.WebhookURL = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
