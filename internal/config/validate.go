package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hearth/internal/services"
)

// Validate ensures the configuration is structurally usable. Settings only
// required by individual commands are checked by the Require helpers instead
// so that, for example, converting archives does not demand S3 credentials.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateMySQL(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateMySQL() error {
	if c.MySQL.Port < 1 || c.MySQL.Port > 65535 {
		return fmt.Errorf("mysql.port must be between 1 and 65535, got %d", c.MySQL.Port)
	}
	return nil
}

func (c *Config) validateSpeech() error {
	if c.Speech.DevicePort < 1 || c.Speech.DevicePort > 65535 {
		return fmt.Errorf("speech.device_port must be between 1 and 65535, got %d", c.Speech.DevicePort)
	}
	start := c.Speech.QuietStart
	end := c.Speech.QuietEnd
	if (start == "") != (end == "") {
		return errors.New("speech.quiet_start and speech.quiet_end must be set together")
	}
	for key, value := range map[string]string{
		"speech.quiet_start": start,
		"speech.quiet_end":   end,
	} {
		if value == "" {
			continue
		}
		if _, err := parseClock(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// RequireMySQL reports a configuration error when the import command cannot
// reach the database.
func (c *Config) RequireMySQL() error {
	if c.MySQL.User == "" {
		return services.Wrap(services.ErrConfiguration, "config", "", "mysql.user is required (set DB_USER or edit the config file)", nil)
	}
	if c.MySQL.Password == "" {
		return services.Wrap(services.ErrConfiguration, "config", "", "mysql.password is required (set DB_PASSWORD or edit the config file)", nil)
	}
	if c.MySQL.Database == "" {
		return services.Wrap(services.ErrConfiguration, "config", "", "mysql.database is required (set DB_NAME or edit the config file)", nil)
	}
	return nil
}

// RequireBackup reports a configuration error when the backup command is
// missing its destination or credentials.
func (c *Config) RequireBackup() error {
	if err := c.RequireMySQL(); err != nil {
		return err
	}
	if c.Backup.Bucket == "" {
		return services.Wrap(services.ErrConfiguration, "config", "", "backup.bucket is required (set S3_BUCKET or edit the config file)", nil)
	}
	return nil
}

// RequireSpeech reports a configuration error when the say command is missing
// the cast device or audio server location.
func (c *Config) RequireSpeech() error {
	if c.Speech.DeviceAddr == "" {
		return services.Wrap(services.ErrConfiguration, "config", "", "speech.device_addr is required (set CHROMECAST_HOST or edit the config file)", nil)
	}
	if c.Speech.ServerURL == "" {
		return services.Wrap(services.ErrConfiguration, "config", "", "speech.server_url is required (set SERVER_URL or edit the config file)", nil)
	}
	return nil
}

// RequireWebhook reports a configuration error when a Discord post was
// requested but no webhook is configured.
func (c *Config) RequireWebhook() error {
	if c.Notifications.WebhookURL == "" {
		return services.Wrap(services.ErrConfiguration, "config", "", "notifications.webhook_url is required (set WEBHOOK_URL or edit the config file)", nil)
	}
	return nil
}

func parseClock(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("expected hour between 00 and 23, got %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("expected minute between 00 and 59, got %q", parts[1])
	}
	return hour*60 + minute, nil
}
