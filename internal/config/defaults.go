package config

const (
	defaultStateDir         = "~/.local/share/hearth"
	defaultLogDir           = "~/.local/share/hearth/logs"
	defaultMySQLHost        = "localhost"
	defaultMySQLPort        = 3306
	defaultInboxDir         = "~/statements"
	defaultMysqldumpBinary  = "mysqldump"
	defaultBackupTimeout    = 600
	defaultBackupPrefix     = "mysql-backups"
	defaultConvertSourceDir = "~/comics/zip"
	defaultConvertOutputDir = "~/comics/cbz"
	defaultSpeechDevicePort = 8009
	defaultSpeechAudioDir   = "~/.local/share/hearth/audio"
	defaultSpeechLanguage   = "ja"
	defaultSpeechQuietStart = "21:00"
	defaultSpeechQuietEnd   = "07:30"
	defaultNotifyTimeout    = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		MySQL: MySQL{
			Host: defaultMySQLHost,
			Port: defaultMySQLPort,
		},
		Import: Import{
			InboxDir: defaultInboxDir,
			Services: []string{"vpass", "enavi"},
		},
		Backup: Backup{
			MysqldumpBinary: defaultMysqldumpBinary,
			TimeoutSeconds:  defaultBackupTimeout,
			Prefix:          defaultBackupPrefix,
			DumpArgs:        []string{"--single-transaction", "--quick", "--lock-tables=false"},
		},
		Convert: Convert{
			SourceDir: defaultConvertSourceDir,
			OutputDir: defaultConvertOutputDir,
		},
		Speech: Speech{
			DevicePort: defaultSpeechDevicePort,
			AudioDir:   defaultSpeechAudioDir,
			Language:   defaultSpeechLanguage,
			QuietStart: defaultSpeechQuietStart,
			QuietEnd:   defaultSpeechQuietEnd,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
