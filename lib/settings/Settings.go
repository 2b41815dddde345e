package settings

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type DBSettings struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
	// DSN takes precedence over the separate Postgres fields when set.
	DSN      string
	Filename string
}

type RevisionSettings struct {
	KeyframeInterval  int    `validate:"gte=0"`
	MaxCreateAttempts int    `validate:"gte=1,lte=100"`
	ActualPolicy      string `validate:"oneof=includeRolledBack latestEnabled"`
}

type Settings struct {
	IP            string `validate:"required"`
	Port          string `validate:"required,numeric"`
	LogLevel      string `validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	EnableMetrics bool
	DBType        IDBType
	DBSettings    *DBSettings `validate:"required"`
	Revisions     RevisionSettings

	GitVersion string
	// SettingsFile is the file the settings were read from, empty when only
	// defaults and environment variables applied.
	SettingsFile string
}

var Displayed Settings

// SettingsPath returns the settings file location, honouring
// ARTICLESTORE_SETTINGS_PATH.
func SettingsPath() string {
	if path := os.Getenv(envPrefix + "_SETTINGS_PATH"); path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return filepath.Join(path, "settings.json")
		}
		return path
	}
	return "settings.json"
}

// InitSettings loads the settings file (if any), applies environment
// overrides and stores the result in Displayed.
func InitSettings(logger *zap.SugaredLogger) error {
	path := SettingsPath()

	var raw string
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		raw = string(content)
	case os.IsNotExist(err):
		logger.Infow("No settings file found, using defaults", "path", path)
		path = ""
	default:
		return err
	}

	setting, err := ReadConfig(raw)
	if err != nil {
		return err
	}
	setting.GitVersion = GitVersion()
	setting.SettingsFile = path
	Displayed = *setting
	return nil
}
