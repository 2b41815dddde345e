package settings

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	IP            = "ip"
	Port          = "port"
	Loglevel      = "loglevel"
	EnableMetrics = "enableMetrics"

	DBType             = "dbType"
	DBSettingsHost     = "dbSettings.host"
	DBSettingsPort     = "dbSettings.port"
	DBSettingsDatabase = "dbSettings.database"
	DBSettingsUser     = "dbSettings.user"
	DBSettingsPassword = "dbSettings.password"
	DBSettingsSSLMode  = "dbSettings.sslmode"
	DBSettingsDSN      = "dbSettings.dsn"
	DBSettingsFilename = "dbSettings.filename"

	RevisionsKeyframeInterval  = "revisions.keyframeInterval"
	RevisionsMaxCreateAttempts = "revisions.maxCreateAttempts"
	RevisionsActualPolicy      = "revisions.actualPolicy"
)

type ConfigKey struct {
	Key         string
	Default     any
	Description string
}

const envPrefix = "ARTICLESTORE"

func EnvVar(key string) string {
	return envPrefix + "_" + strings.ToUpper(
		strings.ReplaceAll(key, ".", "_"),
	)
}

var Registry = []ConfigKey{
	// ---------------------------------------------------------------------
	// Core
	// ---------------------------------------------------------------------
	{Key: IP, Default: "0.0.0.0", Description: "Bind address"},
	{Key: Port, Default: "9001", Description: "HTTP server port"},
	{Key: Loglevel, Default: "INFO", Description: "Log level (DEBUG, INFO, WARN, ERROR)"},
	{Key: EnableMetrics, Default: true, Description: "Expose prometheus metrics on /metrics"},

	// ---------------------------------------------------------------------
	// Database
	// ---------------------------------------------------------------------
	{Key: DBType, Default: SQLITE, Description: "Database type (sqlite, postgres, memory)"},
	{Key: DBSettingsHost, Default: "localhost", Description: "Postgres host"},
	{Key: DBSettingsPort, Default: "5432", Description: "Postgres port"},
	{Key: DBSettingsDatabase, Default: "articlestore", Description: "Postgres database name"},
	{Key: DBSettingsUser, Default: "", Description: "Postgres user"},
	{Key: DBSettingsPassword, Default: "", Description: "Postgres password"},
	{Key: DBSettingsSSLMode, Default: "disable", Description: "Postgres sslmode"},
	{Key: DBSettingsDSN, Default: "", Description: "Postgres connection string, overrides the fields above"},
	{
		Key:         DBSettingsFilename,
		Default:     "var/articlestore.db",
		Description: "SQLite database filename",
	},

	// ---------------------------------------------------------------------
	// Revisions
	// ---------------------------------------------------------------------
	{
		Key:         RevisionsKeyframeInterval,
		Default:     100,
		Description: "Store a full text every N versions (0 disables keyframes)",
	},
	{
		Key:         RevisionsMaxCreateAttempts,
		Default:     5,
		Description: "Attempts to allocate a version number under concurrent writes",
	},
	{
		Key:         RevisionsActualPolicy,
		Default:     "includeRolledBack",
		Description: "Actual revision policy (includeRolledBack, latestEnabled)",
	},
}

func ApplyRegistryDefaults(v *viper.Viper) {
	for _, c := range Registry {
		v.SetDefault(c.Key, c.Default)
	}
}
