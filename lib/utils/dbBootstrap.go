package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ether/articlestore/lib/db"
	"github.com/ether/articlestore/lib/settings"
	"go.uber.org/zap"
)

func GetDB(retrievedSettings settings.Settings, setupLogger *zap.SugaredLogger) (db.DataStore, error) {
	switch retrievedSettings.DBType {
	case settings.SQLITE:
		filename := retrievedSettings.DBSettings.Filename
		setupLogger.Infof("Using SQLite database at %s", filename)
		if dir := filepath.Dir(filename); dir != "." && filename != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		return db.NewSQLiteDB(filename, setupLogger)
	case settings.MEMORY:
		setupLogger.Info("Using in-memory database (data will be lost on restart)")
		return db.NewMemoryDataStore(), nil
	case settings.POSTGRES:
		dbSettings := retrievedSettings.DBSettings
		setupLogger.Infof("Using Postgres database at %s with database %s", dbSettings.Host, dbSettings.Database)

		port, err := strconv.Atoi(dbSettings.Port)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres port %q: %w", dbSettings.Port, err)
		}

		options := db.PostgresOptions{
			Username: dbSettings.User,
			Password: dbSettings.Password,
			Host:     dbSettings.Host,
			Database: dbSettings.Database,
			Port:     port,
			SSLMode:  dbSettings.SSLMode,
		}
		if dbSettings.DSN != "" {
			return db.NewPostgresDBFromDSN(dbSettings.DSN, options, setupLogger)
		}
		return db.NewPostgresDB(options, setupLogger)
	}
	return nil, fmt.Errorf("unsupported database type %q", retrievedSettings.DBType)
}
