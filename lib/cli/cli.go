package cli

import (
	"fmt"
	"os"

	"github.com/ether/articlestore/lib/server"
	"github.com/ether/articlestore/lib/settings"
	"github.com/ether/articlestore/lib/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the articlestore command tree. Running it without a
// subcommand serves the API.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "articlestore",
		Short:         "Versioned article text storage",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations and exit",
			RunE:  runMigrate,
		},
		newConfigCommand(),
	)
	return root
}

func loadSettings() (*settings.Settings, error) {
	logger := utils.SetupLogger(os.Getenv(settings.EnvVar(settings.Loglevel)))
	defer logger.Sync()

	if err := settings.InitSettings(logger); err != nil {
		return nil, fmt.Errorf("error reading settings: %w", err)
	}
	return &settings.Displayed, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	retrievedSettings, err := loadSettings()
	if err != nil {
		return err
	}

	logger := utils.SetupLogger(retrievedSettings.LogLevel)
	defer logger.Sync()
	return server.InitServer(logger, retrievedSettings)
}

type schemaVersioner interface {
	SchemaVersion() (int, error)
}

// runMigrate relies on the SQL stores applying pending migrations when they
// are opened.
func runMigrate(cmd *cobra.Command, _ []string) error {
	retrievedSettings, err := loadSettings()
	if err != nil {
		return err
	}
	if retrievedSettings.DBType == settings.MEMORY {
		fmt.Fprintln(cmd.OutOrStdout(), "memory database needs no migrations")
		return nil
	}

	logger := utils.SetupLogger(retrievedSettings.LogLevel)
	defer logger.Sync()

	dataStore, err := utils.GetDB(*retrievedSettings, logger)
	if err != nil {
		return err
	}
	defer dataStore.Close()

	versioned, ok := dataStore.(schemaVersioner)
	if !ok {
		return fmt.Errorf("database type %s does not report a schema version", retrievedSettings.DBType)
	}
	version, err := versioned.SchemaVersion()
	if err != nil {
		return fmt.Errorf("error reading schema version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "database schema is at version %d\n", version)
	return nil
}

func settingsViper() (*viper.Viper, error) {
	raw, err := os.ReadFile(settings.SettingsPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return settings.NewViper(string(raw))
}

func newConfigCommand() *cobra.Command {
	config := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration keys and values",
	}

	config.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show every key with its current and default value",
			RunE: func(cmd *cobra.Command, _ []string) error {
				v, err := settingsViper()
				if err != nil {
					return err
				}
				settings.ConfigShow(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "env",
			Short: "List the environment variable of every key",
			Run: func(cmd *cobra.Command, _ []string) {
				settings.ConfigEnv(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "get <json-key>",
			Short: "Print the current value of one key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := settingsViper()
				if err != nil {
					return err
				}
				return settings.ConfigGet(cmd.OutOrStdout(), v, args[0])
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Print a settings file holding every default",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return settings.ConfigInit(cmd.OutOrStdout())
			},
		},
	)
	return config
}
