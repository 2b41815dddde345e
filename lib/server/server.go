package server

import (
	"fmt"

	"github.com/ether/articlestore/lib"
	api2 "github.com/ether/articlestore/lib/api"
	"github.com/ether/articlestore/lib/db"
	"github.com/ether/articlestore/lib/revision"
	"github.com/ether/articlestore/lib/settings"
	"github.com/ether/articlestore/lib/utils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func ManagerOptions(retrievedSettings settings.Settings) (revision.Options, error) {
	policy, err := revision.ParseActualPolicy(retrievedSettings.Revisions.ActualPolicy)
	if err != nil {
		return revision.Options{}, err
	}
	return revision.Options{
		KeyframeInterval:  retrievedSettings.Revisions.KeyframeInterval,
		MaxCreateAttempts: retrievedSettings.Revisions.MaxCreateAttempts,
		ActualPolicy:      policy,
	}, nil
}

// NewInitStore wires the revision manager and the fiber app around an open
// data store.
func NewInitStore(
	retrievedSettings *settings.Settings,
	dataStore db.DataStore,
	setupLogger *zap.SugaredLogger,
) (*lib.InitStore, error) {
	options, err := ManagerOptions(*retrievedSettings)
	if err != nil {
		return nil, err
	}

	metrics := revision.NewMetrics()
	initStore := &lib.InitStore{
		C:                 api2.NewApp(),
		RetrievedSettings: retrievedSettings,
		Store:             dataStore,
		RevisionManager:   revision.NewManager(dataStore, options, metrics, setupLogger),
		Metrics:           metrics,
		Validator:         validator.New(validator.WithRequiredStructEnabled()),
		Logger:            setupLogger,
	}
	api2.InitAPI(initStore)
	return initStore, nil
}

func InitServer(setupLogger *zap.SugaredLogger, retrievedSettings *settings.Settings) error {
	setupLogger.Info("Starting article store...")
	setupLogger.Info("Your article store version is " + retrievedSettings.GitVersion)

	dataStore, err := utils.GetDB(*retrievedSettings, setupLogger)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer dataStore.Close()

	initStore, err := NewInitStore(retrievedSettings, dataStore, setupLogger)
	if err != nil {
		return err
	}

	fiberString := fmt.Sprintf("%s:%s", retrievedSettings.IP, retrievedSettings.Port)
	setupLogger.Info("Starting API on " + fiberString)
	if err := initStore.C.Listen(fiberString); err != nil {
		return fmt.Errorf("error starting API: %w", err)
	}
	return nil
}
