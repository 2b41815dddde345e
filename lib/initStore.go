package lib

import (
	"github.com/ether/articlestore/lib/db"
	"github.com/ether/articlestore/lib/revision"
	"github.com/ether/articlestore/lib/settings"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InitStore struct {
	C                 *fiber.App
	RetrievedSettings *settings.Settings
	Store             db.DataStore
	RevisionManager   *revision.Manager
	Metrics           *revision.Metrics
	Validator         *validator.Validate
	Logger            *zap.SugaredLogger
}
