package revision

import (
	"strconv"

	"github.com/ether/articlestore/lib"
	apiErrors "github.com/ether/articlestore/lib/api/errors"
	"github.com/ether/articlestore/lib/models/revision"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const scopePath = "/api/articles/:articleId/languages/:language/revisions"

func Init(store *lib.InitStore) {
	store.C.Post(scopePath, CreateRevision(store))
	store.C.Get(scopePath, GetHistory(store))
	store.C.Get(scopePath+"/:version", GetRevision(store))
	store.C.Patch(scopePath+"/:version", SetRevisionEnabled(store))
	store.C.Post(scopePath+"/:version/materialize", MaterializeRevision(store))
	store.C.Post("/api/revisions/actual", ListActualRevisions(store))
}

// scopeFromPath copies the params since fasthttp reuses their buffer once the
// request is done.
func scopeFromPath(c *fiber.Ctx, store *lib.InitStore) (revision.Scope, error) {
	scope := revision.Scope{
		ArticleID: utils.CopyString(c.Params("articleId")),
		Language:  utils.CopyString(c.Params("language")),
	}
	return scope, store.Validator.Struct(scope)
}

func versionFromPath(c *fiber.Ctx) (int, bool) {
	version, err := strconv.Atoi(c.Params("version"))
	if err != nil || version < 1 {
		return 0, false
	}
	return version, true
}

func bindBody(c *fiber.Ctx, store *lib.InitStore, out any) *apiErrors.Error {
	if err := c.BodyParser(out); err != nil {
		return &apiErrors.InvalidRequestError
	}
	if err := store.Validator.Struct(out); err != nil {
		validationError := apiErrors.NewValidationError(err.Error())
		return &validationError
	}
	return nil
}

func sendError(c *fiber.Ctx, store *lib.InitStore, err error) error {
	response := apiErrors.FromError(err)
	if response.Error >= fiber.StatusInternalServerError {
		store.Logger.Errorw("Revision request failed", "path", c.Path(), "error", err)
	}
	return c.Status(response.Error).JSON(response)
}
