package revision

import (
	"github.com/ether/articlestore/lib"
	apiErrors "github.com/ether/articlestore/lib/api/errors"
	"github.com/gofiber/fiber/v2"
)

// CreateRevision godoc
// @Summary Create a revision
// @Description Appends a new revision to the article in the given language
// @Tags Revisions
// @Accept json
// @Produce json
// @Param articleId path string true "Article ID"
// @Param language path string true "Language"
// @Param request body CreateRevisionRequest true "Text and actor"
// @Success 201 {object} CreateRevisionResponse
// @Failure 400 {object} errors.Error
// @Failure 409 {object} errors.Error
// @Failure 422 {object} errors.Error
// @Router /api/articles/{articleId}/languages/{language}/revisions [post]
func CreateRevision(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromPath(c, store)
		if err != nil {
			return c.Status(400).JSON(apiErrors.NewInvalidParamError("scope"))
		}

		var request CreateRevisionRequest
		if apiErr := bindBody(c, store, &request); apiErr != nil {
			return c.Status(apiErr.Error).JSON(apiErr)
		}

		created, err := store.RevisionManager.CreateRevision(scope, *request.Text, request.Actor)
		if err != nil {
			return sendError(c, store, err)
		}

		return c.Status(fiber.StatusCreated).JSON(CreateRevisionResponse{
			Revision: created.Revision,
			Content:  created.Content,
		})
	}
}

// GetRevision godoc
// @Summary Get a revision
// @Description Returns an enabled revision with its text
// @Tags Revisions
// @Produce json
// @Param articleId path string true "Article ID"
// @Param language path string true "Language"
// @Param version path int true "Version"
// @Success 200 {object} revision.RevisionText
// @Failure 400 {object} errors.Error
// @Failure 404 {object} errors.Error
// @Router /api/articles/{articleId}/languages/{language}/revisions/{version} [get]
func GetRevision(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromPath(c, store)
		if err != nil {
			return c.Status(400).JSON(apiErrors.NewInvalidParamError("scope"))
		}
		version, ok := versionFromPath(c)
		if !ok {
			return c.Status(400).JSON(apiErrors.InvalidVersionError)
		}

		found, err := store.RevisionManager.GetRevision(scope, version)
		if err != nil {
			return sendError(c, store, err)
		}
		return c.JSON(found)
	}
}

// GetHistory godoc
// @Summary Revision history
// @Description Returns every revision from the given version on, disabled ones included
// @Tags Revisions
// @Produce json
// @Param articleId path string true "Article ID"
// @Param language path string true "Language"
// @Param from query int false "Lowest version to include"
// @Success 200 {object} RevisionListResponse
// @Failure 400 {object} errors.Error
// @Router /api/articles/{articleId}/languages/{language}/revisions [get]
func GetHistory(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromPath(c, store)
		if err != nil {
			return c.Status(400).JSON(apiErrors.NewInvalidParamError("scope"))
		}
		from := c.QueryInt("from", 1)
		if from < 1 {
			return c.Status(400).JSON(apiErrors.NewInvalidParamError("from"))
		}

		history, err := store.RevisionManager.GetHistory(scope, from)
		if err != nil {
			return sendError(c, store, err)
		}
		return c.JSON(RevisionListResponse{Revisions: history})
	}
}

// SetRevisionEnabled godoc
// @Summary Enable or disable a revision
// @Tags Revisions
// @Accept json
// @Produce json
// @Param articleId path string true "Article ID"
// @Param language path string true "Language"
// @Param version path int true "Version"
// @Param request body SetEnabledRequest true "New state and actor"
// @Success 200 {object} revision.Revision
// @Failure 400 {object} errors.Error
// @Failure 404 {object} errors.Error
// @Router /api/articles/{articleId}/languages/{language}/revisions/{version} [patch]
func SetRevisionEnabled(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromPath(c, store)
		if err != nil {
			return c.Status(400).JSON(apiErrors.NewInvalidParamError("scope"))
		}
		version, ok := versionFromPath(c)
		if !ok {
			return c.Status(400).JSON(apiErrors.InvalidVersionError)
		}

		var request SetEnabledRequest
		if apiErr := bindBody(c, store, &request); apiErr != nil {
			return c.Status(apiErr.Error).JSON(apiErr)
		}

		updated, err := store.RevisionManager.SetRevisionEnabled(scope, version, *request.Enabled, request.Actor)
		if err != nil {
			return sendError(c, store, err)
		}
		return c.JSON(updated)
	}
}

// MaterializeRevision godoc
// @Summary Store a revision as full text
// @Description Rewrites the content of a diff revision as full text
// @Tags Revisions
// @Accept json
// @Produce json
// @Param articleId path string true "Article ID"
// @Param language path string true "Language"
// @Param version path int true "Version"
// @Param request body MaterializeRequest true "Actor"
// @Success 200 {object} revision.ContentRecord
// @Failure 404 {object} errors.Error
// @Router /api/articles/{articleId}/languages/{language}/revisions/{version}/materialize [post]
func MaterializeRevision(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromPath(c, store)
		if err != nil {
			return c.Status(400).JSON(apiErrors.NewInvalidParamError("scope"))
		}
		version, ok := versionFromPath(c)
		if !ok {
			return c.Status(400).JSON(apiErrors.InvalidVersionError)
		}

		var request MaterializeRequest
		if apiErr := bindBody(c, store, &request); apiErr != nil {
			return c.Status(apiErr.Error).JSON(apiErr)
		}

		record, err := store.RevisionManager.MaterializeRevision(scope, version, request.Actor)
		if err != nil {
			return sendError(c, store, err)
		}
		return c.JSON(record)
	}
}

// ListActualRevisions godoc
// @Summary Actual revisions
// @Description Returns the actual revisions of the given scopes with their texts
// @Tags Revisions
// @Accept json
// @Produce json
// @Param request body ActualRevisionsRequest true "Scopes"
// @Success 200 {object} RevisionListResponse
// @Failure 400 {object} errors.Error
// @Failure 422 {object} errors.Error
// @Router /api/revisions/actual [post]
func ListActualRevisions(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var request ActualRevisionsRequest
		if apiErr := bindBody(c, store, &request); apiErr != nil {
			return c.Status(apiErr.Error).JSON(apiErr)
		}

		actual, err := store.RevisionManager.ListActualRevisions(request.Scopes)
		if err != nil {
			return sendError(c, store, err)
		}
		return c.JSON(RevisionListResponse{Revisions: actual})
	}
}
