package errors

import (
	"github.com/ether/articlestore/lib/exception"
	"github.com/gofiber/fiber/v2"
)

var InvalidRequestError = Error{
	Message: "Invalid request",
	Error:   400,
}

var InvalidVersionError = Error{
	Message: "Invalid revision number",
	Error:   400,
}

func NewInvalidParamError(paramName string) Error {
	return Error{
		Message: "Invalid parameter: " + paramName,
		Error:   400,
	}
}

func NewValidationError(detail string) Error {
	return Error{
		Message: "Validation failed: " + detail,
		Error:   422,
	}
}

var InternalServerError = Error{
	Message: "Internal server error",
	Error:   500,
}

// FromError maps a failure of the revision layer to a response. Messages of
// internal failures are not exposed.
func FromError(err error) Error {
	kind := exception.KindOf(err)
	switch kind {
	case exception.KindNotFound:
		return Error{Message: err.Error(), Error: fiber.StatusNotFound, Kind: string(kind)}
	case exception.KindAlreadyExists:
		return Error{Message: err.Error(), Error: fiber.StatusConflict, Kind: string(kind)}
	case exception.KindProcessingError, exception.KindFailedToInsert, exception.KindFailedToUpdate:
		return Error{Message: InternalServerError.Message, Error: fiber.StatusInternalServerError, Kind: string(kind)}
	default:
		return InternalServerError
	}
}
