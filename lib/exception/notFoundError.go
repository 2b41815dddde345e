package exception

import "fmt"

type NotFoundError struct {
	*AppError
	Resource string
	Id       string
}

func NewNotFoundError(resource string, id string, cause error) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Code:    KindNotFound,
			Message: fmt.Sprintf("%s with id '%s' does not exist", resource, id),
			Cause:   cause,
		},
		Resource: resource,
		Id:       id,
	}
}

func NewRevisionNotFoundError(scopeKey string, version int, cause error) *NotFoundError {
	return NewNotFoundError("revision", fmt.Sprintf("%s@%d", scopeKey, version), cause)
}

func NewContentRecordNotFoundError(id string, cause error) *NotFoundError {
	return NewNotFoundError("content record", id, cause)
}
