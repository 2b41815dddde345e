package exception

import (
	"errors"
	"fmt"
)

// Kind is the stable, inspectable category of a failure.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindProcessingError Kind = "PROCESSING_ERROR"
	KindFailedToInsert  Kind = "FAILED_TO_INSERT"
	KindFailedToUpdate  Kind = "FAILED_TO_UPDATE"
	KindAlreadyExists   Kind = "ALREADY_EXISTS"
	KindUnknown         Kind = "UNKNOWN"
)

type AppError struct {
	Code    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) Kind() Kind {
	return e.Code
}

type kinded interface {
	Kind() Kind
}

// KindOf returns the kind of the first AppError in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
