package exception

type DatabaseError struct {
	*AppError
}

func NewFailedToInsertError(message string, cause error) *DatabaseError {
	return &DatabaseError{
		AppError: &AppError{
			Code:    KindFailedToInsert,
			Message: message,
			Cause:   cause,
		},
	}
}

func NewFailedToUpdateError(message string, cause error) *DatabaseError {
	return &DatabaseError{
		AppError: &AppError{
			Code:    KindFailedToUpdate,
			Message: message,
			Cause:   cause,
		},
	}
}

type AlreadyExistsError struct {
	*AppError
}

func NewAlreadyExistsError(message string, cause error) *AlreadyExistsError {
	return &AlreadyExistsError{
		AppError: &AppError{
			Code:    KindAlreadyExists,
			Message: message,
			Cause:   cause,
		},
	}
}
