package exception

// ProcessingError reports a diff, patch, decompression or UTF-8 failure.
// The request that hit it must be aborted; the stored bytes or the supplied
// base are inconsistent.
type ProcessingError struct {
	*AppError
}

func NewProcessingError(message string, cause error) *ProcessingError {
	return &ProcessingError{
		AppError: &AppError{
			Code:    KindProcessingError,
			Message: message,
			Cause:   cause,
		},
	}
}
