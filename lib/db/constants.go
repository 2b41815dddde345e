package db

import "errors"

const ContentRecordNotFoundError = "content record not found"
const RevisionNotFoundError = "revision not found"
const VersionConflictError = "revision version already exists in scope"

var (
	ErrContentRecordNotFound = errors.New(ContentRecordNotFoundError)
	ErrRevisionNotFound      = errors.New(RevisionNotFoundError)
	ErrVersionConflict       = errors.New(VersionConflictError)
)
