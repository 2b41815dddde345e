package revision

import "github.com/ether/articlestore/lib/models/revision"

// CreateRevisionRequest represents the request to append a revision
type CreateRevisionRequest struct {
	Text  *string `json:"text" validate:"required"`
	Actor string  `json:"actor" validate:"required,max=255"`
}

// SetEnabledRequest represents the request to enable or disable a revision
type SetEnabledRequest struct {
	Enabled *bool  `json:"enabled" validate:"required"`
	Actor   string `json:"actor" validate:"required,max=255"`
}

// MaterializeRequest represents the request to store a revision as full text
type MaterializeRequest struct {
	Actor string `json:"actor" validate:"required,max=255"`
}

// ActualRevisionsRequest represents the request for the actual revisions of
// several scopes
type ActualRevisionsRequest struct {
	Scopes []revision.Scope `json:"scopes" validate:"required,min=1,max=500,dive"`
}

// CreateRevisionResponse represents a created revision and its content record
type CreateRevisionResponse struct {
	Revision revision.Revision      `json:"revision"`
	Content  revision.ContentRecord `json:"content"`
}

// RevisionListResponse represents a list of revisions with their texts
type RevisionListResponse struct {
	Revisions []revision.RevisionText `json:"revisions"`
}
