package errors

// Error represents an API error
// @Description Standardized API error response
type Error struct {
	Message string `json:"message" example:"Revision not found"`
	Error   int    `json:"error" example:"404"`
	Kind    string `json:"kind,omitempty" example:"NOT_FOUND"`
}
