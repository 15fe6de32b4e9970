package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrGameNotFound        = "Game not found"
	ErrInternalServerError = "Internal server error"
	ErrPassageUnavailable  = "Could not load a new passage"
)
