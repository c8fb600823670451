package handlers

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error string `json:"error" example:"camera 3 not found"`
}

// SuccessResponse is the standard confirmation payload
type SuccessResponse struct {
	Message string `json:"message" example:"Camera stopped successfully"`
}
