package dto

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationProblem is one machine-readable validation failure.
type ValidationProblem struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ValidationErrorResponse carries every problem found in one request.
type ValidationErrorResponse struct {
	Error    string              `json:"error"`
	Problems []ValidationProblem `json:"problems"`
}
