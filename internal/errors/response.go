package errors

import "net/http"

// ErrorResponse is the wire shape errors take at the API boundary
type ErrorResponse struct {
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewErrorResponse flattens an error chain into its wire shape
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	return &ErrorResponse{
		Message: err.Error(),
		Hint:    Hint(err),
		Details: ReportableDetails(err),
	}
}

// HTTPStatus maps an error to the HTTP status code it should surface as
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err):
		return http.StatusConflict
	case IsPermissionDenied(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
