package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the fixed failure body: success is always false and
// error repeats the HTTP status.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// RespondError writes a standardized error response to the HTTP response writer
func RespondError(w http.ResponseWriter, status int, code, message string) {
	write(w, ErrorResponse{Error: status, Message: message, Code: code})
}

// RespondValidationError writes a 422 naming the rejected field
func RespondValidationError(w http.ResponseWriter, code, message, field string) {
	write(w, ErrorResponse{
		Error:   http.StatusUnprocessableEntity,
		Message: message,
		Code:    code,
		Field:   field,
	})
}

// RespondBadRequest writes a bad request error response
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, message)
}

// RespondNotFound writes a not found error response
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// RespondUnprocessable writes the 422 used for store failures
func RespondUnprocessable(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnprocessableEntity, ErrCodeUnprocessable, message)
}

// RespondInternalError writes an internal server error response
func RespondInternalError(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// RespondServiceUnavailable writes a service unavailable error response
func RespondServiceUnavailable(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

func write(w http.ResponseWriter, body ErrorResponse) {
	body.Success = false
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Error)
	_ = json.NewEncoder(w).Encode(body)
}
