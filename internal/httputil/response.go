package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the JSON error envelope: a human-readable message plus a
// machine-readable code so clients don't have to match on message text.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes shared across handlers.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"
	CodeUnavailable        = "service_unavailable"
	CodeTooManyRequests    = "too_many_requests"
	CodeCooldownActive     = "cooldown_active"

	CodeMissingAuth       = "missing_auth"
	CodeInvalidAuthHeader = "invalid_auth_header"
	CodeInvalidToken      = "invalid_token"
	CodeForbidden         = "forbidden"

	CodeEmailAlreadyExists = "email_already_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeNotFound           = "not_found"
	CodeInvalidLink        = "invalid_link"

	CodeEmailRequired      = "email_required"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodePasswordRequired   = "password_required"
	CodePasswordTooShort   = "password_too_short"

	CodeFileRequired = "file_required"
	CodeFileTooLarge = "file_too_large"
	CodeNotAnImage   = "not_an_image"
)

// RespondJSON sends data as a JSON response. The payload is marshalled
// before the status line is written so an encoding failure can still
// become a 500 instead of a truncated body under a success status.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, `{"error":"failed to encode response","code":%q}`, CodeInternalError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// RespondError sends a JSON error response with the given message.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable
// error code.
func RespondErrorWithCode(w http.ResponseWriter, message, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}
