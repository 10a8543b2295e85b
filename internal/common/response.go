package common

import (
	"encoding/json"
	"net/http"
)

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders the storefront error shape: {"error": message, "code": code}.
// Extra fields are merged at the top level and never override error or code.
func JSONError(w http.ResponseWriter, status int, code, message string, extra map[string]any) {
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		body[k] = v
	}
	body["error"] = message
	if code != "" {
		body["code"] = code
	}
	JSON(w, status, body)
}

// WriteAppError renders an AppError, falling back to a generic 500.
func WriteAppError(w http.ResponseWriter, err *AppError) {
	if err == nil {
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	status := err.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	JSONError(w, status, err.Code, err.Message, err.Details)
}
