package httputil

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every endpoint returns. Success responses carry
// Data; failure responses carry Error and never both.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request. Detail holds internal error text and
// is only populated when the server runs with debug enabled.
type ErrorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// RespondJSON writes a success envelope with the given status code.
// It marshals first so an encoding failure cannot produce a partial
// response after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	resp := Response{
		Success: true,
		Message: message,
		Data:    data,
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondError writes a failure envelope. errBody may be nil, in which case
// a generic code derived from the status is used.
func RespondError(w http.ResponseWriter, status int, message string, errBody *ErrorBody) {
	if errBody == nil {
		errBody = &ErrorBody{Code: codeFromStatus(status)}
	}
	if errBody.Code == "" {
		errBody.Code = codeFromStatus(status)
	}

	resp := Response{
		Success: false,
		Message: message,
		Error:   errBody,
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// codeFromStatus returns a stable machine-readable code for a status.
func codeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_failed"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusBadGateway:
		return "upstream_failed"
	default:
		return "internal_error"
	}
}
