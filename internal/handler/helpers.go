package handler

import (
	"errors"
	"net/http"

	"docqa/internal/domain"
	"docqa/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Internal error text
// is only included in the response body when debug is enabled.
func handleError(w http.ResponseWriter, err error, debug bool) {
	var mediaErr *domain.UnsupportedMediaError
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.As(err, &mediaErr):
		httputil.RespondError(w, http.StatusUnsupportedMediaType, mediaErr.Error(), nil)
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error(), nil)
	case errors.Is(err, domain.ErrExternalService):
		httputil.RespondError(w, http.StatusBadGateway, "upstream service failed", debugDetail(err, debug))
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error", debugDetail(err, debug))
	}
}

func debugDetail(err error, debug bool) *httputil.ErrorBody {
	if !debug {
		return nil
	}
	return &httputil.ErrorBody{Detail: err.Error()}
}
