package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/internal/domain"
	"docqa/internal/httputil"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return resp
}

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation",
			err:        fmt.Errorf("%w: content is required", domain.ErrValidation),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("load chat: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unsupported media type",
			err:        &domain.UnsupportedMediaError{MediaType: "application/zip"},
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:       "conflict",
			err:        &domain.ConflictError{Message: "chunk 0 already exists for document", ResourceType: "chunk", ResourceID: "doc-1"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "external service",
			err:        fmt.Errorf("embed text: %w: 503", domain.ErrExternalService),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "persistence falls through to 500",
			err:        fmt.Errorf("insert chunk: %w", domain.ErrPersistence),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown error",
			err:        errors.New("something else"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err, false)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeEnvelope(t, rec)
			if resp.Success {
				t.Error("failure envelope must have success=false")
			}
			if resp.Error == nil {
				t.Fatal("failure envelope must carry an error body")
			}
		})
	}
}

func TestHandleError_DetailGatedByDebug(t *testing.T) {
	cause := fmt.Errorf("pool exhausted: %w", domain.ErrPersistence)

	rec := httptest.NewRecorder()
	handleError(rec, cause, false)
	resp := decodeEnvelope(t, rec)
	if resp.Error.Detail != "" {
		t.Errorf("internal detail must not leak without debug, got %q", resp.Error.Detail)
	}

	rec = httptest.NewRecorder()
	handleError(rec, cause, true)
	resp = decodeEnvelope(t, rec)
	if resp.Error.Detail == "" {
		t.Error("debug mode should include the internal error detail")
	}
}
