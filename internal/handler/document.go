package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"docqa/internal/config"
	"docqa/internal/domain/services"
	"docqa/internal/httputil"
)

// DocumentHandler handles document HTTP requests
// Follows Clean Architecture: handlers only communicate with services, never repositories
type DocumentHandler struct {
	ingestService services.IngestService
	logger        *slog.Logger
	debug         bool
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ingestService services.IngestService, logger *slog.Logger, debug bool) *DocumentHandler {
	return &DocumentHandler{
		ingestService: ingestService,
		logger:        logger,
		debug:         debug,
	}
}

// Upload ingests a document from a multipart form
// POST /api/documents
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file field is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read file", nil)
		return
	}

	doc, err := h.ingestService.Ingest(r.Context(), &services.IngestRequest{
		UserID:    userID,
		Filename:  header.Filename,
		MediaType: mediaTypeFor(header.Filename, header.Header.Get("Content-Type")),
		Data:      data,
	})
	if err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, "document ingested", doc)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required", nil)
		return
	}

	doc, err := h.ingestService.GetDocument(r.Context(), id, userID)
	if err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, "document retrieved", doc)
}

// ListDocuments retrieves all documents for the authenticated user
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	docs, err := h.ingestService.ListDocuments(r.Context(), userID)
	if err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, "documents retrieved", docs)
}

// DeleteDocument removes a document and its chunks
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required", nil)
		return
	}

	if err := h.ingestService.DeleteDocument(r.Context(), id, userID); err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, "document deleted", nil)
}

// HealthCheck reports liveness
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, "ok", map[string]any{
		"status": "ok",
		"time":   time.Now(),
	})
}

// mediaTypeFor resolves the media type of an upload, preferring the
// client-declared Content-Type and falling back to the file extension.
// Parameters like charset are stripped in both paths; the extractor
// dispatches on the bare type.
func mediaTypeFor(filename, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			return parsed
		}
	}

	byExt := mime.TypeByExtension(filepath.Ext(filename))
	if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
		return parsed
	}
	return byExt
}
