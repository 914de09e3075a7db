package services

import (
	"context"

	"docqa/internal/domain/models"
)

// IngestService owns the upload-to-vector pipeline: extraction, chunking,
// embedding, and chunk storage.
type IngestService interface {
	// Ingest runs the full pipeline for one upload. On any failure after
	// the document row is created, the row and any partial chunks are
	// removed so a document always has a complete chunk set or none.
	Ingest(ctx context.Context, req *IngestRequest) (*models.Document, error)

	// GetDocument retrieves a document owned by the user.
	GetDocument(ctx context.Context, documentID, userID string) (*models.Document, error)

	// ListDocuments retrieves all documents owned by the user.
	ListDocuments(ctx context.Context, userID string) ([]models.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, documentID, userID string) error
}

// IngestRequest is the DTO for a document upload.
type IngestRequest struct {
	UserID    string
	Filename  string
	MediaType string
	Data      []byte
}
