package repositories

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"docqa/internal/domain/models"
)

// DocumentRepository persists document records. All reads are scoped to the
// owning user; a document that exists but belongs to someone else behaves
// as not found.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, documentID, userID string) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]models.Document, error)
	// Delete removes the document row. Chunks are removed by the
	// ON DELETE CASCADE constraint. Also used as the compensating step of
	// the ingestion saga.
	Delete(ctx context.Context, documentID, userID string) error
}

// ChunkRepository persists embedded chunks and answers similarity queries.
type ChunkRepository interface {
	// CreateBatch inserts the complete chunk set of one document.
	CreateBatch(ctx context.Context, chunks []models.Chunk) error

	// Search returns chunks of the given document whose cosine similarity
	// to the query vector is at least threshold, ordered by similarity
	// descending with ties broken by ascending ordinal, capped at limit.
	// An empty result is not an error.
	Search(ctx context.Context, documentID string, query pgvector.Vector, threshold float64, limit int) ([]models.ScoredChunk, error)

	// CountByDocument returns the number of stored chunks for a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)
}
