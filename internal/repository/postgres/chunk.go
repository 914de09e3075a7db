package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"docqa/internal/domain"
	"docqa/internal/domain/models"
	"docqa/internal/domain/repositories"
)

// PostgresChunkRepository implements the ChunkRepository interface using
// PostgreSQL with the pgvector extension
type PostgresChunkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewChunkRepository creates a new PostgresChunkRepository
func NewChunkRepository(config *RepositoryConfig) repositories.ChunkRepository {
	return &PostgresChunkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateBatch inserts the complete chunk set of one document in a single
// pgx batch
func (r *PostgresChunkRepository) CreateBatch(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, ordinal, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Chunks)

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(query,
			chunk.ID,
			chunk.DocumentID,
			chunk.Ordinal,
			chunk.Content,
			chunk.Embedding,
			chunk.CreatedAt,
		)
	}

	executor := GetExecutor(ctx, r.pool)
	br := executor.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < len(chunks); i++ {
		if _, err := br.Exec(); err != nil {
			// The (document_id, ordinal) unique constraint fires when a
			// document's chunk set is written twice
			if IsPgDuplicateError(err) {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("chunk %d already exists for document", chunks[i].Ordinal),
					ResourceType: "chunk",
					ResourceID:   chunks[i].DocumentID,
				}
			}
			return fmt.Errorf("insert chunk %d: %w (%v)", i, domain.ErrPersistence, err)
		}
	}

	return nil
}

// Search returns chunks of one document ranked by cosine similarity to the
// query vector. pgvector's <=> operator is cosine distance, so similarity
// is 1 - distance. Results below threshold are filtered out, ties are
// broken by ascending ordinal, and the count is capped at limit. Chunks of
// other documents are never considered.
func (r *PostgresChunkRepository) Search(ctx context.Context, documentID string, query pgvector.Vector, threshold float64, limit int) ([]models.ScoredChunk, error) {
	sql := fmt.Sprintf(`
		SELECT content, ordinal, 1 - (embedding <=> $2) AS similarity
		FROM %s
		WHERE document_id = $1
		  AND 1 - (embedding <=> $2) >= $3
		ORDER BY similarity DESC, ordinal ASC
		LIMIT $4
	`, r.tables.Chunks)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, sql, documentID, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w (%v)", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var matches []models.ScoredChunk
	for rows.Next() {
		var m models.ScoredChunk
		if err := rows.Scan(&m.Content, &m.Ordinal, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scan scored chunk: %w (%v)", domain.ErrPersistence, err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scored chunks: %w (%v)", domain.ErrPersistence, err)
	}

	// An empty result is a valid outcome, not an error
	if matches == nil {
		matches = []models.ScoredChunk{}
	}

	return matches, nil
}

// CountByDocument returns the number of stored chunks for a document
func (r *PostgresChunkRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	sql := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE document_id = $1
	`, r.tables.Chunks)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, sql, documentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w (%v)", domain.ErrPersistence, err)
	}

	return count, nil
}
