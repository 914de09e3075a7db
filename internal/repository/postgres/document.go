package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"docqa/internal/domain"
	"docqa/internal/domain/models"
	"docqa/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
// using PostgreSQL
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new PostgresDocumentRepository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new document row
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, filename, media_type, storage_path, file_size, extracted_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Filename,
		doc.MediaType,
		doc.StoragePath,
		doc.FileSize,
		doc.ExtractedText,
		doc.CreatedAt,
	).Scan(&doc.ID, &doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("create document: %w (%v)", domain.ErrPersistence, err)
	}

	return nil
}

// GetByID retrieves a document scoped to its owner
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, documentID, userID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, filename, media_type, storage_path, file_size, extracted_text, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Documents)

	var doc models.Document
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, documentID, userID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Filename,
		&doc.MediaType,
		&doc.StoragePath,
		&doc.FileSize,
		&doc.ExtractedText,
		&doc.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w (%v)", domain.ErrPersistence, err)
	}

	return &doc, nil
}

// ListByUser retrieves all documents owned by a user, newest first
func (r *PostgresDocumentRepository) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, filename, media_type, storage_path, file_size, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w (%v)", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.Filename,
			&doc.MediaType,
			&doc.StoragePath,
			&doc.FileSize,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w (%v)", domain.ErrPersistence, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w (%v)", domain.ErrPersistence, err)
	}

	// Return empty slice instead of nil
	if docs == nil {
		docs = []models.Document{}
	}

	return docs, nil
}

// Delete removes a document row; chunks cascade
func (r *PostgresDocumentRepository) Delete(ctx context.Context, documentID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, documentID, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w (%v)", domain.ErrPersistence, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	return nil
}
