package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"docqa/internal/domain"
	"docqa/internal/domain/models"
	"docqa/internal/domain/repositories"
)

// PostgresChatRepository implements the ChatRepository interface using
// PostgreSQL
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewChatRepository creates a new PostgresChatRepository
func NewChatRepository(config *RepositoryConfig) repositories.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new chat session
func (r *PostgresChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, document_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		chat.ID,
		chat.UserID,
		chat.DocumentID,
		chat.Title,
		chat.CreatedAt,
		chat.UpdatedAt,
	).Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", chat.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create chat: %w (%v)", domain.ErrPersistence, err)
	}

	return nil
}

// GetByID retrieves a chat scoped to its owner
func (r *PostgresChatRepository) GetByID(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, document_id, title, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Chats)

	var chat models.Chat
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, chatID, userID).Scan(
		&chat.ID,
		&chat.UserID,
		&chat.DocumentID,
		&chat.Title,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chat: %w (%v)", domain.ErrPersistence, err)
	}

	return &chat, nil
}

// ListByUser retrieves all chats owned by a user, most recently active
// first
func (r *PostgresChatRepository) ListByUser(ctx context.Context, userID string) ([]models.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, document_id, title, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w (%v)", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		err := rows.Scan(
			&chat.ID,
			&chat.UserID,
			&chat.DocumentID,
			&chat.Title,
			&chat.CreatedAt,
			&chat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w (%v)", domain.ErrPersistence, err)
		}
		chats = append(chats, chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w (%v)", domain.ErrPersistence, err)
	}

	// Return empty slice instead of nil
	if chats == nil {
		chats = []models.Chat{}
	}

	return chats, nil
}

// Touch advances updated_at so it stays >= the newest message's created_at
func (r *PostgresChatRepository) Touch(ctx context.Context, chatID string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET updated_at = $2 WHERE id = $1 AND updated_at < $2
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, chatID, at); err != nil {
		return fmt.Errorf("touch chat: %w (%v)", domain.ErrPersistence, err)
	}

	return nil
}

// Delete removes a chat; messages cascade
func (r *PostgresChatRepository) Delete(ctx context.Context, chatID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1 AND user_id = $2
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, chatID, userID)
	if err != nil {
		return fmt.Errorf("delete chat: %w (%v)", domain.ErrPersistence, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	return nil
}
