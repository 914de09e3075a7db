package repositories

import (
	"context"
	"time"

	"docqa/internal/domain/models"
)

// ChatRepository persists chat sessions. Reads are scoped to the owning
// user.
type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, chatID, userID string) (*models.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]models.Chat, error)
	// Touch advances updated_at; called after a new message is stored so
	// updated_at stays >= the newest message's created_at.
	Touch(ctx context.Context, chatID string, at time.Time) error
	Delete(ctx context.Context, chatID, userID string) error
}

// MessageRepository persists chat messages. Messages are append-only.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// ListByChat returns the chat's messages in chronological order.
	ListByChat(ctx context.Context, chatID string) ([]models.Message, error)
}
