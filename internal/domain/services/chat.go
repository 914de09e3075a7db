package services

import (
	"context"

	"docqa/internal/domain/models"
)

// ChatService defines the business logic for chat sessions and the
// retrieval-augmented conversation flow.
type ChatService interface {
	// CreateChat creates a new chat session grounded in one document.
	// Validates the document exists and the user owns it.
	CreateChat(ctx context.Context, req *CreateChatRequest) (*models.Chat, error)

	// GetChat retrieves a chat owned by the user.
	GetChat(ctx context.Context, chatID, userID string) (*models.Chat, error)

	// ListChats retrieves all chats owned by the user.
	ListChats(ctx context.Context, userID string) ([]models.Chat, error)

	// DeleteChat removes a chat and its messages.
	DeleteChat(ctx context.Context, chatID, userID string) error

	// ListMessages returns the chat's messages in chronological order.
	ListMessages(ctx context.Context, chatID, userID string) ([]models.Message, error)

	// SendMessage persists the user message, retrieves document context,
	// generates the assistant reply, and persists it. Retrieval failures
	// degrade to an empty context; generation failure fails the turn while
	// the user message stays stored (the client re-sends to retry).
	SendMessage(ctx context.Context, req *SendMessageRequest) (*MessagePair, error)
}

// CreateChatRequest is the DTO for creating a new chat.
type CreateChatRequest struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"-"` // Set by handler from auth context
	Title      string `json:"title"`
}

// SendMessageRequest is the DTO for sending a chat message.
type SendMessageRequest struct {
	ChatID  string `json:"-"` // Set by handler from the URL path
	UserID  string `json:"-"` // Set by handler from auth context
	Content string `json:"content"`
}

// MessagePair is the persisted user/assistant exchange returned by
// SendMessage.
type MessagePair struct {
	UserMessage      *models.Message `json:"user_message"`
	AssistantMessage *models.Message `json:"assistant_message"`
}
