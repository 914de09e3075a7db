package models

import (
	"time"
)

// Message roles. Role alternation is not enforced, but user/assistant
// pairing is the expected pattern.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat represents a question-answering session grounded in one document.
// UpdatedAt is always >= the CreatedAt of the chat's newest message.
type Chat struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Title      string    `json:"title" db:"title"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Message is one turn in a chat. Messages form a strictly time-ordered
// sequence within their chat.
type Message struct {
	ID        string    `json:"id" db:"id"`
	ChatID    string    `json:"chat_id" db:"chat_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
