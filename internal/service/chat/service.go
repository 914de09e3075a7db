// Package chat implements chat sessions and the retrieval-augmented
// conversation flow.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/domain/models"
	"docqa/internal/domain/repositories"
	"docqa/internal/domain/services"
)

// systemPromptFormat embeds the retrieved context into the system
// instruction. The model is told to say explicitly when the answer is not
// in the context.
const systemPromptFormat = `You are a helpful assistant answering questions about a document.
Use the following excerpts from the document to answer the user's question.
If the answer is not found in the excerpts, say so explicitly instead of guessing.

Document excerpts:
%s`

// chatService implements the ChatService interface
type chatService struct {
	chatRepo  repositories.ChatRepository
	msgRepo   repositories.MessageRepository
	docRepo   repositories.DocumentRepository
	retriever services.Retriever
	generator services.Generator
	logger    *slog.Logger
}

// NewService creates a new chat service
func NewService(
	chatRepo repositories.ChatRepository,
	msgRepo repositories.MessageRepository,
	docRepo repositories.DocumentRepository,
	retriever services.Retriever,
	generator services.Generator,
	logger *slog.Logger,
) services.ChatService {
	return &chatService{
		chatRepo:  chatRepo,
		msgRepo:   msgRepo,
		docRepo:   docRepo,
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// CreateChat creates a new chat session grounded in one document
func (s *chatService) CreateChat(ctx context.Context, req *services.CreateChatRequest) (*models.Chat, error) {
	if err := s.validateCreateChatRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Verify the document exists and the user owns it
	doc, err := s.docRepo.GetByID(ctx, req.DocumentID, req.UserID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = doc.Filename
	}

	now := time.Now()
	chat := &models.Chat{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		DocumentID: req.DocumentID,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	s.logger.Info("chat created",
		"id", chat.ID,
		"document_id", req.DocumentID,
		"user_id", req.UserID,
	)

	return chat, nil
}

// GetChat retrieves a chat owned by the user
func (s *chatService) GetChat(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	return s.chatRepo.GetByID(ctx, chatID, userID)
}

// ListChats retrieves all chats owned by the user
func (s *chatService) ListChats(ctx context.Context, userID string) ([]models.Chat, error) {
	return s.chatRepo.ListByUser(ctx, userID)
}

// DeleteChat removes a chat and its messages
func (s *chatService) DeleteChat(ctx context.Context, chatID, userID string) error {
	if err := s.chatRepo.Delete(ctx, chatID, userID); err != nil {
		return err
	}

	s.logger.Info("chat deleted",
		"id", chatID,
		"user_id", userID,
	)

	return nil
}

// ListMessages returns the chat's messages in chronological order
func (s *chatService) ListMessages(ctx context.Context, chatID, userID string) ([]models.Message, error) {
	// Ownership check
	if _, err := s.chatRepo.GetByID(ctx, chatID, userID); err != nil {
		return nil, err
	}

	return s.msgRepo.ListByChat(ctx, chatID)
}

// SendMessage runs one conversation turn:
//
//  1. persist the user message
//  2. retrieve document context for the message text
//  3. assemble the prompt (system instruction with context, prior history,
//     new message) and call the generative model
//  4. persist the assistant reply and advance the chat's updated_at
//
// Retrieval failures degrade to an empty context and are only logged.
// Generation failure fails the turn; the user message from step 1 stays
// stored, and the client retries by sending the message again.
func (s *chatService) SendMessage(ctx context.Context, req *services.SendMessageRequest) (*services.MessagePair, error) {
	// Trim before validating so whitespace-only content is rejected here,
	// before anything is persisted or any external call is made
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validateSendMessageRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	chat, err := s.chatRepo.GetByID(ctx, req.ChatID, req.UserID)
	if err != nil {
		return nil, err
	}

	// History is loaded before the new message is stored so the prompt
	// does not contain it twice
	history, err := s.msgRepo.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	userMsg := &models.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      models.RoleUser,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.msgRepo.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	contextText := s.retrieveContext(ctx, chat.DocumentID, userMsg.Content)

	reply, err := s.generator.Generate(ctx, &services.GenerateRequest{
		System: fmt.Sprintf(systemPromptFormat, contextText),
		Turns:  buildTurns(history, userMsg),
	})
	if err != nil {
		// The user message stays stored; see method comment
		s.logger.Error("generation failed, turn incomplete",
			"chat_id", chat.ID,
			"user_message_id", userMsg.ID,
			"error", err,
		)
		return nil, err
	}

	assistantMsg := &models.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := s.msgRepo.Create(ctx, assistantMsg); err != nil {
		return nil, err
	}

	if err := s.chatRepo.Touch(ctx, chat.ID, assistantMsg.CreatedAt); err != nil {
		// The exchange is already stored; a stale updated_at only affects
		// chat list ordering
		s.logger.Warn("failed to update chat timestamp",
			"chat_id", chat.ID,
			"error", err,
		)
	}

	s.logger.Info("message exchange completed",
		"chat_id", chat.ID,
		"user_message_id", userMsg.ID,
		"assistant_message_id", assistantMsg.ID,
	)

	return &services.MessagePair{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// retrieveContext queries the retriever and joins the matched chunk texts,
// most-similar first, with blank lines. Degraded retrieval and no-match
// both yield an empty context; they are logged distinctly.
func (s *chatService) retrieveContext(ctx context.Context, documentID, query string) string {
	outcome := s.retriever.Retrieve(ctx, documentID, query)

	switch outcome.Status {
	case services.RetrievalDegraded:
		s.logger.Warn("retrieval degraded, continuing with empty context",
			"document_id", documentID,
			"error", outcome.Err,
		)
		return ""
	case services.RetrievalNoMatch:
		s.logger.Debug("no chunks above similarity threshold",
			"document_id", documentID,
		)
		return ""
	}

	texts := make([]string, len(outcome.Matches))
	for i, m := range outcome.Matches {
		texts[i] = m.Content
	}
	return strings.Join(texts, "\n\n")
}

// buildTurns converts the prior history plus the new user message into
// generator turns in chronological order.
func buildTurns(history []models.Message, userMsg *models.Message) []services.ChatTurn {
	turns := make([]services.ChatTurn, 0, len(history)+1)
	for _, msg := range history {
		turns = append(turns, services.ChatTurn{Role: msg.Role, Content: msg.Content})
	}
	turns = append(turns, services.ChatTurn{Role: userMsg.Role, Content: userMsg.Content})
	return turns
}

// Validation methods

func (s *chatService) validateCreateChatRequest(req *services.CreateChatRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Length(0, config.MaxChatTitleLength)),
	)
}

func (s *chatService) validateSendMessageRequest(req *services.SendMessageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ChatID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Content,
			validation.Required,
			validation.Length(1, config.MaxMessageLength),
		),
	)
}
