package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"docqa/internal/domain"
	"docqa/internal/domain/models"
	"docqa/internal/domain/services"
)

// In-memory fakes

type fakeChatRepo struct {
	chats   map[string]*models.Chat
	touched map[string]time.Time
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[string]*models.Chat{}, touched: map[string]time.Time{}}
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	chat, ok := r.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return chat, nil
}

func (r *fakeChatRepo) ListByUser(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	for _, c := range r.chats {
		if c.UserID == userID {
			chats = append(chats, *c)
		}
	}
	return chats, nil
}

func (r *fakeChatRepo) Touch(ctx context.Context, chatID string, at time.Time) error {
	r.touched[chatID] = at
	return nil
}

func (r *fakeChatRepo) Delete(ctx context.Context, chatID, userID string) error {
	if _, err := r.GetByID(ctx, chatID, userID); err != nil {
		return err
	}
	delete(r.chats, chatID)
	return nil
}

type fakeMessageRepo struct {
	messages []models.Message
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	var msgs []models.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

type fakeDocRepo struct {
	docs map[string]*models.Document
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, documentID, userID string) (*models.Document, error) {
	doc, ok := r.docs[documentID]
	if !ok || doc.UserID != userID {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return doc, nil
}

func (r *fakeDocRepo) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return nil, nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, documentID, userID string) error {
	delete(r.docs, documentID)
	return nil
}

type fakeRetriever struct {
	outcome services.RetrievalOutcome
	queries []string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, documentID, query string) services.RetrievalOutcome {
	f.queries = append(f.queries, query)
	return f.outcome
}

type fakeGenerator struct {
	reply   string
	err     error
	lastReq *services.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req *services.GenerateRequest) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) DescribeImage(ctx context.Context, data []byte, mediaType string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeGenerator) Name() string { return "fake" }

// Fixture

type fixture struct {
	svc       services.ChatService
	chatRepo  *fakeChatRepo
	msgRepo   *fakeMessageRepo
	docRepo   *fakeDocRepo
	retriever *fakeRetriever
	generator *fakeGenerator
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	f := &fixture{
		chatRepo: newFakeChatRepo(),
		msgRepo:  &fakeMessageRepo{},
		docRepo:  &fakeDocRepo{docs: map[string]*models.Document{}},
		retriever: &fakeRetriever{outcome: services.RetrievalOutcome{
			Status: services.RetrievalNoMatch,
		}},
		generator: &fakeGenerator{reply: "generated answer"},
	}
	f.svc = NewService(f.chatRepo, f.msgRepo, f.docRepo, f.retriever, f.generator, logger)
	return f
}

func (f *fixture) seedChat(chatID, userID, docID string) {
	f.docRepo.docs[docID] = &models.Document{ID: docID, UserID: userID, Filename: "report.pdf"}
	f.chatRepo.chats[chatID] = &models.Chat{
		ID:         chatID,
		UserID:     userID,
		DocumentID: docID,
		Title:      "report.pdf",
	}
}

// Tests

func TestCreateChat_DefaultsTitleToFilename(t *testing.T) {
	f := newFixture()
	f.docRepo.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", Filename: "report.pdf"}

	chat, err := f.svc.CreateChat(context.Background(), &services.CreateChatRequest{
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if chat.Title != "report.pdf" {
		t.Errorf("expected title defaulted to filename, got %q", chat.Title)
	}
	if chat.UpdatedAt.Before(chat.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v", chat.UpdatedAt, chat.CreatedAt)
	}
}

func TestCreateChat_DocumentNotOwned(t *testing.T) {
	f := newFixture()
	f.docRepo.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "someone-else", Filename: "x.txt"}

	_, err := f.svc.CreateChat(context.Background(), &services.CreateChatRequest{
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign document, got %v", err)
	}
}

func TestCreateChat_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateChat(context.Background(), &services.CreateChatRequest{UserID: "user-1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing document id, got %v", err)
	}
}

func TestSendMessage_PersistsPairAndAssemblesPrompt(t *testing.T) {
	f := newFixture()
	f.seedChat("chat-1", "user-1", "doc-1")
	f.msgRepo.messages = []models.Message{
		{ID: "m1", ChatID: "chat-1", Role: models.RoleUser, Content: "earlier question"},
		{ID: "m2", ChatID: "chat-1", Role: models.RoleAssistant, Content: "earlier answer"},
	}
	f.retriever.outcome = services.RetrievalOutcome{
		Status: services.RetrievalOK,
		Matches: []models.ScoredChunk{
			{Content: "most similar chunk", Similarity: 0.95},
			{Content: "second chunk", Similarity: 0.81},
		},
	}

	pair, err := f.svc.SendMessage(context.Background(), &services.SendMessageRequest{
		ChatID:  "chat-1",
		UserID:  "user-1",
		Content: "what does the report say?",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if pair.UserMessage.Role != models.RoleUser || pair.UserMessage.Content != "what does the report say?" {
		t.Errorf("unexpected user message: %+v", pair.UserMessage)
	}
	if pair.AssistantMessage.Role != models.RoleAssistant || pair.AssistantMessage.Content != "generated answer" {
		t.Errorf("unexpected assistant message: %+v", pair.AssistantMessage)
	}

	// Both messages persisted (2 seeded + 2 new)
	if len(f.msgRepo.messages) != 4 {
		t.Fatalf("expected 4 stored messages, got %d", len(f.msgRepo.messages))
	}

	// System prompt embeds context, most-similar first, blank-line joined
	req := f.generator.lastReq
	if req == nil {
		t.Fatal("generator was not called")
	}
	if !strings.Contains(req.System, "most similar chunk\n\nsecond chunk") {
		t.Errorf("system prompt missing ordered context:\n%s", req.System)
	}
	if !strings.Contains(req.System, "not found") {
		t.Errorf("system prompt missing not-found instruction:\n%s", req.System)
	}

	// History chronological, ending with the new user message
	wantTurns := []services.ChatTurn{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
		{Role: models.RoleUser, Content: "what does the report say?"},
	}
	if len(req.Turns) != len(wantTurns) {
		t.Fatalf("expected %d turns, got %d", len(wantTurns), len(req.Turns))
	}
	for i, want := range wantTurns {
		if req.Turns[i] != want {
			t.Errorf("turn %d: got %+v, want %+v", i, req.Turns[i], want)
		}
	}

	// Chat timestamp advanced to the assistant message's created_at
	if at, ok := f.chatRepo.touched["chat-1"]; !ok || at.Before(pair.AssistantMessage.CreatedAt) {
		t.Errorf("chat updated_at not advanced: %v", at)
	}
}

func TestSendMessage_NoMatchStillAnswersWithEmptyContext(t *testing.T) {
	f := newFixture()
	f.seedChat("chat-1", "user-1", "doc-1")
	f.retriever.outcome = services.RetrievalOutcome{Status: services.RetrievalNoMatch}

	pair, err := f.svc.SendMessage(context.Background(), &services.SendMessageRequest{
		ChatID:  "chat-1",
		UserID:  "user-1",
		Content: "anything relevant?",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if pair.AssistantMessage == nil {
		t.Fatal("expected an assistant reply despite empty context")
	}

	// The context section is present but empty, not omitted with an error
	if !strings.Contains(f.generator.lastReq.System, "Document excerpts:") {
		t.Errorf("system prompt missing context section:\n%s", f.generator.lastReq.System)
	}
}

func TestSendMessage_DegradedRetrievalFallsBack(t *testing.T) {
	f := newFixture()
	f.seedChat("chat-1", "user-1", "doc-1")
	f.retriever.outcome = services.RetrievalOutcome{
		Status: services.RetrievalDegraded,
		Err:    domain.ErrExternalService,
	}

	pair, err := f.svc.SendMessage(context.Background(), &services.SendMessageRequest{
		ChatID:  "chat-1",
		UserID:  "user-1",
		Content: "still works?",
	})
	if err != nil {
		t.Fatalf("expected degraded retrieval to be recoverable, got %v", err)
	}
	if pair.AssistantMessage.Content != "generated answer" {
		t.Errorf("unexpected reply: %q", pair.AssistantMessage.Content)
	}
}

func TestSendMessage_GenerationFailureKeepsUserMessage(t *testing.T) {
	f := newFixture()
	f.seedChat("chat-1", "user-1", "doc-1")
	f.generator.err = fmt.Errorf("model overloaded: %w", domain.ErrExternalService)

	_, err := f.svc.SendMessage(context.Background(), &services.SendMessageRequest{
		ChatID:  "chat-1",
		UserID:  "user-1",
		Content: "doomed question",
	})
	if !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}

	// The user message stays stored; no assistant message was written
	if len(f.msgRepo.messages) != 1 {
		t.Fatalf("expected exactly the user message stored, got %d messages", len(f.msgRepo.messages))
	}
	if f.msgRepo.messages[0].Role != models.RoleUser {
		t.Errorf("stored message has role %q, want user", f.msgRepo.messages[0].Role)
	}
}

func TestSendMessage_ChatNotOwned(t *testing.T) {
	f := newFixture()
	f.seedChat("chat-1", "someone-else", "doc-1")

	_, err := f.svc.SendMessage(context.Background(), &services.SendMessageRequest{
		ChatID:  "chat-1",
		UserID:  "user-1",
		Content: "hello",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign chat, got %v", err)
	}
	if len(f.msgRepo.messages) != 0 {
		t.Errorf("no message should be stored for a rejected request, got %d", len(f.msgRepo.messages))
	}
}

func TestSendMessage_Validation(t *testing.T) {
	f := newFixture()
	f.seedChat("chat-1", "user-1", "doc-1")

	_, err := f.svc.SendMessage(context.Background(), &services.SendMessageRequest{
		ChatID: "chat-1",
		UserID: "user-1",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty content, got %v", err)
	}
	if f.generator.lastReq != nil {
		t.Error("generator must not be called for invalid input")
	}
}

func TestSendMessage_WhitespaceOnlyContentRejected(t *testing.T) {
	f := newFixture()
	f.seedChat("chat-1", "user-1", "doc-1")

	_, err := f.svc.SendMessage(context.Background(), &services.SendMessageRequest{
		ChatID:  "chat-1",
		UserID:  "user-1",
		Content: "   \n\t ",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for whitespace-only content, got %v", err)
	}
	if len(f.msgRepo.messages) != 0 {
		t.Errorf("no message should be stored for blank content, got %d", len(f.msgRepo.messages))
	}
	if len(f.retriever.queries) != 0 {
		t.Error("retriever must not be called for blank content")
	}
	if f.generator.lastReq != nil {
		t.Error("generator must not be called for blank content")
	}
}

func TestListMessages_OwnershipEnforced(t *testing.T) {
	f := newFixture()
	f.seedChat("chat-1", "someone-else", "doc-1")

	_, err := f.svc.ListMessages(context.Background(), "chat-1", "user-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
