package handler

import (
	"log/slog"
	"net/http"

	"docqa/internal/domain/services"
	"docqa/internal/httputil"
)

// ChatHandler handles chat HTTP requests
// Follows Clean Architecture: handlers only communicate with services, never repositories
type ChatHandler struct {
	chatService services.ChatService
	logger      *slog.Logger
	debug       bool
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService services.ChatService, logger *slog.Logger, debug bool) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
		debug:       debug,
	}
}

// CreateChat creates a new chat session bound to a document
// POST /api/chats
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	req.UserID = userID

	chat, err := h.chatService.CreateChat(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, "chat created", chat)
}

// ListChats retrieves all chats for the authenticated user
// GET /api/chats
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	chats, err := h.chatService.ListChats(r.Context(), userID)
	if err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, "chats retrieved", chats)
}

// GetChat retrieves a chat by ID
// GET /api/chats/{id}
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "chat ID is required", nil)
		return
	}

	chat, err := h.chatService.GetChat(r.Context(), id, userID)
	if err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, "chat retrieved", chat)
}

// DeleteChat removes a chat and its messages
// DELETE /api/chats/{id}
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "chat ID is required", nil)
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), id, userID); err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, "chat deleted", nil)
}

// ListMessages retrieves the full message history of a chat
// GET /api/chats/{id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "chat ID is required", nil)
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), id, userID)
	if err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, "messages retrieved", messages)
}

// SendMessage submits a user question and returns the stored user and
// assistant messages
// POST /api/chats/{id}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "chat ID is required", nil)
		return
	}

	var req services.SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	req.ChatID = id
	req.UserID = userID

	pair, err := h.chatService.SendMessage(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.debug)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, "message sent", pair)
}
