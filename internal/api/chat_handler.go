package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/internal/middleware"
	"github.com/markpoint/backend/internal/realtime"
	"github.com/markpoint/backend/pkg/response"
)

// ChatHandler handles direct message endpoints
type ChatHandler struct {
	chatService *domain.ChatService
	hub         *realtime.Hub
	logger      *zap.Logger
}

func NewChatHandler(chatService *domain.ChatService, hub *realtime.Hub, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		hub:         hub,
		logger:      logger,
	}
}

type CreateChatRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

// CreateChat opens (or returns) the chat between the caller and another user
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		response.BadRequest(w, "user_id is required")
		return
	}

	chat, err := h.chatService.CreateChat(r.Context(), userID, req.UserID)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("create chat failed", zap.Error(err))
		response.InternalError(w, "failed to create chat")
		return
	}

	response.Created(w, chat)
}

// GetChats lists the caller's chats
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	chats, err := h.chatService.GetUserChats(r.Context(), userID)
	if err != nil {
		h.logger.Error("get chats failed", zap.Error(err))
		response.InternalError(w, "failed to get chats")
		return
	}

	response.OK(w, chats)
}

// GetMessages returns a chat's message history
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	chatID, err := uuid.Parse(chi.URLParam(r, "chatId"))
	if err != nil {
		response.BadRequest(w, "invalid chat id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	messages, err := h.chatService.GetMessages(r.Context(), userID, chatID, limit, offset)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("get messages failed", zap.Error(err))
		response.InternalError(w, "failed to get messages")
		return
	}

	response.OK(w, messages)
}

// SendMessage stores a message and pushes it to the recipient's live sessions
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	chatID, err := uuid.Parse(chi.URLParam(r, "chatId"))
	if err != nil {
		response.BadRequest(w, "invalid chat id")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Content == "" {
		response.BadRequest(w, "content is required")
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), chatID, userID, req.Content)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("send message failed", zap.Error(err))
		response.InternalError(w, "failed to send message")
		return
	}

	h.pushMessage(chatID, userID, msg)

	response.Created(w, msg)
}

// pushMessage fans a new message out to the other participants' live chat
// sessions. Delivery is best effort.
func (h *ChatHandler) pushMessage(chatID, senderID uuid.UUID, msg *domain.Message) {
	chat, err := h.chatService.GetChat(context.Background(), chatID)
	if err != nil {
		return
	}

	frame, err := realtime.Marshal("new_message", msg)
	if err != nil {
		h.logger.Error("failed to marshal message frame", zap.Error(err))
		return
	}

	for _, u := range chat.Users {
		if u.ID == senderID {
			continue
		}
		h.hub.SendToUser(realtime.ChannelChat, u.ID, frame)
	}
}
