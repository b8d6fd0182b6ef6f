package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/auth"
	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/internal/geo"
	"github.com/markpoint/backend/internal/realtime"
	"github.com/markpoint/backend/pkg/response"
	"github.com/markpoint/backend/pkg/validator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens before the upgrade; origin is not the trust boundary.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades HTTP connections into hub sessions, one endpoint per
// channel. Marks sessions additionally speak the viewport protocol: they send
// a marks_get frame to declare their area and get the current marks back,
// and from then on receive pushes for mutations inside that area.
type WSHandler struct {
	hub         *realtime.Hub
	markService *domain.MarkService
	chatService *domain.ChatService
	jwtManager  *auth.JWTManager
	logger      *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, markService *domain.MarkService, chatService *domain.ChatService, jwtManager *auth.JWTManager, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:         hub,
		markService: markService,
		chatService: chatService,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

// ViewportRequest is the marks_get payload a client sends to declare its
// area. SRID is accepted for forward compatibility; only 4326 is supported.
type ViewportRequest struct {
	Latitude  float64    `json:"latitude" validate:"latitude"`
	Longitude float64    `json:"longitude" validate:"longitude"`
	Radius    float64    `json:"radius,omitempty" validate:"omitempty,min=0"`
	SRID      int        `json:"srid,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	Duration  int        `json:"duration,omitempty"`
	ShowEnded bool       `json:"show_ended,omitempty"`
}

type ChatSendRequest struct {
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`
}

// Marks serves the marks channel
func (h *WSHandler) Marks(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.ChannelMarks)
}

// Chat serves the chat channel
func (h *WSHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.ChannelChat)
}

// Presence serves the presence channel
func (h *WSHandler) Presence(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.ChannelPresence)
}

func (h *WSHandler) serve(w http.ResponseWriter, r *http.Request, channel realtime.Channel) {
	claims, ok := h.authenticate(r)
	if !ok {
		response.Unauthorized(w, "missing or invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(channel, claims.UserID, conn)
	switch channel {
	case realtime.ChannelMarks:
		client.OnMessage = h.onMarksMessage
	case realtime.ChannelChat:
		client.OnMessage = h.onChatMessage
	}

	h.hub.Register(client)
	go client.WritePump()

	if channel == realtime.ChannelPresence {
		h.broadcastPresence()
		defer h.broadcastPresence()
	}

	// The read pump owns the connection lifetime; it unregisters on exit.
	client.ReadPump(h.hub)
}

// authenticate accepts the access token from the Authorization header or,
// for browser WebSocket clients that cannot set headers, a query parameter.
func (h *WSHandler) authenticate(r *http.Request) (*auth.Claims, bool) {
	token := ""
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
	}
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, false
	}

	claims, err := h.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// onMarksMessage handles inbound frames on the marks channel. A marks_get
// frame both answers with the current marks and becomes the session's stored
// viewport for future pushes. Anything else is a negative ack; the session
// stays open and its previous viewport stays in effect.
func (h *WSHandler) onMarksMessage(c *realtime.Client, event string, data json.RawMessage) {
	if event != "marks_get" {
		h.sendError(c, "unknown event")
		return
	}

	var req ViewportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(c, "malformed viewport")
		return
	}
	if errs := validator.Struct(&req); errs.HasErrors() {
		h.sendError(c, errs.Error())
		return
	}
	if req.SRID != 0 && req.SRID != geo.SRID {
		h.sendError(c, "unsupported srid")
		return
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}

	filter, err := h.markService.NewFilter(req.Latitude, req.Longitude, req.Radius, date, req.Duration, req.ShowEnded)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	h.hub.UpdateFilter(c.ID, filter)

	marks, err := h.markService.GetMarks(context.Background(), filter)
	if err != nil {
		h.logger.Error("viewport query failed",
			zap.String("session_id", c.ID.String()),
			zap.Error(err),
		)
		h.sendError(c, "query failed")
		return
	}

	h.reply(c, "marks_get", marks)
}

// onChatMessage handles inbound frames on the chat channel
func (h *WSHandler) onChatMessage(c *realtime.Client, event string, data json.RawMessage) {
	if event != "send_message" {
		h.sendError(c, "unknown event")
		return
	}

	var req ChatSendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(c, "malformed message")
		return
	}

	chatID, err := uuid.Parse(req.ChatID)
	if err != nil || req.Content == "" {
		h.sendError(c, "chat_id and content are required")
		return
	}

	msg, err := h.chatService.SendMessage(context.Background(), chatID, c.UserID, req.Content)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	frame, err := realtime.Marshal("new_message", msg)
	if err != nil {
		return
	}

	chat, err := h.chatService.GetChat(context.Background(), chatID)
	if err != nil {
		return
	}
	for _, u := range chat.Users {
		h.hub.SendToUser(realtime.ChannelChat, u.ID, frame)
	}
}

func (h *WSHandler) broadcastPresence() {
	frame, err := realtime.Marshal("presence_count", map[string]int{
		"count": h.hub.Count(realtime.ChannelPresence),
	})
	if err != nil {
		return
	}
	h.hub.Broadcast(realtime.ChannelPresence, frame)
}

func (h *WSHandler) reply(c *realtime.Client, event string, data interface{}) {
	frame, err := realtime.Marshal(event, data)
	if err != nil {
		h.logger.Error("failed to marshal reply", zap.String("event", event), zap.Error(err))
		return
	}
	h.hub.Send(c.Channel, c.ID, frame)
}

func (h *WSHandler) sendError(c *realtime.Client, message string) {
	h.reply(c, "error", map[string]string{"message": message})
}
