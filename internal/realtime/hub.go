package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
)

// Channel is a logical partition of the realtime transport.
type Channel string

const (
	ChannelMarks    Channel = "marks"
	ChannelChat     Channel = "chat"
	ChannelPresence Channel = "presence"
)

// Envelope is the wire frame for every message on every channel.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Marshal encodes an event frame once so it can fan out to many recipients.
func Marshal(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Hub tracks live connections per channel and the last viewport filter each
// marks-channel session declared. A single coarse lock guards all state;
// critical sections are map operations and non-blocking channel sends, never
// I/O. Send channels are closed under the write lock and written under the
// read lock, so a sender can never race an unregister onto a closed channel.
// Sessions live only as long as the process; nothing here is persisted.
type Hub struct {
	mu       sync.RWMutex
	channels map[Channel]map[uuid.UUID]*Client
	filters  map[uuid.UUID]*domain.MarkFilter
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		channels: make(map[Channel]map[uuid.UUID]*Client),
		filters:  make(map[uuid.UUID]*domain.MarkFilter),
		logger:   logger,
	}
}

// Register adds a client to its channel with no filter yet. Registering the
// same session twice is a no-op.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.channels[c.Channel]
	if !ok {
		clients = make(map[uuid.UUID]*Client)
		h.channels[c.Channel] = clients
	}
	if _, exists := clients[c.ID]; exists {
		return
	}
	clients[c.ID] = c

	h.logger.Debug("session registered",
		zap.String("session_id", c.ID.String()),
		zap.String("channel", string(c.Channel)),
	)
}

// Unregister removes a client and its filter. Safe to call more than once;
// the send channel is closed exactly once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if clients, ok := h.channels[c.Channel]; ok {
		if _, exists := clients[c.ID]; exists {
			delete(clients, c.ID)
			if len(clients) == 0 {
				delete(h.channels, c.Channel)
			}
		}
	}
	delete(h.filters, c.ID)
	// Closed inside the locked section; senders hold the read lock across
	// their sends and so can never see a closed channel.
	c.closeSend()
	h.mu.Unlock()

	h.logger.Debug("session unregistered",
		zap.String("session_id", c.ID.String()),
		zap.String("channel", string(c.Channel)),
	)
}

// UpdateFilter replaces a session's viewport; last write wins, no history.
// A session that disconnected concurrently is logged and ignored.
func (h *Hub) UpdateFilter(sessionID uuid.UUID, filter *domain.MarkFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.channels[ChannelMarks]
	if !ok {
		h.logger.Debug("filter update for unknown session", zap.String("session_id", sessionID.String()))
		return
	}
	if _, exists := clients[sessionID]; !exists {
		h.logger.Debug("filter update for unknown session", zap.String("session_id", sessionID.String()))
		return
	}
	h.filters[sessionID] = filter
}

// Filter returns the session's stored viewport, or nil if it never sent one.
func (h *Hub) Filter(sessionID uuid.UUID) *domain.MarkFilter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.filters[sessionID]
}

// Sessions returns a snapshot of a channel's membership. Callers must
// tolerate sessions disappearing before they act on the snapshot.
func (h *Hub) Sessions(channel Channel) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.channels[channel]
	ids := make([]uuid.UUID, 0, len(clients))
	for id := range clients {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live sessions in a channel.
func (h *Hub) Count(channel Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Send queues a message for one session without blocking. Returns false if
// the session is gone or its buffer is full (slow consumer).
func (h *Hub) Send(channel Channel, sessionID uuid.UUID, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.channels[channel][sessionID]
	if !ok {
		return false
	}

	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// SendToUser queues a message for every session a user has in a channel.
func (h *Hub) SendToUser(channel Channel, userID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.channels[channel] {
		if c.UserID != userID {
			continue
		}
		select {
		case c.Send <- message:
		default:
			h.logger.Warn("dropping message for slow session", zap.String("session_id", c.ID.String()))
		}
	}
}

// Broadcast queues a message for every session in a channel.
func (h *Hub) Broadcast(channel Channel, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.channels[channel] {
		select {
		case c.Send <- message:
		default:
		}
	}
}
