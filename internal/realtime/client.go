package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one live WebSocket session pinned to a channel. The session ID
// is the registry key; UserID ties chat sessions back to their user.
type Client struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Channel Channel
	Conn    *websocket.Conn
	Send    chan []byte

	// OnMessage handles inbound frames; set before the pumps start. May be
	// nil for push-only channels.
	OnMessage func(c *Client, event string, data json.RawMessage)

	closeOnce sync.Once
}

func NewClient(channel Channel, userID uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		ID:      uuid.New(),
		UserID:  userID,
		Channel: channel,
		Conn:    conn,
		Send:    make(chan []byte, 256),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// ReadPump consumes inbound frames until the peer goes away, then removes
// the session from the hub. Malformed frames are handed to OnMessage with an
// empty event name so the handler can ack the failure.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		if c.OnMessage == nil {
			continue
		}

		var env struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			c.OnMessage(c, "", nil)
			continue
		}
		c.OnMessage(c, env.Event, env.Data)
	}
}

// WritePump drains the send buffer onto the socket, batching queued frames
// into one write where possible.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		n := len(c.Send)
		for i := 0; i < n; i++ {
			w.Write([]byte{'\n'})
			w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
