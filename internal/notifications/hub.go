// Package notifications delivers live feed events over websockets.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"snapfeed/internal/middleware"
	"snapfeed/internal/models"

	"github.com/gofiber/websocket/v2"
)

// Max total connections
const maxTotalConns = 10000

// FeedEvent is the wire shape of one live feed notification.
type FeedEvent struct {
	Channel string       `json:"channel"`
	Action  string       `json:"action"`
	Post    *models.Post `json:"post,omitempty"`
	PostID  uint         `json:"post_id,omitempty"`
}

// Hub fans feed events out to every connected websocket client.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*Client]struct{}
	shutdown chan struct{}
}

// NewHub creates a new Hub instance for feed event delivery.
func NewHub() *Hub {
	return &Hub{
		conns:    make(map[*Client]struct{}),
		shutdown: make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "feed hub" }

// Register adds a connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.conns) >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	client := NewClient(h, conn)
	h.conns[client] = struct{}{}
	return client, nil
}

// UnregisterClient removes a connection from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, client)
}

// ClientCount reports the number of active connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.TrySend(message)
	}
}

// PostCreated publishes a creation event to all clients.
func (h *Hub) PostCreated(post *models.Post) {
	h.publish(FeedEvent{Channel: "posts", Action: "create", Post: post})
}

// PostUpdated publishes an update event to all clients.
func (h *Hub) PostUpdated(post *models.Post) {
	h.publish(FeedEvent{Channel: "posts", Action: "update", Post: post})
}

// PostDeleted publishes a deletion event carrying only the post id.
func (h *Hub) PostDeleted(postID uint) {
	h.publish(FeedEvent{Channel: "posts", Action: "delete", PostID: postID})
}

func (h *Hub) publish(event FeedEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.Error("failed to encode feed event", "action", event.Action, "error", err)
		return
	}
	h.BroadcastAll(data)
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.conns {
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			middleware.Logger.Warn("failed to write close message", "error", err)
		}
		if err := client.Conn.Close(); err != nil {
			middleware.Logger.Warn("failed to close websocket", "error", err)
		}
	}
	h.conns = make(map[*Client]struct{})

	return nil
}
