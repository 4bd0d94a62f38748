package notification

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// client serializes writes; gorilla connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub keeps the live websocket connection of each user. A new connection
// for the same user replaces the old one.
type Hub struct {
	clients map[int64]*client
	mutex   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]*client),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.clients[userID]; exists && old.conn != conn {
		_ = old.conn.Close()
	}
	h.clients[userID] = &client{conn: conn}
}

// Unregister drops conn if it is still the user's current connection.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c, exists := h.clients[userID]; exists && c.conn == conn {
		_ = c.conn.Close()
		delete(h.clients, userID)
	}
}

func (h *Hub) get(userID int64) *client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.clients[userID]
}

func (h *Hub) SendToUser(userID int64, message interface{}) bool {
	c := h.get(userID)
	if c == nil {
		return false
	}
	if err := c.writeJSON(message); err != nil {
		h.Unregister(userID, c.conn)
		return false
	}
	return true
}

func (h *Hub) Ping(userID int64, conn *websocket.Conn) error {
	c := h.get(userID)
	if c == nil || c.conn != conn {
		return websocket.ErrCloseSent
	}
	return c.ping()
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[userID]
	return exists
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, userID)
	}
}
