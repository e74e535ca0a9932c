// Package realtime carries interview actions over WebSocket connections.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Conn is the part of a WebSocket connection the hub needs.
type Conn interface {
	Close(code websocket.StatusCode, reason string) error
}

// Hub tracks the live connection of each interview session.
// A newer connection for a session replaces and closes the older one.
type Hub struct {
	mu     sync.RWMutex
	active map[string]Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{active: make(map[string]Conn)}
}

// Active returns the live connection for a session.
func (h *Hub) Active(sessionID string) Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active[sessionID]
}

// Register makes conn the live connection for a session.
func (h *Hub) Register(sessionID string, conn Conn) {
	h.mu.Lock()
	existing := h.active[sessionID]
	h.active[sessionID] = conn
	h.mu.Unlock()

	if existing != nil && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
		slog.Info("Interview connection replaced", "session_id", sessionID)
		return
	}
	slog.Info("Interview connection registered", "session_id", sessionID)
}

// Unregister removes conn if it is still the live connection for the session.
func (h *Hub) Unregister(sessionID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.active[sessionID]; ok && current == conn {
		delete(h.active, sessionID)
		slog.Info("Interview connection unregistered", "session_id", sessionID)
	}
}

// CloseAll terminates every live connection.
func (h *Hub) CloseAll(reason string) {
	h.mu.Lock()
	conns := h.active
	h.active = make(map[string]Conn)
	h.mu.Unlock()

	for sid, conn := range conns {
		_ = conn.Close(websocket.StatusGoingAway, reason)
		slog.Debug("Interview connection closed", "session_id", sid)
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.active)
}
