package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ashureev/interview-coach/internal/api"
	"github.com/ashureev/interview-coach/internal/interview"
)

const writeTimeout = 10 * time.Second

// Service is the session API driven over the socket.
type Service interface {
	Submit(ctx context.Context, sessionID string, act interview.Action) (interview.Response, error)
	Progress(ctx context.Context, sessionID string) (*interview.Progress, error)
}

// Handler upgrades /ws/interview requests and relays actions to the service.
type Handler struct {
	svc            Service
	hub            *Hub
	originPatterns []string
	readLimit      int64
}

// NewHandler creates a WebSocket handler. allowedOrigins uses the same
// values as CORS (full origins or "*").
func NewHandler(svc Service, hub *Hub, allowedOrigins []string, readLimit int64) *Handler {
	return &Handler{
		svc:            svc,
		hub:            hub,
		originPatterns: originPatterns(allowedOrigins),
		readLimit:      readLimit,
	}
}

// message is one inbound frame: an interview action or a ping.
type message struct {
	Type string `json:"type,omitempty"`
	interview.Action
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if _, err := h.svc.Progress(r.Context(), sessionID); err != nil {
		api.ServiceError(w, err, "session_id", sessionID)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Warn("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()
	if h.readLimit > 0 {
		ws.SetReadLimit(h.readLimit)
	}

	h.hub.Register(sessionID, ws)
	defer h.hub.Unregister(sessionID, ws)

	h.readLoop(r.Context(), ws, sessionID)
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, sessionID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else {
				slog.Debug("WebSocket read ended", "error", err, "session_id", sessionID)
			}
			return
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			if !h.write(ctx, ws, map[string]string{"error": "invalid JSON message"}) {
				return
			}
			continue
		}

		if msg.Type == "ping" {
			if !h.write(ctx, ws, map[string]string{"type": "pong"}) {
				return
			}
			continue
		}

		resp, err := h.svc.Submit(ctx, sessionID, msg.Action)
		if err != nil {
			status, text := api.Classify(err)
			slog.Warn("Interview action failed", "error", err, "session_id", sessionID, "status", status)
			if !h.write(ctx, ws, map[string]any{"error": text, "status": status}) {
				return
			}
			continue
		}
		if !h.write(ctx, ws, api.NewAnswerResponse(resp)) {
			return
		}
	}
}

func (h *Handler) write(ctx context.Context, ws *websocket.Conn, v any) bool {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(writeCtx, ws, v); err != nil {
		slog.Debug("WebSocket write error", "error", err)
		return false
	}
	return true
}

// originPatterns turns CORS origins into host patterns for websocket.Accept.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			out = append(out, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		out = append(out, u.Host)
	}
	return out
}
