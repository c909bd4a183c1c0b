package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"globalinsights/internal/infrastructure"
)

// Handler upgrades HTTP requests and attaches the connections to a hub
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	origins  []string
	logger   *slog.Logger
}

// NewHandler creates the /ws endpoint. An empty allowedOrigins list accepts same-host
// origins only; "*" accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:     hub,
		origins: allowedOrigins,
		logger:  logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  hub.cfg.ReadBufferSize,
		WriteBufferSize: hub.cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// ServeHTTP upgrades the connection and starts the client pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response
		h.logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, conn, remoteAddr(conn), infrastructure.GetTraceID(ctx))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
