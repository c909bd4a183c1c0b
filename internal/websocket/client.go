package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"globalinsights/internal/infrastructure"
	"globalinsights/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn Connection

	// Buffered channel of outbound messages. Only the hub closes it.
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	messagesSent  int64
	bytesSent     int64
	bytesReceived int64
}

// NewClient creates a client for conn. traceID ties the client logs to the upgrade request.
func NewClient(hub *Hub, conn Connection, remoteAddr, traceID string) *Client {
	id := uuid.NewString()
	logger := hub.logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, hub.cfg.SendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
		logger:      logger,
	}
}

// ID returns the client id
func (c *Client) ID() string { return c.id }

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

func (c *Client) pongWait() time.Duration {
	if c.hub.cfg.PongWait > 0 {
		return c.hub.cfg.PongWait
	}
	return 60 * time.Second
}

// pingPeriod must stay below the pong wait
func (c *Client) pingPeriod() time.Duration {
	if p := c.hub.cfg.PingPeriod; p > 0 && p < c.pongWait() {
		return p
	}
	return c.pongWait() * 9 / 10
}

// ReadPump reads client frames until the connection fails, then unregisters the client
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		c.logger.DebugContext(c.context(), "Read pump stopped",
			slog.Int64("bytes_received", c.bytesReceived))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.bytesReceived += int64(len(data))
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))

		var msg events.BaseMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			c.logger.DebugContext(c.context(), "Ignoring malformed client frame",
				slog.Int("size", len(data)))
			continue
		}
		c.hub.receive(c, msg)
	}
}

// WritePump writes queued messages and keepalive pings until the hub closes the send channel
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(c.context(), "Write pump stopped",
			slog.Int64("messages_sent", c.messagesSent),
			slog.Int64("bytes_sent", c.bytesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WarnContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++
			c.bytesSent += int64(len(message))
			c.hub.metrics.RecordBytes(c.context(), len(message))

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
