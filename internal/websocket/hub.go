// Package websocket pushes dataset events to connected dashboard clients.
package websocket

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"globalinsights/internal/config"
	"globalinsights/internal/infrastructure"
	"globalinsights/pkg/contracts/events"
)

// Disconnect reasons
const (
	reasonNormal     = "normal"
	reasonSlowClient = "slow_client"
	reasonShutdown   = "shutdown"
)

// broadcastQueue bounds the events waiting for the hub loop
const broadcastQueue = 64

type outbound struct {
	messageType string
	payload     []byte
}

type inbound struct {
	client  *Client
	message events.BaseMessage
}

// Hub maintains the set of active clients and broadcasts dataset events to them
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *slog.Logger
	metrics *OTelMetrics

	// Registered clients, owned by the run loop
	clients map[*Client]struct{}
	count   atomic.Int64

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound

	mu      sync.RWMutex
	running bool
	quit    chan struct{}
	done    chan struct{}

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	droppedClients   atomic.Int64
}

// HubStats is a point-in-time view of the hub counters
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	DroppedClients   int64 `json:"dropped_clients"`
}

// NewHub creates a hub. metrics and logger may be nil.
func NewHub(cfg config.WebSocketConfig, metrics *OTelMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	return &Hub{
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan outbound, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in a goroutine. Starting twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop disconnects every client and waits for the hub loop to exit
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)
	h.mu.Unlock()
	<-h.done
}

func (h *Hub) isRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			for client := range h.clients {
				h.remove(client, reasonShutdown)
			}
			h.logger.Info("Hub shut down")
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.totalConnections.Add(1)

			ctx := client.context()
			h.metrics.RecordConnection(ctx)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.sendTo(client, events.MessageTypeConnect, map[string]string{
				"client_id": client.id,
				"protocol":  events.ProtocolName,
				"version":   events.ProtocolVersion,
			})

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client, reasonNormal)
			}

		case in := <-h.inbound:
			if _, ok := h.clients[in.client]; !ok {
				continue
			}
			switch in.message.Type {
			case events.MessageTypePing:
				h.sendTo(in.client, events.MessageTypePong, nil)
			default:
				h.sendTo(in.client, events.MessageTypeError, events.ErrorData{
					Code:    events.ErrCodeUnsupportedType,
					Message: "unsupported message type " + string(in.message.Type),
				})
			}

		case msg := <-h.broadcast:
			delivered := 0
			for client := range h.clients {
				select {
				case client.send <- msg.payload:
					delivered++
				default:
					h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
					h.remove(client, reasonSlowClient)
				}
			}
			h.messagesSent.Add(int64(delivered))
			h.metrics.RecordBroadcast(context.Background(), msg.messageType, delivered)
			h.logger.Debug("Broadcast event",
				slog.String("type", msg.messageType),
				slog.Int("delivered", delivered),
				slog.Int("payload_size", len(msg.payload)))
		}
	}
}

// remove drops a client and closes its send channel. Only the run loop calls it.
func (h *Hub) remove(client *Client, reason string) {
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
	if reason == reasonSlowClient {
		h.droppedClients.Add(1)
	}

	ctx := client.context()
	h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt), reason)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", len(h.clients)),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// sendTo queues one message for a single client without blocking the loop
func (h *Hub) sendTo(client *Client, msgType events.MessageType, data any) {
	payload, err := encode(msgType, data, client.traceID)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("type", string(msgType)),
			slog.String("error", err.Error()))
		return
	}
	select {
	case client.send <- payload:
	default:
		h.logger.Warn("Client send buffer full, message dropped",
			slog.String("client_id", client.id),
			slog.String("type", string(msgType)))
	}
}

func encode(msgType events.MessageType, data any, traceID string) ([]byte, error) {
	msg := events.NewMessage(uuid.NewString(), msgType, data)
	msg.TraceID = traceID
	return json.Marshal(msg)
}

// Broadcast sends an event to every connected client. It never blocks on slow
// clients and is a no-op while the hub is stopped.
func (h *Hub) Broadcast(messageType string, data any) {
	if !h.isRunning() {
		h.logger.Debug("Hub not running, event discarded", slog.String("type", messageType))
		return
	}
	payload, err := encode(events.MessageType(messageType), data, "")
	if err != nil {
		h.logger.Error("Error marshaling broadcast",
			slog.String("type", messageType),
			slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- outbound{messageType: messageType, payload: payload}:
	case <-h.quit:
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

func (h *Hub) receive(client *Client, msg events.BaseMessage) {
	select {
	case h.inbound <- inbound{client: client, message: msg}:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Stats returns the hub counters
func (h *Hub) Stats() HubStats {
	return HubStats{
		ActiveClients:    h.ClientCount(),
		TotalConnections: h.totalConnections.Load(),
		MessagesSent:     h.messagesSent.Load(),
		DroppedClients:   h.droppedClients.Load(),
	}
}
