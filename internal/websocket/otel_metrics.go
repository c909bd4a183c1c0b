package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"globalinsights/internal/infrastructure"
)

const meterName = "globalinsights.websocket"

// OTelMetrics records websocket activity. A nil *OTelMetrics records nothing.
type OTelMetrics struct {
	connectionsTotal   metric.Int64Counter
	connectionDuration metric.Float64Histogram
	messagesSent       metric.Int64Counter
	messageBytes       metric.Int64Counter
	droppedClients     metric.Int64Counter

	// clients mirrors the shared gie_websocket_clients gauge
	clients metric.Int64UpDownCounter
}

// NewOTelMetrics registers the websocket instruments on meter. business supplies the
// shared connected-clients gauge and may be nil.
func NewOTelMetrics(meter metric.Meter, business *infrastructure.BusinessMetrics) (*OTelMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(meterName)
	}
	m := &OTelMetrics{}
	if business != nil {
		m.clients = business.WebSocketClients
	}

	var err error
	if m.connectionsTotal, err = meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("Total number of WebSocket connections"),
	); err != nil {
		return nil, err
	}
	if m.connectionDuration, err = meter.Float64Histogram(
		"websocket_connection_duration_seconds",
		metric.WithDescription("Duration of WebSocket connections"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.messagesSent, err = meter.Int64Counter(
		"websocket_messages_sent_total",
		metric.WithDescription("Total number of WebSocket messages queued for clients"),
	); err != nil {
		return nil, err
	}
	if m.messageBytes, err = meter.Int64Counter(
		"websocket_message_bytes_total",
		metric.WithDescription("Total bytes of WebSocket messages written"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.droppedClients, err = meter.Int64Counter(
		"websocket_dropped_clients_total",
		metric.WithDescription("Clients disconnected because their send buffer was full"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordConnection counts a registered client
func (m *OTelMetrics) RecordConnection(ctx context.Context) {
	if m == nil {
		return
	}
	m.connectionsTotal.Add(ctx, 1)
	if m.clients != nil {
		m.clients.Add(ctx, 1)
	}
}

// RecordDisconnection records how long a client stayed and why it left
func (m *OTelMetrics) RecordDisconnection(ctx context.Context, duration time.Duration, reason string) {
	if m == nil {
		return
	}
	m.connectionDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("reason", reason)))
	if reason == reasonSlowClient {
		m.droppedClients.Add(ctx, 1)
	}
	if m.clients != nil {
		m.clients.Add(ctx, -1)
	}
}

// RecordBroadcast counts the deliveries of one broadcast
func (m *OTelMetrics) RecordBroadcast(ctx context.Context, messageType string, delivered int) {
	if m == nil {
		return
	}
	m.messagesSent.Add(ctx, int64(delivered),
		metric.WithAttributes(attribute.String("type", messageType)))
}

// RecordBytes counts bytes written to one client
func (m *OTelMetrics) RecordBytes(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.messageBytes.Add(ctx, int64(n))
}
