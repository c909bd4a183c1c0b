// Package events contains the event contracts pushed to dashboard clients over WebSocket.
package events

import (
	"time"
)

// Protocol version
const (
	ProtocolVersion = "1.0"
	ProtocolName    = "gie-websocket-protocol"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle
	MessageTypeDatasetReloaded MessageType = "dataset.reloaded"
	MessageTypeExportCompleted MessageType = "export.completed"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
	MessageTypePing       MessageType = "ping"
	MessageTypePong       MessageType = "pong"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`       // Unique message ID
	Type      MessageType `json:"type"`               // Message type
	Timestamp time.Time   `json:"timestamp"`          // Message timestamp
	TraceID   string      `json:"trace_id,omitempty"` // Request trace ID
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data any `json:"data,omitempty"` // Message payload
}

// DatasetReloaded is sent after a reload swapped the served dataset
type DatasetReloaded struct {
	Rows        int           `json:"rows"`
	Columns     int           `json:"columns"`
	Countries   int           `json:"countries"`
	Fingerprint string        `json:"fingerprint"`
	Changed     bool          `json:"changed"`
	Duration    time.Duration `json:"duration_ns"`
}

// ExportCompleted is sent after an export file was written
type ExportCompleted struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

// ErrorData is the payload of an error message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// Protocol error codes
const (
	ErrCodeInvalidFrame    = "INVALID_FRAME"
	ErrCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrCodeServerError     = "SERVER_ERROR"
)

// NewMessage builds a message of the given type stamped with the current time
func NewMessage(id string, msgType MessageType, data any) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        id,
			Type:      msgType,
			Timestamp: time.Now().UTC(),
		},
		Data: data,
	}
}
