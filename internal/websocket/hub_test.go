package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalinsights/internal/config"
	"globalinsights/internal/shared/testutil"
	"globalinsights/pkg/contracts/events"
)

func testConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingPeriod:      time.Second,
		PongWait:        2 * time.Second,
		SendBuffer:      16,
	}
}

func newTestHub(t *testing.T, cfg config.WebSocketConfig) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(cfg, nil, logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(NewHandler(hub, nil, nil))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) events.WebSocketMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg events.WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_StartStopIdempotent(t *testing.T) {
	hub := NewHub(testConfig(), nil, nil)
	hub.Start()
	hub.Start()
	assert.True(t, hub.isRunning())

	hub.Stop()
	hub.Stop()
	assert.False(t, hub.isRunning())

	// Broadcasting on a stopped hub must not block
	hub.Broadcast(string(events.MessageTypeDatasetReloaded), nil)
}

func TestHub_ConnectAndBroadcast(t *testing.T) {
	hub := newTestHub(t, testConfig())
	conn := dial(t, hub)

	welcome := readMessage(t, conn)
	assert.Equal(t, events.MessageTypeConnect, welcome.Type)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(string(events.MessageTypeDatasetReloaded), events.DatasetReloaded{Rows: 5, Changed: true})

	msg := readMessage(t, conn)
	assert.Equal(t, events.MessageTypeDatasetReloaded, msg.Type)
	assert.NotEmpty(t, msg.ID)
	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 5.0, data["rows"])
	assert.Equal(t, true, data["changed"])

	assert.Eventually(t, func() bool { return hub.Stats().MessagesSent == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_PingAndUnsupportedFrames(t *testing.T) {
	hub := newTestHub(t, testConfig())
	conn := dial(t, hub)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, events.MessageTypePong, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribe"}`)))
	errMsg := readMessage(t, conn)
	assert.Equal(t, events.MessageTypeError, errMsg.Type)
	data := errMsg.Data.(map[string]any)
	assert.Equal(t, events.ErrCodeUnsupportedType, data["code"])
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := newTestHub(t, testConfig())
	conn := dial(t, hub)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), hub.Stats().TotalConnections)
}

func TestHub_DropsSlowClients(t *testing.T) {
	cfg := testConfig()
	cfg.SendBuffer = 1
	hub := newTestHub(t, cfg)

	// No pumps run, so the welcome message fills the buffer
	client := NewClient(hub, nil, "10.0.0.1:1234", "")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(string(events.MessageTypeExportCompleted), events.ExportCompleted{Format: "csv"})

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), hub.Stats().DroppedClients)

	_, open := <-client.send
	assert.True(t, open, "welcome message is still queued")
	_, open = <-client.send
	assert.False(t, open, "send channel closed by the hub")
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(testConfig(), nil, nil)
	hub.Start()

	client := NewClient(hub, nil, "", "")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Stop()
	assert.Equal(t, 0, hub.ClientCount())

	<-client.send
	_, open := <-client.send
	assert.False(t, open)
}

func TestHandler_CheckOrigin(t *testing.T) {
	hub := NewHub(testConfig(), nil, nil)

	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"same host", nil, "http://example.test", true},
		{"allowed origin", []string{"http://localhost:8050"}, "http://localhost:8050", true},
		{"wildcard", []string{"*"}, "http://evil.test", true},
		{"foreign origin", []string{"http://localhost:8050"}, "http://evil.test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(hub, tt.origins, nil)
			r := httptest.NewRequest(http.MethodGet, "http://example.test/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, h.checkOrigin(r))
		})
	}
}

func TestHandler_RejectsPlainHTTP(t *testing.T) {
	hub := newTestHub(t, testConfig())
	rec := httptest.NewRecorder()

	NewHandler(hub, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, hub.ClientCount())
}
