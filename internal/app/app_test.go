package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalinsights/internal/config"
	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/infrastructure"
	"globalinsights/internal/shared/testutil"
	"globalinsights/pkg/contracts/events"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	testutil.WriteCountryFixtures(t, filepath.Join(base, config.DefaultDataDir))

	cfg := config.Default()
	cfg.Data.BaseDir = base
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.OTel.EnableMetrics = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, providers *infrastructure.OTelProviders) *Application {
	t.Helper()
	a, err := NewApplication(cfg, quietLogger(), providers)
	require.NoError(t, err)
	return a
}

// quietLogger captures records without echoing them through t, since the hub and
// client goroutines can outlive a test
func quietLogger() *slog.Logger {
	return slog.New(testutil.NewBufferedSlogHandler(nil))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	_, err := NewApplication(nil, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNewApplication_CreatesOutputDirectories(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg, nil)

	assert.DirExists(t, a.Paths.ProcessedDir)
	assert.DirExists(t, a.Paths.ExportDir)
	assert.Equal(t, filepath.Join(cfg.Data.BaseDir, config.DefaultDataDir), a.Paths.DataDir)
	assert.NotNil(t, a.Services.Datasets)
	assert.NotNil(t, a.Services.Exports)
	assert.NotNil(t, a.Services.Health)
}

func TestRouter_BeforeAndAfterLoad(t *testing.T) {
	a := newTestApp(t, testConfig(t), nil)

	rec := get(t, a.Router, "/api/dataset")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"DATASET_NOT_LOADED"`)

	rec = get(t, a.Router, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, a.Router, "/api/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := a.Services.Datasets.Reload(context.Background())
	require.NoError(t, err)

	rec = get(t, a.Router, "/api/countries")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string   `json:"status"`
		Data   []string `json:"data"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Contains(t, body.Data, "France")
	assert.Equal(t, len(body.Data), body.Count)

	rec = get(t, a.Router, "/api/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MiddlewareStack(t *testing.T) {
	a := newTestApp(t, testConfig(t), nil)

	rec := get(t, a.Router, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = get(t, a.Router, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Prometheus is not mounted while metrics are disabled
	rec = get(t, a.Router, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_PrometheusEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.OTel.EnableMetrics = true
	logger := quietLogger()

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromSettings(cfg), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	a, err := NewApplication(cfg, logger, providers)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, get(t, a.Router, "/api/health").Code)

	rec := get(t, a.Router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests")
}

func TestApplication_StartServeStop(t *testing.T) {
	a := newTestApp(t, testConfig(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx, cancel))

	waitCtx, waitCancel := context.WithTimeout(ctx, 10*time.Second)
	defer waitCancel()
	require.NoError(t, a.WaitForDataset(waitCtx))

	base := "http://" + a.Addr()
	resp, err := http.Get(base + "/api/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+a.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	assert.Equal(t, events.MessageTypeConnect, msg.Type)

	resp, err = http.Post(base+"/api/exports/csv", "application/json", strings.NewReader(`{"file_name":"app_test"}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.FileExists(t, filepath.Join(a.Paths.ExportDir, "app_test.csv"))

	msg = readMessage(t, conn)
	assert.Equal(t, events.MessageTypeExportCompleted, msg.Type)

	require.NoError(t, a.Stop(context.Background()))

	_, err = http.Get(base + "/api/health")
	assert.Error(t, err)
}

func readMessage(t *testing.T, conn *websocket.Conn) events.BaseMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg events.BaseMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}
