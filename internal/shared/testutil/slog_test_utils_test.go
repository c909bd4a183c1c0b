package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("derived loggers share the store and keep attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("component", "loader").Info("loaded", slog.Int("rows", 3))

		records := handler.GetRecords()
		require.Len(t, records, 1)
		assert.Equal(t, "loader", records[0].Attrs["component"])
		assert.Equal(t, int64(3), records[0].Attrs["rows"])
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("msg1")
		logger.Info("msg2")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})
}

func TestWriteCountryFixtures(t *testing.T) {
	dir := WriteCountryFixtures(t, t.TempDir())

	for _, name := range FixtureFiles() {
		assert.FileExists(t, dir+"/"+name)
	}
}
