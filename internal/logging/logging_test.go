package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/testutil"
)

func TestDBHandlerPersistsErrors(t *testing.T) {
	db := testutil.NewDB(t)
	var out bytes.Buffer
	stdout := slog.NewJSONHandler(&out, nil)
	dbLogs := logging.NewDBHandler(db, stdout)
	logger := slog.New(logging.NewMultiHandler(stdout, dbLogs)).With("operation", "create_deck")

	logger.Info("deck created")
	logger.Error("request failed",
		"trace_id", "req-1",
		"user_id", "user-1",
		"path", "/api/decks",
		"error", errors.New("boom"),
		"latency_ms", 12,
		"deck_title", "Spanish",
	)
	dbLogs.Stop()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "req-1", entry.TraceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-1", *entry.UserID)
	assert.Equal(t, "create_deck", entry.Operation)
	assert.Equal(t, "/api/decks", entry.Path)
	assert.Equal(t, "boom", entry.Error)
	assert.Equal(t, 12, entry.LatencyMs)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "Spanish", extra["deck_title"])

	// Both records reached stdout.
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("\n")))
}

func TestDBHandlerCopiesBufferedStrings(t *testing.T) {
	db := testutil.NewDB(t)
	dbLogs := logging.NewDBHandler(db, nil)
	t.Cleanup(dbLogs.Stop)

	// Mirrors fiber's zero-allocation accessors: the string aliases a reused buffer.
	buf := []byte("/api/decks")
	path := unsafe.String(&buf[0], len(buf))
	slog.New(dbLogs).Error("request failed", "path", path, "operation", "list_decks")
	copy(buf, "/api/cards")
	dbLogs.Flush()

	var entry models.SystemLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "/api/decks", entry.Path)
}

func TestPurgeOlderThan(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{ID: uuid.New(), Timestamp: now.Add(-40 * 24 * time.Hour), Level: "ERROR"},
		{ID: uuid.New(), Timestamp: now.Add(-time.Hour), Level: "ERROR"},
	}).Error)

	deleted := logging.PurgeOlderThan(context.Background(), db, now.Add(-30*24*time.Hour))
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestRunCleanupStopsOnCancel(t *testing.T) {
	db := testutil.NewDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- logging.RunCleanup(ctx, db, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not stop")
	}
}
