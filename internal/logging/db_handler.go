package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

const (
	flushSize     = 50
	flushInterval = 5 * time.Second
)

// DBHandler is an slog.Handler that batches ERROR+ records into system_logs.
type DBHandler struct {
	sink  *dbSink
	attrs []slog.Attr
}

type dbSink struct {
	db       *gorm.DB
	fallback slog.Handler

	mu     sync.Mutex
	buffer []models.SystemLog

	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewDBHandler starts the flush loop. Flush failures are reported through
// fallback, never through the default logger, which may include this handler.
func NewDBHandler(db *gorm.DB, fallback slog.Handler) *DBHandler {
	s := &dbSink{
		db:       db,
		fallback: fallback,
		buffer:   make([]models.SystemLog, 0, flushSize),
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go s.loop()
	return &DBHandler{sink: s}
}

func (s *dbSink) loop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *dbSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, flushSize)
	s.mu.Unlock()

	if err := s.db.CreateInBatches(batch, flushSize).Error; err != nil && s.fallback != nil {
		r := slog.NewRecord(time.Now(), slog.LevelWarn, "failed to flush system logs", 0)
		r.AddAttrs(slog.String("error", err.Error()), slog.Int("count", len(batch)))
		_ = s.fallback.Handle(context.Background(), r)
	}
}

// Stop flushes what is buffered and waits for the loop to exit.
func (h *DBHandler) Stop() {
	h.sink.stopOnce.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
	<-h.sink.stopped
}

// Flush writes buffered records now.
func (h *DBHandler) Flush() {
	h.sink.flush()
}

func (h *DBHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *DBHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time.UTC(),
		Level:     record.Level.String(),
		Message:   strings.Clone(record.Message),
	}

	// Buffered entries outlive the request; values such as fiber's c.Path()
	// alias buffers that are reused once the handler returns.
	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "trace_id", "request_id":
			entry.TraceID = strings.Clone(a.Value.String())
		case "user_id":
			s := strings.Clone(a.Value.String())
			entry.UserID = &s
		case "operation":
			entry.Operation = strings.Clone(a.Value.String())
		case "path":
			entry.Path = strings.Clone(a.Value.String())
		case "error":
			entry.Error = strings.Clone(a.Value.String())
		case "latency_ms":
			switch a.Value.Kind() {
			case slog.KindFloat64:
				entry.LatencyMs = int(math.Round(a.Value.Float64()))
			case slog.KindInt64:
				entry.LatencyMs = int(a.Value.Int64())
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	s := h.sink
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	needFlush := len(s.buffer) >= flushSize
	s.mu.Unlock()

	if needFlush {
		go s.flush()
	}
	return nil
}

func (h *DBHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &DBHandler{sink: h.sink, attrs: merged}
}

// WithGroup is a no-op; system_logs columns are flat.
func (h *DBHandler) WithGroup(string) slog.Handler {
	return h
}
