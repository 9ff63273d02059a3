// Package hooks provides production-ready Hook and Logger implementations.
package hooks

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Skryldev/image-loader/core"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) {
	s.log.Debug(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Info(msg string, fields ...interface{}) {
	s.log.Info(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Warn(msg string, fields ...interface{}) {
	s.log.Warn(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Error(msg string, fields ...interface{}) {
	s.log.Error(msg, toAttrs(fields)...)
}

func toAttrs(fields []interface{}) []any { return fields }

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs the lifecycle of each load.  Progress events are logged
// with humanized byte counts; the loader only forwards them when the load
// asked for diagnostics.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeLoad(_ context.Context, key core.ImageKey) {
	h.logger.Debug("load.start",
		"kind", string(key.Kind),
		"origin", key.Origin(),
		"scale", key.Scale,
	)
}

func (h *LoggingHook) Progress(_ context.Context, key core.ImageKey, ev core.ChunkEvent) {
	total := "unknown"
	if ev.TotalBytes >= 0 {
		total = humanize.Bytes(uint64(ev.TotalBytes))
	}
	h.logger.Debug("load.progress",
		"origin", key.Origin(),
		"loaded", humanize.Bytes(uint64(ev.BytesLoaded)),
		"total", total,
	)
}

func (h *LoggingHook) AfterLoad(_ context.Context, key core.ImageKey, res *core.Result, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("load.error",
			"origin", key.Origin(),
			"duration_ms", d.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	h.logger.Debug("load.done",
		"origin", key.Origin(),
		"duration_ms", d.Milliseconds(),
		"format", string(res.Codec.Format),
		"attempts", res.Attempts,
	)
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates metrics atomically; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	loadDurationsMs map[core.OriginKind]int64 // cumulative ms per origin kind
	loadCalls       map[core.OriginKind]int64
	errorsByKind    map[string]int64

	totalBytesFetched int64
	totalAttempts     int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		loadDurationsMs: make(map[core.OriginKind]int64),
		loadCalls:       make(map[core.OriginKind]int64),
		errorsByKind:    make(map[string]int64),
	}
}

func (m *InMemoryMetrics) RecordLoadTime(origin core.OriginKind, d time.Duration) {
	m.mu.Lock()
	m.loadDurationsMs[origin] += d.Milliseconds()
	m.loadCalls[origin]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordBytesFetched(n int64) {
	atomic.AddInt64(&m.totalBytesFetched, n)
}

func (m *InMemoryMetrics) RecordAttempts(n int) {
	atomic.AddInt64(&m.totalAttempts, int64(n))
}

func (m *InMemoryMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errorsByKind[kind]++
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		LoadDurationsMs:   make(map[core.OriginKind]int64, len(m.loadDurationsMs)),
		LoadCalls:         make(map[core.OriginKind]int64, len(m.loadCalls)),
		ErrorsByKind:      make(map[string]int64, len(m.errorsByKind)),
		TotalBytesFetched: atomic.LoadInt64(&m.totalBytesFetched),
		TotalAttempts:     atomic.LoadInt64(&m.totalAttempts),
	}
	for k, v := range m.loadDurationsMs {
		snap.LoadDurationsMs[k] = v
	}
	for k, v := range m.loadCalls {
		snap.LoadCalls[k] = v
	}
	for k, v := range m.errorsByKind {
		snap.ErrorsByKind[k] = v
	}
	return snap
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	LoadDurationsMs   map[core.OriginKind]int64
	LoadCalls         map[core.OriginKind]int64
	ErrorsByKind      map[string]int64
	TotalBytesFetched int64
	TotalAttempts     int64
}
