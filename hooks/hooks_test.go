package hooks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Skryldev/image-loader/core"
)

// recordingLogger captures calls for assertions.
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingLogger) record(msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recordingLogger) Debug(msg string, _ ...interface{}) { r.record(msg) }
func (r *recordingLogger) Info(msg string, _ ...interface{})  { r.record(msg) }
func (r *recordingLogger) Warn(msg string, _ ...interface{})  { r.record(msg) }
func (r *recordingLogger) Error(msg string, _ ...interface{}) { r.record(msg) }

func (r *recordingLogger) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func TestLoggingHook_Lifecycle(t *testing.T) {
	logger := &recordingLogger{}
	hook := NewLoggingHook(logger)
	key := core.RemoteKey("https://example.com/a.png", 1.0)
	ctx := context.Background()

	hook.BeforeLoad(ctx, key)
	hook.Progress(ctx, key, core.ChunkEvent{BytesLoaded: 512, TotalBytes: 2048})
	hook.Progress(ctx, key, core.ChunkEvent{BytesLoaded: 2048, TotalBytes: -1})
	res := &core.Result{Key: key, Codec: &core.Codec{Format: core.FormatPNG}, Attempts: 2}
	hook.AfterLoad(ctx, key, res, 40*time.Millisecond, nil)

	want := []string{"load.start", "load.progress", "load.progress", "load.done"}
	got := logger.messages()
	if len(got) != len(want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("messages = %v, want %v", got, want)
		}
	}
}

func TestLoggingHook_Error(t *testing.T) {
	logger := &recordingLogger{}
	hook := NewLoggingHook(logger)
	key := core.LocalKey("/tmp/a.png", 1.0)

	hook.AfterLoad(context.Background(), key, nil, time.Millisecond, errors.New("boom"))
	got := logger.messages()
	if len(got) != 1 || got[0] != "load.error" {
		t.Fatalf("messages = %v, want [load.error]", got)
	}
}

func TestInMemoryMetrics_Snapshot(t *testing.T) {
	m := NewInMemoryMetrics()
	m.RecordLoadTime(core.OriginRemote, 30*time.Millisecond)
	m.RecordLoadTime(core.OriginRemote, 20*time.Millisecond)
	m.RecordLoadTime(core.OriginLocal, 5*time.Millisecond)
	m.RecordBytesFetched(1024)
	m.RecordBytesFetched(2048)
	m.RecordAttempts(3)
	m.RecordError("network_status")

	snap := m.Snapshot()
	if snap.LoadCalls[core.OriginRemote] != 2 || snap.LoadCalls[core.OriginLocal] != 1 {
		t.Fatalf("load calls: %+v", snap.LoadCalls)
	}
	if snap.LoadDurationsMs[core.OriginRemote] != 50 {
		t.Fatalf("remote duration = %d, want 50", snap.LoadDurationsMs[core.OriginRemote])
	}
	if snap.TotalBytesFetched != 3072 {
		t.Fatalf("bytes = %d, want 3072", snap.TotalBytesFetched)
	}
	if snap.TotalAttempts != 3 {
		t.Fatalf("attempts = %d, want 3", snap.TotalAttempts)
	}
	if snap.ErrorsByKind["network_status"] != 1 {
		t.Fatalf("errors: %+v", snap.ErrorsByKind)
	}

	// Snapshot is a copy; later recordings must not leak in.
	m.RecordError("timeout")
	if _, ok := snap.ErrorsByKind["timeout"]; ok {
		t.Fatal("snapshot must be immutable")
	}
}
