package core

import (
	"context"
	"time"
)

// ByteSource produces the raw bytes for one ImageKey.  Implementations live
// in source/.  Progress may be nil when the caller does not observe chunk
// events; sources that stream must tolerate that.
type ByteSource interface {
	// Fetch retrieves the payload, emitting ChunkEvents on progress as bytes
	// arrive.  The returned Fetched records how many attempts were made.
	Fetch(ctx context.Context, key ImageKey, opts LoadOptions, progress func(ChunkEvent)) (Fetched, error)
}

// Decoder turns raw bytes into a Codec.  Implementations live in
// adapters/decoder/.
type Decoder interface {
	Decode(ctx context.Context, data []byte, hint SizeHint) (*Codec, error)
	// CanDecode reports whether this decoder handles the given format hint.
	CanDecode(format Format) bool
}

// DecodeFunc is the decode entry point handed to interceptors.
type DecodeFunc func(ctx context.Context, data []byte, hint SizeHint) (*Codec, error)

// Interceptor inspects or transforms raw bytes immediately before decode.
// When present it is the last authority on decode behavior: it may rewrite
// the bytes, call decode with different input, or substitute a different
// decode strategy entirely.
type Interceptor interface {
	Intercept(ctx context.Context, data []byte, hint SizeHint, decode DecodeFunc) (*Codec, error)
}

// Transport performs one network fetch.  onProgress receives cumulative and
// total byte counts as the body arrives (total -1 when unknown); it may be
// nil.  A non-2xx status is not an error at this layer — classification
// belongs to the network source.
type Transport interface {
	Fetch(ctx context.Context, url string, headers map[string]string, onProgress func(loaded, total int64)) (status int, body []byte, err error)
}

// EvictionCache is the external cache collaborator.  The loader only ever
// asks it to drop a key (a local source that read an empty file does this so
// a later load can retry).  The collaborator is also trusted to dispatch at
// most one in-flight load per distinct key; this module relies on that
// contract but does not enforce it.
type EvictionCache interface {
	Evict(key ImageKey)
}

// RawDataCache retains fetched payloads for later synchronous access.
// Implementations must be byte-transparent: Get returns exactly the slice
// contents previously passed to Put for an equal key, and must serialize
// writes per key.
type RawDataCache interface {
	Put(key ImageKey, data []byte)
	Get(key ImageKey) ([]byte, bool)
	Remove(key ImageKey)
}

// MetricsCollector receives observations from the loader.
type MetricsCollector interface {
	RecordLoadTime(origin OriginKind, d time.Duration)
	RecordBytesFetched(n int64)
	RecordAttempts(n int)
	RecordError(kind string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Hook is an optional observer invoked around loads.
type Hook interface {
	BeforeLoad(ctx context.Context, key ImageKey)
	Progress(ctx context.Context, key ImageKey, ev ChunkEvent)
	AfterLoad(ctx context.Context, key ImageKey, res *Result, d time.Duration, err error)
}

// Registry maps Format values to Decoder implementations.
type Registry interface {
	DecoderFor(format Format) (Decoder, bool)
	RegisterDecoder(format Format, d Decoder)
}
