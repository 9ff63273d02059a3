package core

import (
	"context"
	"time"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatUnknown Format = "unknown"
)

// UseConfigDefault, assigned to Retries, RetryDelay, or TimeLimit, tells the
// loader to substitute that field from its config.Config.  Zero is literal:
// zero retries is one attempt, zero delay retries immediately, zero time
// limit means no budget.
const UseConfigDefault = -1

// LoadOptions controls a single load request.  Options influence byte
// retrieval and decoding but are never part of ImageKey identity.  The zero
// value means: no retries, no time limit, no raw-byte retention.
type LoadOptions struct {
	// Retries is the number of additional network attempts after the first
	// fails; a permanently failing fetch makes Retries+1 attempts total, so
	// an explicit 0 makes exactly one.  Set UseConfigDefault to take the
	// configured default.  Ignored by the local source.
	Retries    int
	RetryDelay time.Duration

	// TimeLimit is a wall-clock budget spanning all attempts combined,
	// including retry delays.  0 means no budget; UseConfigDefault takes the
	// configured one.
	TimeLimit time.Duration

	// Headers are merged over the key's own headers for the fetch.
	Headers map[string]string

	// CacheRawData retains the fetched bytes (post-interception input) in the
	// loader's RawDataCache on success.
	CacheRawData bool

	// PrintDiagnostics enables per-chunk progress logging on the hooks.
	PrintDiagnostics bool

	// SizeHint is passed through to the decoder; zero means decode at
	// intrinsic size.
	SizeHint SizeHint
}

// SizeHint suggests a target decode size to decoders that support it.
type SizeHint struct {
	Width  int
	Height int
}

// IsZero reports whether the hint carries no target size.
func (h SizeHint) IsZero() bool { return h.Width == 0 && h.Height == 0 }

// ChunkEvent reports cumulative fetch progress.  TotalBytes is -1 when the
// transport does not know the payload size.
type ChunkEvent struct {
	BytesLoaded int64
	TotalBytes  int64
}

// Codec is the decoded result of a load.  Image holds the decoder's output;
// its concrete type depends on the decoder backend (image.Image for the
// bundled decoders, a vips image ref for the libvips adapter).
type Codec struct {
	Image  any
	Format Format
	Width  int
	Height int
}

// Result is the terminal outcome of a successful load.
type Result struct {
	Key   ImageKey
	Codec *Codec

	// RawData is the payload handed to the decoder; populated only when the
	// load requested CacheRawData.
	RawData []byte

	Attempts int
	Elapsed  time.Duration
}

// Fetched is what a ByteSource delivers to the decode path.
type Fetched struct {
	Data     []byte
	Attempts int
}

// Job is one queued prefetch unit for the worker pool.
type Job struct {
	Ctx     context.Context //nolint:containedctx // intentional for async jobs
	Key     ImageKey
	Options LoadOptions
	// Result channel; nil for fire-and-forget.
	ResultCh chan<- JobResult
}

// JobResult wraps the outcome of an async prefetch.
type JobResult struct {
	Key    ImageKey
	Result *Result
	Err    error
}
