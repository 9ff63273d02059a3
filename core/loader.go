package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skryldev/image-loader/config"
	apperrors "github.com/Skryldev/image-loader/errors"
	"github.com/Skryldev/image-loader/utils"
)

// CodecCache is the external cache collaborator the loader can route loads
// through.  GetOrLoad must dispatch at most one in-flight load per distinct
// key (by ImageKey identity); the loader relies on that contract but does
// not enforce it.
type CodecCache interface {
	GetOrLoad(ctx context.Context, key ImageKey, load func(ctx context.Context) (*Result, error)) (*Result, error)
	Evict(key ImageKey)
}

// Loader is the central orchestrator: it selects the byte source for a key,
// runs the fetch, passes the payload through the interceptor (when present)
// into the decoder, and commits raw bytes to the RawDataCache on request.
// Safe for concurrent use.
type Loader struct {
	cfg      config.Config
	registry Registry

	sources     map[OriginKind]ByteSource
	interceptor Interceptor
	rawCache    RawDataCache
	codecCache  CodecCache

	hooks   []Hook
	logger  Logger
	metrics MetricsCollector

	// Prefetch worker pool.
	jobQueue chan Job
	wg       sync.WaitGroup
	once     sync.Once
	shutdown chan struct{}

	// Atomic counters for lightweight internal metrics.
	loadedCount int64
	errorCount  int64
}

// New creates a Loader with the given config.  Byte sources are attached
// with SetSource; call Start() before submitting prefetch jobs and Stop()
// when done.
func New(cfg config.Config, reg Registry) *Loader {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Loader{
		cfg:      cfg,
		registry: reg,
		sources:  make(map[OriginKind]ByteSource),
		jobQueue: make(chan Job, queueSize),
		shutdown: make(chan struct{}),
	}
}

// SetSource attaches the ByteSource for an origin kind.
func (l *Loader) SetSource(kind OriginKind, src ByteSource) { l.sources[kind] = src }

// SetInterceptor attaches the optional decode interceptor.
func (l *Loader) SetInterceptor(ic Interceptor) { l.interceptor = ic }

// SetRawDataCache attaches the raw-byte store used when a load requests
// CacheRawData.
func (l *Loader) SetRawDataCache(c RawDataCache) { l.rawCache = c }

// SetCodecCache routes loads through the external cache collaborator.
func (l *Loader) SetCodecCache(c CodecCache) { l.codecCache = c }

// SetLogger attaches a structured logger.
func (l *Loader) SetLogger(lg Logger) { l.logger = lg }

// SetMetrics attaches a metrics collector.
func (l *Loader) SetMetrics(m MetricsCollector) { l.metrics = m }

// AddHook registers a load observer.
func (l *Loader) AddHook(h Hook) { l.hooks = append(l.hooks, h) }

// Registry returns the decoder registry so callers can register decoders
// after construction.
func (l *Loader) Registry() Registry { return l.registry }

// Load returns the lazy handle for one load request.  Nothing runs until the
// handle is consumed.  When a codec cache is attached the load is routed
// through it, so concurrent requests for equal keys resolve to one fetch.
func (l *Loader) Load(ctx context.Context, key ImageKey, opts LoadOptions) *Pending {
	opts = l.withDefaults(opts)
	run := func(ctx context.Context, emit func(ChunkEvent)) (*Result, error) {
		if l.codecCache != nil {
			return l.codecCache.GetOrLoad(ctx, key, func(ctx context.Context) (*Result, error) {
				return l.load(ctx, key, opts, emit)
			})
		}
		return l.load(ctx, key, opts, emit)
	}
	return newPending(ctx, key, run)
}

// load is one full attempt chain: fetch → intercept → decode → commit.
func (l *Loader) load(ctx context.Context, key ImageKey, opts LoadOptions, emit func(ChunkEvent)) (*Result, error) {
	start := time.Now()
	l.notifyBefore(ctx, key)

	src, ok := l.sources[key.Kind]
	if !ok {
		err := apperrors.New(apperrors.KindConfig, "loader.source",
			fmt.Errorf("no byte source for origin kind %q", key.Kind)).WithOrigin(key.Origin())
		return l.fail(ctx, key, start, err)
	}

	progress := func(ev ChunkEvent) {
		emit(ev)
		if opts.PrintDiagnostics {
			l.notifyProgress(ctx, key, ev)
		}
	}

	fetched, err := src.Fetch(ctx, key, opts, progress)
	if err != nil {
		return l.fail(ctx, key, start, err)
	}

	// rawBytes is what the decoder actually consumed: the fetched payload,
	// or the interceptor's rewrite of it.
	rawBytes := fetched.Data
	recordingDecode := func(ctx context.Context, data []byte, hint SizeHint) (*Codec, error) {
		rawBytes = data
		return l.decodeDefault(ctx, data, hint)
	}

	var codec *Codec
	if l.interceptor != nil {
		codec, err = l.interceptor.Intercept(ctx, fetched.Data, opts.SizeHint, recordingDecode)
	} else {
		codec, err = l.decodeDefault(ctx, fetched.Data, opts.SizeHint)
	}
	if err != nil {
		return l.fail(ctx, key, start, err)
	}

	res := &Result{
		Key:      key,
		Codec:    codec,
		Attempts: fetched.Attempts,
		Elapsed:  time.Since(start),
	}

	// A cancelled attempt must never commit to the raw cache.
	if opts.CacheRawData && l.rawCache != nil && ctx.Err() == nil {
		l.rawCache.Put(key, rawBytes)
		res.RawData = rawBytes
	}

	atomic.AddInt64(&l.loadedCount, 1)
	if l.metrics != nil {
		l.metrics.RecordLoadTime(key.Kind, res.Elapsed)
		l.metrics.RecordBytesFetched(int64(len(fetched.Data)))
		l.metrics.RecordAttempts(fetched.Attempts)
	}
	l.notifyAfter(ctx, key, res, res.Elapsed, nil)
	return res, nil
}

// decodeDefault is the DecodeFunc handed to interceptors: sniff the format,
// pick a registered decoder, fall back to the FormatUnknown decoder.
func (l *Loader) decodeDefault(ctx context.Context, data []byte, hint SizeHint) (*Codec, error) {
	format := Format(utils.DetectFormat(data))
	dec, ok := l.registry.DecoderFor(format)
	if !ok {
		dec, ok = l.registry.DecoderFor(FormatUnknown)
	}
	if !ok {
		return nil, apperrors.New(apperrors.KindDecode, "loader.decode", apperrors.ErrNoDecoder)
	}
	codec, err := dec.Decode(ctx, data, hint)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "loader.decode", err)
	}
	return codec, nil
}

func (l *Loader) fail(ctx context.Context, key ImageKey, start time.Time, err error) (*Result, error) {
	atomic.AddInt64(&l.errorCount, 1)
	if l.metrics != nil {
		l.metrics.RecordError(errKind(err))
	}
	l.notifyAfter(ctx, key, nil, time.Since(start), err)
	return nil, err
}

// withDefaults resolves UseConfigDefault fields against the loader config.
// Explicit zeros pass through untouched: a load asking for zero retries
// makes exactly one attempt regardless of the configured default.
func (l *Loader) withDefaults(opts LoadOptions) LoadOptions {
	if opts.Retries < 0 {
		opts.Retries = l.cfg.Retries
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = l.cfg.RetryDelay
	}
	if opts.TimeLimit < 0 {
		opts.TimeLimit = l.cfg.TimeLimit
	}
	return opts
}

// ── prefetch worker pool ──────────────────────────────────────────────────────

// Start launches the prefetch worker pool.  It is idempotent.
func (l *Loader) Start() {
	l.once.Do(func() {
		workerCount := l.cfg.WorkerCount
		if workerCount <= 0 {
			workerCount = runtime.NumCPU()
		}
		for i := 0; i < workerCount; i++ {
			l.wg.Add(1)
			go l.worker()
		}
	})
}

// Stop shuts down all workers.
func (l *Loader) Stop() {
	close(l.shutdown)
	l.wg.Wait()
}

// Submit enqueues an async prefetch.  Returns ErrQueueFull when the queue is
// full.
func (l *Loader) Submit(job Job) error {
	select {
	case l.jobQueue <- job:
		return nil
	default:
		return apperrors.New(apperrors.KindConfig, "loader.submit", apperrors.ErrQueueFull)
	}
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for {
		select {
		case <-l.shutdown:
			return
		case job, ok := <-l.jobQueue:
			if !ok {
				return
			}
			l.processJob(job)
		}
	}
}

func (l *Loader) processJob(job Job) {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := l.Load(ctx, job.Key, job.Options).Wait(ctx)
	if job.ResultCh != nil {
		job.ResultCh <- JobResult{Key: job.Key, Result: res, Err: err}
	}
}

// LoadedCount returns the total number of successful loads.
func (l *Loader) LoadedCount() int64 { return atomic.LoadInt64(&l.loadedCount) }

// ErrorCount returns the total number of failed loads.
func (l *Loader) ErrorCount() int64 { return atomic.LoadInt64(&l.errorCount) }

func (l *Loader) notifyBefore(ctx context.Context, key ImageKey) {
	for _, h := range l.hooks {
		h.BeforeLoad(ctx, key)
	}
}

func (l *Loader) notifyProgress(ctx context.Context, key ImageKey, ev ChunkEvent) {
	for _, h := range l.hooks {
		h.Progress(ctx, key, ev)
	}
}

func (l *Loader) notifyAfter(ctx context.Context, key ImageKey, res *Result, d time.Duration, err error) {
	for _, h := range l.hooks {
		h.AfterLoad(ctx, key, res, d, err)
	}
}

func errKind(err error) string {
	var le *apperrors.LoadError
	if errors.As(err, &le) {
		return string(le.Kind)
	}
	return "unknown"
}
