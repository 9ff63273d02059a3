package imageloader

import (
	"context"
	"net/http"

	"github.com/Skryldev/image-loader/adapters/decoder"
	"github.com/Skryldev/image-loader/cache"
	"github.com/Skryldev/image-loader/config"
	"github.com/Skryldev/image-loader/core"
	"github.com/Skryldev/image-loader/source"
	"github.com/Skryldev/image-loader/transport"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Loader is the primary entry point: keys go in, lazily-started loads come
// out.  Equal keys share one codec cache entry and at most one in-flight
// fetch.
type Loader struct {
	cfg    config.Config
	inner  *core.Loader
	reg    *core.DefaultRegistry
	codecs *cache.Memory
	raw    core.RawDataCache
}

// New creates a fully wired Loader: default JPEG, PNG, and WebP decoders
// plus the imaging fallback, an in-memory codec cache with per-key load
// deduplication, an in-memory raw-byte cache, and local + network byte
// sources over the default HTTP transport.  Pass a custom config.Config to
// override defaults.
func New(cfg config.Config) *Loader {
	reg := core.NewRegistry()
	// Register built-in codecs; the imaging decoder doubles as the fallback
	// for formats the sniffer cannot name.
	reg.RegisterDecoder(core.FormatJPEG, decoder.NewJPEG())
	reg.RegisterDecoder(core.FormatPNG, decoder.NewPNG())
	reg.RegisterDecoder(core.FormatWebP, decoder.NewWebP())
	reg.RegisterDecoder(core.FormatUnknown, decoder.NewImaging())

	codecs := cache.NewMemory()
	raw := cache.NewRawData(cfg.RawCache.MaxEntries)

	inner := core.New(cfg, reg)
	inner.SetCodecCache(codecs)
	inner.SetRawDataCache(raw)
	inner.SetSource(core.OriginLocal, source.NewLocal(codecs))
	inner.SetSource(core.OriginRemote, source.NewNetwork(
		source.WithTransport(transport.NewHTTP(nil,
			transport.WithChunkSize(cfg.ChunkSize),
			transport.WithMaxBytes(cfg.MaxPayloadBytes),
		)),
	))

	return &Loader{cfg: cfg, inner: inner, reg: reg, codecs: codecs, raw: raw}
}

// SetLogger attaches a structured logger.
func (l *Loader) SetLogger(lg core.Logger) { l.inner.SetLogger(lg) }

// SetMetrics attaches a metrics collector.
func (l *Loader) SetMetrics(m core.MetricsCollector) { l.inner.SetMetrics(m) }

// AddHook registers an observer for load events.
func (l *Loader) AddHook(h core.Hook) { l.inner.AddHook(h) }

// SetInterceptor installs the decode interceptor applied to every load.
func (l *Loader) SetInterceptor(ic core.Interceptor) { l.inner.SetInterceptor(ic) }

// RegisterDecoder registers a custom decoder for the given format.
func (l *Loader) RegisterDecoder(f core.Format, d core.Decoder) { l.reg.RegisterDecoder(f, d) }

// SetTransport swaps the network transport (test doubles, custom HTTP
// stacks).  Chunking and payload limits live inside the transport, so the
// given implementation is installed verbatim.
func (l *Loader) SetTransport(t core.Transport) {
	l.inner.SetSource(core.OriginRemote, source.NewNetwork(source.WithTransport(t)))
}

// SetHTTPClient rebuilds the network source around the given client, keeping
// the chunk size and payload cap from the loader's config.
func (l *Loader) SetHTTPClient(client *http.Client) {
	l.SetTransport(transport.NewHTTP(client,
		transport.WithChunkSize(l.cfg.ChunkSize),
		transport.WithMaxBytes(l.cfg.MaxPayloadBytes),
	))
}

// UseDiskRawCache backs the raw-byte cache with the filesystem store at dir.
func (l *Loader) UseDiskRawCache(dir string, logger core.Logger) error {
	disk, err := cache.NewDisk(dir, 0, logger)
	if err != nil {
		return err
	}
	l.raw = disk
	l.inner.SetRawDataCache(disk)
	return nil
}

// Start starts the background prefetch workers.
func (l *Loader) Start() { l.inner.Start() }

// Stop shuts down the prefetch workers.
func (l *Loader) Stop() { l.inner.Stop() }

// Load returns the lazy handle for key.  Consume Progress() for chunk events
// and Wait() for the codec.
func (l *Loader) Load(ctx context.Context, key core.ImageKey, opts core.LoadOptions) *core.Pending {
	return l.inner.Load(ctx, key, opts)
}

// Get loads synchronously: start, wait, return the result.
func (l *Loader) Get(ctx context.Context, key core.ImageKey, opts core.LoadOptions) (*core.Result, error) {
	return l.inner.Load(ctx, key, opts).Wait(ctx)
}

// Prefetch enqueues fire-and-forget loads to warm the codec cache.
func (l *Loader) Prefetch(ctx context.Context, keys []core.ImageKey, opts core.LoadOptions) error {
	for _, key := range keys {
		if err := l.inner.Submit(core.Job{Ctx: ctx, Key: key, Options: opts}); err != nil {
			return err
		}
	}
	return nil
}

// Cached returns the cached result for key, if a load already completed.
func (l *Loader) Cached(key core.ImageKey) (*core.Result, bool) { return l.codecs.Get(key) }

// RawData returns the retained payload for key, if a load with CacheRawData
// succeeded.
func (l *Loader) RawData(key core.ImageKey) ([]byte, bool) { return l.raw.Get(key) }

// Evict drops the codec cache entry for key.
func (l *Loader) Evict(key core.ImageKey) { l.codecs.Evict(key) }

// Stats returns lightweight load statistics.
func (l *Loader) Stats() (loaded, errors int64) {
	return l.inner.LoadedCount(), l.inner.ErrorCount()
}

// ── Key constructors ──────────────────────────────────────────────────────────

// LocalKey creates a key for a file path.
func LocalKey(path string, scale float64) core.ImageKey { return core.LocalKey(path, scale) }

// RemoteKey creates a key for a URL.
func RemoteKey(url string, scale float64) core.ImageKey { return core.RemoteKey(url, scale) }
