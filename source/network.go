package source

import (
	"context"
	"net/url"
	"time"

	"github.com/Skryldev/image-loader/core"
	apperrors "github.com/Skryldev/image-loader/errors"
	"github.com/Skryldev/image-loader/transport"
)

// Network fetches URLs with retry, cumulative time budget, and cooperative
// cancellation.  The transport is injected at construction; there is no
// process-wide override point.
type Network struct {
	transport core.Transport
	base      *url.URL
}

// NetworkOption configures a Network source.
type NetworkOption func(*Network)

// WithTransport replaces the default net/http transport.
func WithTransport(t core.Transport) NetworkOption {
	return func(n *Network) { n.transport = t }
}

// WithBaseURL sets the base against which relative key URLs are resolved.
func WithBaseURL(base *url.URL) NetworkOption {
	return func(n *Network) { n.base = base }
}

// NewNetwork creates a network byte source backed by transport.NewHTTP(nil)
// unless overridden.
func NewNetwork(opts ...NetworkOption) *Network {
	n := &Network{transport: transport.NewHTTP(nil)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// statusAccepted classifies an HTTP status code.  Accepted: the 2xx band,
// 0 (file-scheme access), 304 (not modified), and 308-399 (redirect range
// the transport handled or the caller interprets upstream).
func statusAccepted(status int) bool {
	switch {
	case status >= 200 && status < 300:
		return true
	case status == 0:
		return true
	case status == 304:
		return true
	case status > 307 && status < 400:
		return true
	}
	return false
}

// Fetch runs the attempt loop: up to opts.Retries additional attempts after
// the first, opts.RetryDelay apart, all under one wall-clock budget of
// opts.TimeLimit.  Caller cancellation is checked before every send and
// during every wait; it always wins over the retry budget.
func (n *Network) Fetch(ctx context.Context, key core.ImageKey, opts core.LoadOptions, progress func(core.ChunkEvent)) (core.Fetched, error) {
	uri, err := n.resolve(key.URL)
	if err != nil {
		return core.Fetched{}, apperrors.New(apperrors.KindTransport, "network.resolve", err).WithOrigin(key.URL)
	}

	headers := mergeHeaders(key.Headers, opts.Headers)

	fetchCtx := ctx
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	// Progress must be non-decreasing for the whole request even across a
	// retried attempt, so emissions are clamped to a high-water mark.
	var highWater int64
	onProgress := func(loaded, total int64) {
		if progress == nil || loaded < highWater {
			return
		}
		highWater = loaded
		progress(core.ChunkEvent{BytesLoaded: loaded, TotalBytes: total})
	}

	attempts := 0
	var lastErr *apperrors.LoadError
	for {
		if err := fetchCtx.Err(); err != nil {
			return core.Fetched{}, n.terminal(ctx, uri, attempts, lastErr)
		}

		attempts++
		status, body, err := n.transport.Fetch(fetchCtx, uri, headers, onProgress)
		switch {
		case err != nil && fetchCtx.Err() != nil:
			return core.Fetched{}, n.terminal(ctx, uri, attempts, lastErr)
		case err != nil:
			lastErr = apperrors.Transient(apperrors.KindTransport, "network.fetch", err)
		case !statusAccepted(status):
			lastErr = apperrors.Transient(apperrors.KindNetworkStatus, "network.fetch",
				&apperrors.StatusError{Code: status, URI: uri})
		case len(body) == 0:
			// Content-level emptiness is not transient; no retry.
			return core.Fetched{}, apperrors.New(apperrors.KindEmptySource, "network.fetch", apperrors.ErrEmptyPayload).
				WithOrigin(uri).WithAttempts(attempts)
		default:
			return core.Fetched{Data: body, Attempts: attempts}, nil
		}

		if attempts > opts.Retries {
			return core.Fetched{}, lastErr.WithOrigin(uri).WithAttempts(attempts)
		}

		select {
		case <-fetchCtx.Done():
			return core.Fetched{}, n.terminal(ctx, uri, attempts, lastErr)
		case <-time.After(opts.RetryDelay):
		}
	}
}

// terminal classifies an interrupted attempt chain: caller cancellation
// always reports as Cancelled; otherwise the cumulative budget expired and
// the outcome is Timeout carrying whatever error was seen last.
func (n *Network) terminal(ctx context.Context, uri string, attempts int, lastErr *apperrors.LoadError) error {
	if err := ctx.Err(); err != nil {
		return apperrors.New(apperrors.KindCancelled, "network.fetch", apperrors.ErrLoadCancelled).
			WithOrigin(uri).WithAttempts(attempts)
	}
	cause := error(apperrors.ErrTimeBudgetSpent)
	if lastErr != nil {
		cause = lastErr
	}
	return apperrors.New(apperrors.KindTimeout, "network.fetch", cause).
		WithOrigin(uri).WithAttempts(attempts)
}

func (n *Network) resolve(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if n.base != nil {
		u = n.base.ResolveReference(u)
	}
	return u.String(), nil
}

func mergeHeaders(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(extra))
	for name, v := range base {
		merged[name] = v
	}
	for name, v := range extra {
		merged[name] = v
	}
	return merged
}
