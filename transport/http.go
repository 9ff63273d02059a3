// Package transport provides the default network Transport used by the
// network byte source.  A different implementation can be injected at source
// construction for testing or for environments with their own HTTP stack.
package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/Skryldev/image-loader/utils"
)

// HTTP fetches URLs over net/http.  Immutable after construction; safe for
// concurrent use.
type HTTP struct {
	client    *http.Client
	chunkSize int
	maxBytes  int64
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithChunkSize sets the body read granularity (and therefore how often
// progress is reported).  Default 32 KiB.
func WithChunkSize(n int) Option {
	return func(h *HTTP) { h.chunkSize = n }
}

// WithMaxBytes caps the payload size; larger bodies fail the fetch.
// 0 means no limit.
func WithMaxBytes(n int64) Option {
	return func(h *HTTP) { h.maxBytes = n }
}

// NewHTTP creates an HTTP transport.  Pass nil to use a default client; the
// client's own timeout should stay zero — cancellation and budgets are
// handled by the caller's context.
func NewHTTP(client *http.Client, opts ...Option) *HTTP {
	if client == nil {
		client = &http.Client{}
	}
	h := &HTTP{client: client, chunkSize: 32 * 1024}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch issues a GET for url and drains the body, reporting cumulative
// progress as chunks arrive.  The status code is returned for any completed
// exchange; classifying it is the caller's job.
func (h *HTTP) Fetch(ctx context.Context, url string, headers map[string]string, onProgress func(loaded, total int64)) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	for name, v := range headers {
		req.Header.Set(name, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if h.maxBytes > 0 {
		r = &utils.LimitedReader{R: resp.Body, Max: h.maxBytes}
	}

	total := resp.ContentLength // -1 when unknown
	buf, err := utils.DrainReader(ctx, r, h.chunkSize, total, onProgress)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	data := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)
	return resp.StatusCode, data, nil
}
