//go:build cgo

// Package vips provides a libvips-backed decoder for deployments that need
// its speed and format coverage.  Importing this package pulls in CGO.
package vips

import (
	"context"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/Skryldev/image-loader/core"
	apperrors "github.com/Skryldev/image-loader/errors"
	"github.com/Skryldev/image-loader/utils"
)

// BackendConfig configures the libvips backend.
type BackendConfig struct {
	MaxCacheSize int
	MaxWorkers   int
	ReportLeaks  bool
}

// Backend is a libvips-powered Decoder.  Safe for concurrent use across
// goroutines.
type Backend struct {
	cfg BackendConfig
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
		CollectStats:     true,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

func (b *Backend) CanDecode(f core.Format) bool {
	switch f {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatUnknown:
		return true
	}
	return false
}

func (b *Backend) Decode(ctx context.Context, data []byte, hint core.SizeHint) (*core.Codec, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "vips.decode", err)
	}

	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "vips.decode", err)
	}
	runtime.SetFinalizer(ref, func(r *govips.ImageRef) { r.Close() })

	if !hint.IsZero() {
		w, h := utils.ScaleDimensions(ref.Width(), ref.Height(), hint.Width, hint.Height)
		if w < ref.Width() || h < ref.Height() {
			if err := ref.Thumbnail(w, h, govips.InterestingNone); err != nil {
				return nil, apperrors.Wrap(apperrors.KindDecode, "vips.thumbnail", err)
			}
		}
	}

	return &core.Codec{
		Image:  ref,
		Format: core.Format(utils.DetectFormat(data)),
		Width:  ref.Width(),
		Height: ref.Height(),
	}, nil
}

// RegisterVipsBackend installs b for every format it can decode, including
// the FormatUnknown fallback slot.
func RegisterVipsBackend(reg core.Registry, b *Backend) {
	for _, f := range []core.Format{core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatUnknown} {
		reg.RegisterDecoder(f, b)
	}
}
