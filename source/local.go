// Package source provides the ByteSource implementations: whole-file local
// reads and retrying network fetches.
package source

import (
	"context"
	"os"

	"github.com/Skryldev/image-loader/core"
	apperrors "github.com/Skryldev/image-loader/errors"
)

// Local reads an already-resolved file path in one shot.  Local reads are not
// modeled as streamed: no chunk progress, no retries.
type Local struct {
	evictor core.EvictionCache
}

// NewLocal creates a local byte source.  evictor may be nil; when present it
// is told to drop the key for an empty file so a later load can retry once
// the file has content.
func NewLocal(evictor core.EvictionCache) *Local {
	return &Local{evictor: evictor}
}

func (l *Local) Fetch(ctx context.Context, key core.ImageKey, _ core.LoadOptions, _ func(core.ChunkEvent)) (core.Fetched, error) {
	if err := ctx.Err(); err != nil {
		return core.Fetched{}, apperrors.New(apperrors.KindCancelled, "local.read", err).WithOrigin(key.Path)
	}

	data, err := os.ReadFile(key.Path)
	if err != nil {
		return core.Fetched{}, apperrors.New(apperrors.KindSourceUnavailable, "local.read", err).WithOrigin(key.Path)
	}

	if len(data) == 0 {
		// The file may become valid on a later load; evicting the key keeps
		// the external cache from pinning this attempt's failure.
		if l.evictor != nil {
			l.evictor.Evict(key)
		}
		return core.Fetched{}, apperrors.New(apperrors.KindEmptySource, "local.read", apperrors.ErrEmptyPayload).
			WithOrigin(key.Path).WithAttempts(1)
	}

	return core.Fetched{Data: data, Attempts: 1}, nil
}
