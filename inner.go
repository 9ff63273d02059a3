package imageloader

import "github.com/Skryldev/image-loader/core"

// Inner exposes the underlying core.Loader for advanced use (e.g., direct
// registry or source access in tests).  Prefer the high-level API for normal
// usage.
func (l *Loader) Inner() *core.Loader { return l.inner }
