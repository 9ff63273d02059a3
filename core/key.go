package core

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/blake3"
)

// OriginKind is the closed set of ImageKey variants.
type OriginKind string

const (
	OriginLocal  OriginKind = "local"
	OriginRemote OriginKind = "remote"
)

// ImageKey identifies one image load for caching and deduplication.  It is a
// value type: constructing one performs no I/O, and the With* setters return
// modified copies rather than mutating the receiver.
//
// CacheKey participates in the identity of a local key but not of a remote
// one; Headers never do.  For the remote variant, headers and cache key are
// load parameters — two remote keys naming the same URL, scale, and cache
// scope are the same image even when fetched with different headers.
type ImageKey struct {
	Kind       OriginKind
	Path       string // set when Kind == OriginLocal
	URL        string // set when Kind == OriginRemote
	Scale      float64
	CacheKey   string
	CacheScope string

	// Headers are sent with the fetch for remote keys.  Not identity.
	Headers map[string]string
}

// LocalKey creates a key for an already-resolved file path.
func LocalKey(path string, scale float64) ImageKey {
	return ImageKey{Kind: OriginLocal, Path: path, Scale: scale}
}

// RemoteKey creates a key for a URL.
func RemoteKey(url string, scale float64) ImageKey {
	return ImageKey{Kind: OriginRemote, URL: url, Scale: scale}
}

// WithCacheKey returns a copy of k with the cache key set.
func (k ImageKey) WithCacheKey(ck string) ImageKey {
	k.CacheKey = ck
	return k
}

// WithCacheScope returns a copy of k with the cache scope name set.
func (k ImageKey) WithCacheScope(scope string) ImageKey {
	k.CacheScope = scope
	return k
}

// WithHeaders returns a copy of k carrying its own copy of h.
func (k ImageKey) WithHeaders(h map[string]string) ImageKey {
	if len(h) == 0 {
		k.Headers = nil
		return k
	}
	cp := make(map[string]string, len(h))
	for name, v := range h {
		cp[name] = v
	}
	k.Headers = cp
	return k
}

// Origin returns the path or URL the key names.
func (k ImageKey) Origin() string {
	if k.Kind == OriginLocal {
		return k.Path
	}
	return k.URL
}

// KeyIdentity is the comparable projection of an ImageKey: exactly the fields
// that participate in equality.  Caches use it as a map key.
type KeyIdentity struct {
	Kind     OriginKind
	Origin   string
	Scale    float64
	Scope    string
	CacheKey string // empty for remote keys regardless of ImageKey.CacheKey
}

// Identity returns the comparable projection of k.
func (k ImageKey) Identity() KeyIdentity {
	id := KeyIdentity{Kind: k.Kind, Origin: k.Origin(), Scale: k.Scale, Scope: k.CacheScope}
	if k.Kind == OriginLocal {
		id.CacheKey = k.CacheKey
	}
	return id
}

// Equal reports whether a and b name the same image for caching purposes.
func (k ImageKey) Equal(other ImageKey) bool {
	return k.Identity() == other.Identity()
}

// Hash returns a 64-bit hash consistent with Equal.
func (k ImageKey) Hash() uint64 {
	id := k.Identity()
	h := blake3.New()
	writeField(h, string(id.Kind))
	writeField(h, id.Origin)
	var scale [8]byte
	binary.BigEndian.PutUint64(scale[:], math.Float64bits(id.Scale))
	h.Write(scale[:])
	writeField(h, id.Scope)
	writeField(h, id.CacheKey)
	var sum [8]byte
	h.Digest().Read(sum[:])
	return binary.BigEndian.Uint64(sum[:])
}

// writeField writes s length-prefixed so adjacent fields cannot collide.
func writeField(h *blake3.Hasher, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}
