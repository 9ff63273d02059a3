package cache

import (
	"bytes"
	"testing"

	"github.com/Skryldev/image-loader/core"
)

func newTestDisk(t *testing.T) *Disk {
	t.Helper()
	d, err := NewDisk(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	return d
}

func TestDisk_PutGet(t *testing.T) {
	d := newTestDisk(t)
	key := core.RemoteKey("https://example.com/a.png", 2.0).WithCacheScope("gallery")
	payload := []byte("raw image bytes")

	d.Put(key, payload)

	got, ok := d.Get(key)
	if !ok {
		t.Fatal("expected hit")
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload round-trip mismatch")
	}
	if !d.Exists(key) {
		t.Fatal("Exists must report the stored entry")
	}
}

func TestDisk_IdentityDrivesStorage(t *testing.T) {
	d := newTestDisk(t)
	stored := core.RemoteKey("https://example.com/a.png", 1.0).WithCacheKey("v1")
	equal := core.RemoteKey("https://example.com/a.png", 1.0).WithCacheKey("v2")
	other := core.RemoteKey("https://example.com/a.png", 2.0)

	d.Put(stored, []byte("x"))

	if _, ok := d.Get(equal); !ok {
		t.Fatal("an identity-equal key must find the entry")
	}
	if _, ok := d.Get(other); ok {
		t.Fatal("a different identity must miss")
	}
}

func TestDisk_Remove(t *testing.T) {
	d := newTestDisk(t)
	key := core.LocalKey("/images/a.png", 1.0)
	d.Put(key, []byte("x"))
	d.Remove(key)
	if d.Exists(key) {
		t.Fatal("entry must be gone after Remove")
	}
	// Removing a missing entry is a no-op.
	d.Remove(key)
}
