package cache

import (
	"bytes"
	"testing"

	"github.com/Skryldev/image-loader/core"
)

func TestRawData_ByteTransparency(t *testing.T) {
	c := NewRawData(0)
	key := core.RemoteKey("https://example.com/a.png", 1.0)
	payload := []byte{1, 2, 3, 4}

	c.Put(key, payload)
	payload[0] = 99 // caller mutation after Put must not leak in

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit")
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("got %v, want stored copy", got)
	}
}

func TestRawData_ReplacesPriorEntry(t *testing.T) {
	c := NewRawData(0)
	key := core.LocalKey("/tmp/a.png", 1.0)

	c.Put(key, []byte("old"))
	c.Put(key, []byte("new"))

	got, _ := c.Get(key)
	if string(got) != "new" {
		t.Fatalf("got %q, want new", got)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestRawData_FIFOEviction(t *testing.T) {
	c := NewRawData(2)
	a := core.LocalKey("/tmp/a.png", 1.0)
	b := core.LocalKey("/tmp/b.png", 1.0)
	d := core.LocalKey("/tmp/c.png", 1.0)

	c.Put(a, []byte("a"))
	c.Put(b, []byte("b"))
	c.Put(d, []byte("c"))

	if _, ok := c.Get(a); ok {
		t.Fatal("oldest entry must be evicted at the cap")
	}
	if _, ok := c.Get(b); !ok {
		t.Fatal("newer entry must survive")
	}
	if _, ok := c.Get(d); !ok {
		t.Fatal("newest entry must survive")
	}
}

func TestRawData_Remove(t *testing.T) {
	c := NewRawData(0)
	key := core.LocalKey("/tmp/a.png", 1.0)
	c.Put(key, []byte("x"))
	c.Remove(key)
	if _, ok := c.Get(key); ok {
		t.Fatal("entry must be gone after Remove")
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}
