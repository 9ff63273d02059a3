package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/Skryldev/image-loader/core"
)

// Disk is a filesystem-backed core.RawDataCache for reusing fetched payloads
// across processes.  Entries are stored under rootDir, one subdirectory per
// cache scope, with blake3-derived filenames (key origins are URLs and paths,
// not safe filename material).
//
// Put and Remove are best-effort: I/O failures are reported to the logger
// and otherwise dropped, matching the cache contract that a failed commit is
// indistinguishable from an eviction.
type Disk struct {
	rootDir     string
	permissions os.FileMode
	logger      core.Logger
}

// NewDisk creates a disk store rooted at dir.  logger may be nil.
func NewDisk(dir string, perm os.FileMode, logger core.Logger) (*Disk, error) {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("disk cache: mkdir %s: %w", dir, err)
	}
	return &Disk{rootDir: dir, permissions: perm, logger: logger}, nil
}

func (d *Disk) absPath(key core.ImageKey) string {
	scope := key.CacheScope
	if scope == "" {
		scope = "default"
	}
	id := key.Identity()
	sum := blake3.Sum256([]byte(flightKey(id)))
	return filepath.Join(d.rootDir, filepath.Clean(scope), hex.EncodeToString(sum[:])+".raw")
}

func (d *Disk) Put(key core.ImageKey, data []byte) {
	path := d.absPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		d.logError("disk.put.mkdir", key, err)
		return
	}
	// Write-then-rename so readers never observe a partial payload.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, d.permissions); err != nil {
		d.logError("disk.put.write", key, err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		d.logError("disk.put.rename", key, err)
	}
}

func (d *Disk) Get(key core.ImageKey) ([]byte, bool) {
	data, err := os.ReadFile(d.absPath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (d *Disk) Remove(key core.ImageKey) {
	if err := os.Remove(d.absPath(key)); err != nil && !os.IsNotExist(err) {
		d.logError("disk.remove", key, err)
	}
}

// Exists reports whether a payload is stored for key.
func (d *Disk) Exists(key core.ImageKey) bool {
	_, err := os.Stat(d.absPath(key))
	return err == nil
}

func (d *Disk) logError(op string, key core.ImageKey, err error) {
	if d.logger == nil {
		return
	}
	d.logger.Warn("rawcache.disk.error", "op", op, "origin", key.Origin(), "error", err.Error())
}
