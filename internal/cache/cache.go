// Package cache stores compile outcomes on disk keyed by source digest, so
// unchanged shaders are not recompiled by batch checks.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"shadertune/internal/diag"
)

// schemaVersion is bumped whenever Entry changes shape.
const schemaVersion uint16 = 1

// Key identifies one compile: backend plus exact source text.
type Key [sha256.Size]byte

// KeyFor hashes backend and source.
func KeyFor(backend, source string) Key {
	h := sha256.New()
	h.Write([]byte(backend))
	h.Write([]byte{0})
	h.Write([]byte(source))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Entry is a cached compile outcome. Code is set only for successful
// compiles, Diagnostics only for failed ones.
type Entry struct {
	Schema      uint16
	Backend     string
	Diagnostics diag.List
	Code        []byte
	Elapsed     time.Duration
}

// OK reports whether the cached compile succeeded.
func (e *Entry) OK() bool { return len(e.Diagnostics) == 0 }

// DiskCache is a directory of msgpack files. A nil *DiskCache is a valid,
// always-missing cache. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open uses dir, or $XDG_CACHE_HOME/shadertune (falling back to
// ~/.cache/shadertune) when dir is empty.
func Open(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "shadertune")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Key) string {
	return filepath.Join(c.dir, "outcomes", key.String()+".mp")
}

// Put writes e under key via a temporary file and rename.
func (c *DiskCache) Put(key Key, e *Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	payload := *e
	payload.Schema = schemaVersion
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads the entry for key. Entries written by another schema version
// count as missing.
func (c *DiskCache) Get(key Key) (*Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 -- path is derived from the cache dir and a hex digest
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()
	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, err
	}
	if e.Schema != schemaVersion {
		return nil, false, nil
	}
	return &e, true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
