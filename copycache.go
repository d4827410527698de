package copilotdb

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// DefaultCopyTTL is the minimum idle time before a temporary store copy
// becomes eligible for deletion.
const DefaultCopyTTL = 5 * time.Minute

// copyCache hands out reference-counted temporary copies of a store
// directory, so the store can be read while another process holds its
// exclusive lock. Entries are keyed by source path. All check-then-act
// sequences happen under mu: concurrent acquirers of the same source share
// one copy.
type copyCache struct {
	ttl    time.Duration
	root   string // parent for temp dirs; empty means os.TempDir
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*copyEntry
}

type copyEntry struct {
	tempPath   string
	refs       int
	lastAccess time.Time
	timer      *time.Timer
}

func newCopyCache(root string, ttl time.Duration, logger *slog.Logger) *copyCache {
	if ttl <= 0 {
		ttl = DefaultCopyTTL
	}
	return &copyCache{
		ttl:     ttl,
		root:    root,
		logger:  logger,
		entries: make(map[string]*copyEntry),
	}
}

// acquire returns the path of a readable copy of src, creating one if no
// live entry exists. Every acquire must be paired with exactly one release.
func (c *copyCache) acquire(src string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entries[src]; e != nil {
		if _, err := os.Stat(e.tempPath); err == nil {
			if e.refs <= 0 && time.Since(e.lastAccess) >= c.ttl {
				// expired but not yet swept; rebuild rather than reuse
				c.dropLocked(src, e)
			} else {
				e.refs++
				e.lastAccess = time.Now()
				return e.tempPath, nil
			}
		} else {
			// backing directory vanished underneath us
			c.dropLocked(src, e)
		}
	}

	tempPath, err := c.copyStore(src)
	if err != nil {
		return "", err
	}
	c.entries[src] = &copyEntry{
		tempPath:   tempPath,
		refs:       1,
		lastAccess: time.Now(),
	}
	c.logger.Debug("created store copy", "src", src, "copy", tempPath)
	return tempPath, nil
}

// release decrements the reference count taken by acquire. The last release
// arms a deferred cleanup; the callback re-validates both the count and the
// elapsed time, so a reacquire-then-release during the wait window resets
// the clock instead of losing the copy.
func (c *copyCache) release(src string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[src]
	if e == nil {
		return
	}
	e.refs--
	e.lastAccess = time.Now()
	if e.refs > 0 {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(c.ttl, func() {
		c.sweep(src)
	})
}

// sweep deletes the entry for src if it is still idle and past its TTL.
// Idempotent; safe to call at any time.
func (c *copyCache) sweep(src string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[src]
	if e == nil {
		return
	}
	if e.refs > 0 || time.Since(e.lastAccess) < c.ttl {
		return
	}
	c.dropLocked(src, e)
}

func (c *copyCache) dropLocked(src string, e *copyEntry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(c.entries, src)
	if err := os.RemoveAll(e.tempPath); err != nil {
		// best effort; the OS reclaims temp space eventually
		c.logger.Debug("failed to remove store copy", "copy", e.tempPath, "err", err)
	}
}

// shutdown removes every idle copy immediately. Copies still referenced are
// left alone.
func (c *copyCache) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for src, e := range c.entries {
		if e.refs <= 0 {
			c.dropLocked(src, e)
		}
	}
}

// copyStore synchronously copies every relevant store file into a fresh
// unique directory. The exclusive-lock file is deliberately left behind:
// copying it would defeat the point of reading around the lock.
func (c *copyCache) copyStore(src string) (string, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return "", err
	}

	root := c.root
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, fmt.Sprintf("copilotdb-%x-%s", xxhash.Sum64String(src), uuid.NewString()[:8]))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	for _, ent := range entries {
		if ent.IsDir() || !isStoreFile(ent.Name()) {
			continue
		}
		if err := copyFile(filepath.Join(src, ent.Name()), filepath.Join(dir, ent.Name())); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

// isStoreFile reports whether name is one of the store's data segments,
// write-ahead logs, manifests or pointer files. LOCK is excluded.
func isStoreFile(name string) bool {
	switch {
	case name == "LOCK":
		return false
	case name == "CURRENT", name == "LOG", name == "LOG.old":
		return true
	case strings.HasPrefix(name, "MANIFEST-"):
		return true
	}
	switch filepath.Ext(name) {
	case ".ldb", ".sst", ".log":
		return true
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
