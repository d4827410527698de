package copilotdb

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Document is one decoded entry of the store.
type Document struct {
	Key        []byte
	Collection string
	DocumentID string
	RawValue   []byte
	Fields     map[string]Value
}

// FieldsInterface projects the decoded field map into plain Go values.
func (d Document) FieldsInterface() map[string]any {
	m := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		m[k] = v.Interface()
	}
	return m
}

// AccessorOptions configures an Accessor. The zero value is usable.
type AccessorOptions struct {
	// TempRoot is the parent directory for temporary store copies;
	// empty means the OS temp directory.
	TempRoot string
	// CopyTTL is the minimum idle time before a temporary copy is deleted.
	CopyTTL time.Duration
	Logger  *slog.Logger
}

// Accessor reads a store directory that may be exclusively locked by its
// owning process, by working on reference-counted temporary copies. It owns
// the copy cache; create one Accessor per process and share it, so
// concurrent readers of the same source share a single copy.
type Accessor struct {
	cache  *copyCache
	logger *slog.Logger
}

func NewAccessor(o AccessorOptions) *Accessor {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Accessor{
		cache:  newCopyCache(o.TempRoot, o.CopyTTL, logger),
		logger: logger,
	}
}

// Close removes all idle temporary copies. Cursors still open keep theirs
// until released.
func (a *Accessor) Close() {
	a.cache.shutdown()
}

// IterOptions filters a document iteration.
type IterOptions struct {
	// Collection keeps documents whose collection matches exactly, or whose
	// subcollection path ends with /Collection.
	Collection string
	// KeyPrefix keeps entries whose raw key starts with these bytes.
	KeyPrefix []byte
	// Limit stops the iteration after this many documents; 0 means all.
	Limit int
}

// Documents opens a cursor over the decoded documents of the store at
// dbPath. The sequence is finite and not restartable: a fresh call
// re-acquires (or re-copies) the store. The caller must Close the cursor;
// per-entry decode failures are skipped, never surfaced.
func (a *Accessor) Documents(dbPath string, o IterOptions) (*DocumentCursor, error) {
	if err := checkStorePath(dbPath); err != nil {
		return nil, err
	}

	tempPath, err := a.cache.acquire(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := leveldb.OpenFile(tempPath, &opt.Options{
		ReadOnly:       true,
		ErrorIfMissing: true,
	})
	if err != nil {
		a.cache.release(dbPath)
		return nil, fmt.Errorf("open store copy: %w", err)
	}

	var rang *util.Range
	if len(o.KeyPrefix) > 0 {
		rang = util.BytesPrefix(o.KeyPrefix)
	}

	c := &DocumentCursor{
		it:     db.NewIterator(rang, nil),
		opts:   o,
		logger: a.logger,
	}
	c.releaseFn = func() {
		db.Close()
		a.cache.release(dbPath)
	}
	return c, nil
}

// CollectDocuments gathers the whole iteration into a slice, releasing the
// cursor on every exit path.
func (a *Accessor) CollectDocuments(dbPath string, o IterOptions) ([]Document, error) {
	c, err := a.Documents(dbPath, o)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var docs []Document
	for c.Next() {
		docs = append(docs, c.Document())
	}
	return docs, c.Err()
}

func checkStorePath(dbPath string) error {
	st, err := os.Stat(dbPath)
	if err != nil {
		return err // *fs.PathError
	}
	if !st.IsDir() {
		return &fs.PathError{Op: "open", Path: dbPath, Err: fmt.Errorf("not a directory")}
	}
	return nil
}

// DocumentCursor walks decoded documents one at a time. Stopping early is
// fine: Close is idempotent and the underlying copy is released exactly
// once whether the cursor is exhausted, abandoned or failed.
type DocumentCursor struct {
	it     iterator.Iterator
	opts   IterOptions
	logger *slog.Logger

	cur     Document
	yielded int
	err     error

	closeOnce sync.Once
	releaseFn func()
}

// Next advances to the next matching document. It returns false once the
// store is exhausted or the Limit is reached, releasing the underlying
// iterator (Close remains safe to call).
func (c *DocumentCursor) Next() bool {
	if c.opts.Limit > 0 && c.yielded >= c.opts.Limit {
		c.finish()
		return false
	}
	for c.it.Next() {
		key := c.it.Key()
		if len(c.opts.KeyPrefix) > 0 && !bytes.HasPrefix(key, c.opts.KeyPrefix) {
			continue
		}
		if !bytes.Contains(key, []byte(keyMarker)) {
			continue
		}
		ref, ok := ParseStoreKey(key)
		if !ok {
			continue // not a document
		}
		if !matchesCollection(ref.Collection, c.opts.Collection) {
			continue
		}
		value := c.it.Value()
		fields, err := parseDocument(value)
		if err != nil {
			// lenient policy: one malformed entry never aborts the scan
			c.logger.Debug("skipping undecodable entry",
				"collection", ref.Collection, "doc", ref.DocumentID, "err", err)
			continue
		}
		c.cur = Document{
			Key:        append([]byte(nil), key...),
			Collection: ref.Collection,
			DocumentID: ref.DocumentID,
			RawValue:   append([]byte(nil), value...),
			Fields:     fields,
		}
		c.yielded++
		return true
	}
	c.err = c.it.Error()
	c.finish()
	return false
}

// Document returns the entry the last successful Next moved to.
func (c *DocumentCursor) Document() Document {
	return c.cur
}

// Err reports an iterator-level failure. Per-entry decode errors are never
// reported here.
func (c *DocumentCursor) Err() error {
	return c.err
}

// Close releases the read handle and the store copy. Safe to call multiple
// times and after exhaustion.
func (c *DocumentCursor) Close() error {
	c.finish()
	return c.err
}

func (c *DocumentCursor) finish() {
	c.closeOnce.Do(func() {
		c.it.Release()
		if c.releaseFn != nil {
			c.releaseFn()
		}
	})
}
