package bytestream

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// NewSpillPath returns a fresh, collision-free path under dir for a
// tee's spill file.
func NewSpillPath(dir string) string {
	return filepath.Join(dir, "nd-tee-"+uuid.NewString()+".cache")
}

// TeeCache is a disk-backed buffer shared between a Tee writer and any
// number of CacheReader readers. The writer appends every byte it lets
// through; readers replay that same stream independently, each at its
// own pace, including past a point where they'd otherwise have hit EOF
// if the writer later appends more.
type TeeCache struct {
	mu      sync.Mutex
	file    afero.File
	written int64
	closed  bool
}

// NewTeeCache creates a spill file at path on fs to back a tee.
func NewTeeCache(fs afero.Fs, path string) (*TeeCache, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, err
	}
	return &TeeCache{file: f}, nil
}

func (c *TeeCache) append(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(p) == 0 {
		return nil
	}
	if _, err := c.file.WriteAt(p, c.written); err != nil {
		return err
	}
	c.written += int64(len(p))
	return nil
}

// Close marks the cache as finished: no more bytes will ever be
// appended, so readers that catch up to the current length can
// conclude real EOF instead of polling for more.
func (c *TeeCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.file.Close()
}

func (c *TeeCache) snapshot() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written, c.closed
}

// Snapshot reports how many bytes have been appended so far and
// whether the writer has closed the cache (no more ever will be). A
// patch-back worker polls this to distinguish "caught up, but the
// writer might still append more" from genuine end of stream.
func (c *TeeCache) Snapshot() (written int64, closed bool) {
	return c.snapshot()
}

// Tee forwards src unchanged while spilling every consumed byte to
// cache, so other readers (a patch-back worker, a pager) can replay the
// same bytes without re-reading or re-deriving them.
type Tee struct {
	src     ByteStream
	cache   *TeeCache
	pending error
}

// NewTee wraps src, mirroring everything it produces into cache.
func NewTee(src ByteStream, cache *TeeCache) *Tee {
	return &Tee{src: src, cache: cache}
}

func (t *Tee) FillBuf() (bool, int, error) {
	if t.pending != nil {
		err := t.pending
		t.pending = nil
		return false, 0, err
	}
	return t.src.FillBuf()
}

func (t *Tee) AsSlice() []byte { return t.src.AsSlice() }

func (t *Tee) Consume(amount int) {
	if amount > 0 {
		if err := t.cache.append(t.src.AsSlice()[:amount]); err != nil && t.pending == nil {
			t.pending = err
		}
	}
	t.src.Consume(amount)
}

// CacheReader is a RawSource that replays a TeeCache's spill file from
// the beginning, polling for bytes the writer hasn't appended yet.
// EofStream knows nothing about the cache: wrapped in it, a reader
// reports EOF as soon as two fills see the same length, even while the
// writer is still appending. That is only reliable once the cache has
// been closed; before then, Done is the authoritative end signal.
type CacheReader struct {
	cache *TeeCache
	file  afero.File
	pos   int64
	buf   []byte
}

// NewCacheReader opens an independent read handle on cache's spill file.
func NewCacheReader(fs afero.Fs, path string, cache *TeeCache) (*CacheReader, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	return &CacheReader{cache: cache, file: f}, nil
}

func (r *CacheReader) FillBuf() (int, error) {
	written, _ := r.cache.snapshot()
	want := written - r.pos
	if want <= 0 {
		return len(r.buf), nil
	}

	start := len(r.buf)
	r.buf = append(r.buf, make([]byte, want)...)
	n, err := r.file.ReadAt(r.buf[start:], r.pos+int64(start))
	r.buf = r.buf[:start+n]
	if err != nil && err != io.EOF {
		return len(r.buf), err
	}
	return len(r.buf), nil
}

func (r *CacheReader) AsSlice() []byte { return r.buf }

// Done reports whether the cache is closed and this reader has caught
// up to its final length, i.e. there will never be more bytes to read.
func (r *CacheReader) Done() bool {
	written, closed := r.cache.Snapshot()
	return closed && len(r.buf) == 0 && r.pos >= written
}

func (r *CacheReader) Consume(amount int) {
	copy(r.buf, r.buf[amount:])
	r.buf = r.buf[:len(r.buf)-amount]
	r.pos += int64(amount)
}
