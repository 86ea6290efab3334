package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"nd/internal/bytestream"
	"nd/internal/hextext"
	"nd/internal/ndproc"
	"nd/internal/segstream"
)

// PatchBackOptions configures the `--patch-back` collaborator.
type PatchBackOptions struct {
	Command  string // shell command run via `bash -c`
	Base     int64  // hex offset base for the lines sent to Command
	Width    int64  // hex column width for the lines sent to Command
	Fs       afero.Fs
	SpillDir string // directory for the tee's spill file
}

// RunPatchBack slices src with buildSlicer, formats the resulting
// segments as hex text, and pipes that text to opts.Command. The
// command's stdout is parsed back as patch records and overlaid onto
// src, with the patched result written to dst.
//
// src is consumed exactly once: a Tee mirrors every byte the slicer
// reads into a spill file, which a worker goroutine replays through
// bytestream.Patch concurrently with the main goroutine still feeding
// the subprocess's stdin. Running sequentially instead — write all of
// stdin, then read all of stdout — would deadlock on any input larger
// than the subprocess's stdout pipe buffer: the child blocks writing
// more hex text before it has read enough of its own stdin to finish,
// and nothing is draining its stdout yet to unblock it.
func RunPatchBack(dst io.Writer, src bytestream.ByteStream, buildSlicer func(bytestream.ByteStream) (segstream.SegmentStream, error), opts PatchBackOptions) error {
	cachePath := bytestream.NewSpillPath(opts.SpillDir)
	cache, err := bytestream.NewTeeCache(opts.Fs, cachePath)
	if err != nil {
		return fmt.Errorf("pipeline: patch-back spill file: %w", err)
	}

	teed := bytestream.NewTee(src, cache)
	segs, err := buildSlicer(teed)
	if err != nil {
		return fmt.Errorf("pipeline: patch-back slicer: %w", err)
	}
	formatter := hextext.NewFormatter(segs, opts.Base, opts.Width)

	proc, err := ndproc.Start(opts.Command)
	if err != nil {
		return fmt.Errorf("pipeline: patch-back command %q: %w", opts.Command, err)
	}

	reader, err := bytestream.NewCacheReader(opts.Fs, cachePath, cache)
	if err != nil {
		return fmt.Errorf("pipeline: patch-back cache reader: %w", err)
	}

	var g errgroup.Group
	g.Go(func() (ferr error) {
		defer cache.Close()
		// feeds the subprocess's stdin; a panic here (e.g. from a
		// malformed slicer) must not take the process down silently,
		// it has to surface as a pipeline error the caller can act on.
		var pc panics.Catcher
		pc.Try(func() {
			if err := DrainSegments(proc, formatter); err != nil {
				ferr = fmt.Errorf("pipeline: patch-back feed: %w", err)
			}
		})
		if r := pc.Recovered(); r != nil {
			return fmt.Errorf("pipeline: patch-back feed: %w", r.AsError())
		}
		if ferr != nil {
			return ferr
		}
		return proc.CloseWrite()
	})
	g.Go(func() error {
		patches := hextext.NewPatchSource(hextext.NewReader(bytestream.NewEofStream(proc.Stdout())))
		patched := bytestream.NewPatch(newCacheByteStream(reader), patches)
		if err := DrainBytes(dst, patched); err != nil {
			return fmt.Errorf("pipeline: patch-back apply: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return proc.Wait()
}

// cacheByteStream adapts a CacheReader to the ByteStream contract.
// EofStream's usual two-equal-fills EOF detection doesn't fit here: "no
// new bytes since the last poll" is the ordinary steady state while the
// writer is still producing, not a sign the source is exhausted. This
// instead polls CacheReader.Done, which turns true only once the cache
// is closed and this reader has caught up to its final length.
type cacheByteStream struct {
	r *bytestream.CacheReader
}

func newCacheByteStream(r *bytestream.CacheReader) *cacheByteStream {
	return &cacheByteStream{r: r}
}

func (s *cacheByteStream) FillBuf() (bool, int, error) {
	for {
		n, err := s.r.FillBuf()
		if err != nil {
			return false, 0, err
		}
		if n > 0 {
			return false, n, nil
		}
		if s.r.Done() {
			return true, 0, nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (s *cacheByteStream) AsSlice() []byte    { return s.r.AsSlice() }
func (s *cacheByteStream) Consume(amount int) { s.r.Consume(amount) }
