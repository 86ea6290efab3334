package bytestream

import (
	"fmt"

	"nd/internal/streambuf"
)

// PatchRecord names a span of the primary stream to replace with Body,
// starting at Offset.
type PatchRecord struct {
	Offset int64
	Span   int64
	Body   []byte
}

// PatchSource yields patch records in ascending Offset order.
type PatchSource interface {
	Next() (PatchRecord, bool, error)
}

// Patch overlays patch records read from a PatchSource onto src: bytes
// before the next record's offset pass through unchanged, then the
// record's body is inserted and Span primary bytes are skipped. It
// backs `--patch-back` and the standalone patch-apply path.
type Patch struct {
	src     ByteStream
	patches PatchSource

	pos int64
	buf *streambuf.StreamBuf

	pending    *PatchRecord
	bodySent   int
	skipRem    int64
	lastPatchEnd int64
}

// NewPatch overlays patches onto src.
func NewPatch(src ByteStream, patches PatchSource) *Patch {
	return &Patch{src: src, patches: patches, buf: streambuf.New()}
}

func (p *Patch) FillBuf() (bool, int, error) {
	n, err := p.buf.FillBuf(func(b *[]byte) (bool, error) {
		return p.step(b)
	})
	if err != nil {
		return false, 0, err
	}
	return p.buf.IsEOF(), n, nil
}

// step performs one unit of work: either draining a pending patch body,
// skipping primary bytes for a patch's span, or forwarding verbatim
// primary bytes up to the next patch's offset. It returns forceTryNext
// when it made progress that the caller (streambuf.FillBuf) should not
// mistake for stagnation.
func (p *Patch) step(b *[]byte) (bool, error) {
	if p.pending == nil {
		rec, ok, err := p.patches.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			isEOF, n, err := p.src.FillBuf()
			if err != nil {
				return false, err
			}
			if n == 0 {
				return false, nil
			}
			*b = append(*b, p.src.AsSlice()[:n]...)
			p.src.Consume(n)
			p.pos += int64(n)
			return !isEOF && n > 0, nil
		}
		if rec.Offset < p.lastPatchEnd {
			return false, fmt.Errorf("bytestream: patch at offset %d overlaps prior patch ending at %d", rec.Offset, p.lastPatchEnd)
		}
		p.pending = &rec
		p.bodySent = 0
		p.skipRem = rec.Span
	}

	rec := p.pending

	if p.pos < rec.Offset {
		isEOF, n, err := p.src.FillBuf()
		if err != nil {
			return false, err
		}
		avail := int64(n)
		take := rec.Offset - p.pos
		if take > avail {
			take = avail
		}
		if take > 0 {
			*b = append(*b, p.src.AsSlice()[:take]...)
			p.src.Consume(int(take))
			p.pos += take
			return true, nil
		}
		if isEOF {
			return false, fmt.Errorf("bytestream: patch at offset %d is beyond the end of the primary stream", rec.Offset)
		}
		return false, nil
	}

	if p.bodySent < len(rec.Body) {
		*b = append(*b, rec.Body[p.bodySent:]...)
		p.bodySent = len(rec.Body)
		return true, nil
	}

	if p.skipRem > 0 {
		isEOF, n, err := p.src.FillBuf()
		if err != nil {
			return false, err
		}
		skip := p.skipRem
		if skip > int64(n) {
			skip = int64(n)
		}
		p.src.Consume(int(skip))
		p.pos += skip
		p.skipRem -= skip
		if p.skipRem > 0 {
			if isEOF {
				return false, fmt.Errorf("bytestream: patch span at offset %d runs past the end of the primary stream", rec.Offset)
			}
			return false, nil
		}
	}

	p.lastPatchEnd = rec.Offset + rec.Span
	p.pending = nil
	return true, nil
}

func (p *Patch) AsSlice() []byte {
	return p.buf.AsSlice()
}

func (p *Patch) Consume(amount int) {
	p.buf.Consume(amount)
}
