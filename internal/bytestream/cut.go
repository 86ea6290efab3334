package bytestream

import (
	"sort"

	"nd/internal/mapper"
	"nd/internal/streambuf"
)

// Cut selects a set of byte ranges out of src and concatenates the
// selected bytes, in source order, discarding everything else. It backs
// `--cut`.
//
// Ranges anchored purely from the start of the stream are streamed
// lazily: a byte is never held longer than it takes to know whether it
// falls in a selected range. A range anchored from the end can only be
// resolved once the stream's total length is known, so if any such
// range is present Cut buffers the entire source before producing
// output.
type Cut struct {
	src    ByteStream
	ranges []mapper.RangeMapper

	anyTailAnchor bool

	// lazy path (no tail anchors)
	pos      int64
	cur      int // index into ranges (sorted by start) of the range being emitted
	buf      *streambuf.StreamBuf

	// buffered path (at least one tail anchor)
	all      []byte
	allReady bool
	outPos   int
	out      []byte
}

// NewCut selects ranges from src. Ranges need not be sorted or
// non-overlapping; overlaps are deduplicated.
func NewCut(src ByteStream, ranges []mapper.RangeMapper) *Cut {
	sorted := append([]mapper.RangeMapper(nil), ranges...)
	anyTail := false
	for _, r := range sorted {
		if r.HasRightAnchor() {
			anyTail = true
		}
	}
	if !anyTail {
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Start.Offset < sorted[j].Start.Offset
		})
	}
	return &Cut{
		src:           src,
		ranges:        sorted,
		anyTailAnchor: anyTail,
		cur:           0,
		buf:           streambuf.New(),
	}
}

func (c *Cut) FillBuf() (bool, int, error) {
	if c.anyTailAnchor {
		return c.fillBuffered()
	}
	return c.fillLazy()
}

// fillLazy handles the common case: every range is anchored at the
// stream's start, so ranges can be resolved against the running byte
// count as data arrives, with no buffering of our own beyond skipping
// the gaps between selected ranges.
func (c *Cut) fillLazy() (bool, int, error) {
	n, err := c.buf.FillBuf(func(b *[]byte) (bool, error) {
		if c.cur >= len(c.ranges) {
			return false, nil
		}

		isEOF, avail, err := c.src.FillBuf()
		if err != nil {
			return false, err
		}
		end := c.pos + int64(avail)

		for c.cur < len(c.ranges) {
			r := c.ranges[c.cur]
			start, stop := r.Start.Offset, r.End.Offset

			if end <= start && !isEOF {
				// not enough data yet to even reach this range: drop what
				// is buffered and ask for another round, since returning
				// with nothing appended would latch EOF in c.buf
				c.src.Consume(avail)
				c.pos = end
				return true, nil
			}

			// skip any source bytes before this range begins
			if c.pos < start {
				skip := start - c.pos
				if skip > int64(avail) {
					skip = int64(avail)
				}
				c.src.Consume(int(skip))
				c.pos += skip
				avail -= int(skip)
				if c.pos < start {
					if isEOF {
						// stream ended before reaching this range at all
						c.cur = len(c.ranges)
					}
					return false, nil
				}
			}

			copyEnd := c.pos + int64(avail)
			if copyEnd > stop {
				copyEnd = stop
			}
			if copyEnd > c.pos {
				n := copyEnd - c.pos
				*b = append(*b, c.src.AsSlice()[:n]...)
				c.src.Consume(int(n))
				c.pos += n
				avail -= int(n)
			}

			if c.pos >= stop {
				c.cur++
				continue
			}
			if isEOF {
				c.cur = len(c.ranges)
			}
			return false, nil
		}
		return false, nil
	})
	if err != nil {
		return false, 0, err
	}
	done := c.cur >= len(c.ranges)
	return done, n, nil
}

// fillBuffered handles any range anchored at the stream's end: the full
// source is read to EOF first, then every range is resolved against the
// now-known total length and its bytes spliced into the output.
func (c *Cut) fillBuffered() (bool, int, error) {
	for !c.allReady {
		isEOF, n, err := c.src.FillBuf()
		if err != nil {
			return false, 0, err
		}
		if n > 0 {
			c.all = append(c.all, c.src.AsSlice()[:n]...)
			c.src.Consume(n)
		}
		if isEOF {
			c.allReady = true
			break
		}
	}

	if c.out == nil {
		total := int64(len(c.all))
		for _, r := range c.ranges {
			start, end := r.Resolve(total)
			if end > start {
				c.out = append(c.out, c.all[start:end]...)
			}
		}
	}

	if c.outPos >= len(c.out) {
		return true, 0, nil
	}
	return false, len(c.out) - c.outPos, nil
}

func (c *Cut) AsSlice() []byte {
	if c.anyTailAnchor {
		return c.out[c.outPos:]
	}
	return c.buf.AsSlice()
}

func (c *Cut) Consume(amount int) {
	if c.anyTailAnchor {
		c.outPos += amount
		return
	}
	c.buf.Consume(amount)
}
