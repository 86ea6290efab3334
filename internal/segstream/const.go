package segstream

import "nd/internal/bytestream"

// ConstSlicer emits segments at a fixed pitch and span: segment i covers
// [i*Pitch, i*Pitch+Span). It backs `--width`.
//
// TailOpen controls what happens when the stream ends partway through a
// segment: if true, the final short segment is still emitted (clipped
// to however many bytes remain); if false, it's dropped. HeadOpen is
// stored but has no effect: segments always start at offset 0, there
// are no head or tail margins, and no leading segment is ever clipped.
type ConstSlicer struct {
	window
	pitch, span int64
	headOpen    bool
	tailOpen    bool

	pos      int64 // absolute stream offset of src.AsSlice()[0]
	next     int64 // absolute offset of the next segment to emit
	srcEOF   bool
	finished bool
}

// NewConstSlicer slices src into fixed pitch/span segments.
func NewConstSlicer(src bytestream.ByteStream, pitch, span int64, headOpen, tailOpen bool) *ConstSlicer {
	return &ConstSlicer{window: window{src: src}, pitch: pitch, span: span, headOpen: headOpen, tailOpen: tailOpen}
}

func (c *ConstSlicer) FillSegmentBuf() (bool, int, int, int, error) {
	if c.finished {
		b, _ := c.asSlices()
		return true, len(b), len(c.segs), len(b), nil
	}

	isEOF, n, err := c.src.FillBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	c.srcEOF = isEOF

	for {
		localStart := c.next - c.pos
		if localStart+c.span <= int64(n) {
			c.segs = append(c.segs, Segment{Pos: localStart, Len: c.span})
			c.next += c.pitch
			continue
		}
		if isEOF {
			remaining := int64(n) - localStart
			if remaining > 0 && c.tailOpen {
				c.segs = append(c.segs, Segment{Pos: localStart, Len: remaining})
			}
			c.finished = true
		}
		break
	}

	maxConsume := n
	if len(c.segs) > 0 {
		maxConsume = int(c.segs[0].Pos)
	}
	return c.finished && len(c.segs) == 0, n, len(c.segs), maxConsume, nil
}

func (c *ConstSlicer) AsSlices() ([]byte, []Segment) { return c.asSlices() }

func (c *ConstSlicer) Consume(bytes int) (int, int) {
	n, k := c.consumeBytes(bytes)
	c.pos += int64(n)
	return n, k
}
