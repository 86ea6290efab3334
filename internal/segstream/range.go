package segstream

import (
	"sort"

	"nd/internal/bytestream"
	"nd/internal/mapper"
)

// RangeSlicer materializes a fixed list of RangeMapper ranges directly
// as segments of src. Ranges anchored purely from the start are emitted
// as soon as the bytes they need arrive; any range anchored from the
// end can't be resolved until src's total length is known, so RangeSlicer
// buffers the whole source when at least one is present.
type RangeSlicer struct {
	window
	ranges []mapper.RangeMapper

	anyTail bool
	cur     int
	pos     int64

	all      []byte
	allReady bool
	emitted  bool
}

// NewRangeSlicer slices src at the given ranges.
func NewRangeSlicer(src bytestream.ByteStream, ranges []mapper.RangeMapper) *RangeSlicer {
	sorted := append([]mapper.RangeMapper(nil), ranges...)
	anyTail := false
	for _, r := range sorted {
		if r.HasRightAnchor() {
			anyTail = true
		}
	}
	if !anyTail {
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Offset < sorted[j].Start.Offset })
	}
	return &RangeSlicer{window: window{src: src}, ranges: sorted, anyTail: anyTail}
}

func (r *RangeSlicer) FillSegmentBuf() (bool, int, int, int, error) {
	if r.anyTail {
		return r.fillBuffered()
	}
	return r.fillLazy()
}

func (r *RangeSlicer) fillLazy() (bool, int, int, int, error) {
	isEOF, n, err := r.src.FillBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	for r.cur < len(r.ranges) {
		rg := r.ranges[r.cur]
		if rg.End.Offset > r.pos+int64(n) && !isEOF {
			break
		}
		if rg.End.Offset <= rg.Start.Offset {
			r.cur++
			continue
		}
		start := rg.Start.Offset - r.pos
		length := rg.End.Offset - rg.Start.Offset
		if start < 0 {
			start = 0
		}
		if start+length > int64(n) {
			if !isEOF {
				break
			}
			length = int64(n) - start
			if length <= 0 {
				r.cur++
				continue
			}
		}
		r.segs = append(r.segs, Segment{Pos: start, Len: length})
		r.cur++
	}
	done := r.cur >= len(r.ranges)
	maxConsume := n
	if len(r.segs) > 0 {
		maxConsume = int(r.segs[0].Pos)
	}
	return done && len(r.segs) == 0, n, len(r.segs), maxConsume, nil
}

func (r *RangeSlicer) fillBuffered() (bool, int, int, int, error) {
	for !r.allReady {
		isEOF, n, err := r.src.FillBuf()
		if err != nil {
			return false, 0, 0, 0, err
		}
		if n > 0 {
			r.all = append(r.all, r.src.AsSlice()[:n]...)
			r.src.Consume(n)
		}
		if isEOF {
			r.allReady = true
		}
	}
	if !r.emitted {
		total := int64(len(r.all))
		for _, rg := range r.ranges {
			start, end := rg.Resolve(total)
			if end > start {
				r.segs = append(r.segs, Segment{Pos: start, Len: end - start})
			}
		}
		r.emitted = true
	}
	b, _ := r.asSlices()
	return len(r.segs) == 0, len(b), len(r.segs), len(b), nil
}

func (r *RangeSlicer) AsSlices() ([]byte, []Segment) {
	if r.anyTail {
		return r.all, r.segs
	}
	return r.asSlices()
}

func (r *RangeSlicer) Consume(bytes int) (int, int) {
	if r.anyTail {
		n := bytes
		cut := 0
		for cut < len(r.segs) && r.segs[cut].Pos < int64(n) {
			cut++
		}
		kept := r.segs[cut:]
		for i := range kept {
			kept[i].Pos -= int64(n)
		}
		r.segs = append(r.segs[:0:0], kept...)
		r.all = r.all[n:]
		return n, cut
	}
	n, k := r.consumeBytes(bytes)
	r.pos += int64(n)
	return n, k
}
