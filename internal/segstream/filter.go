package segstream

import (
	"sort"

	"nd/internal/mapper"
)

// FilterStream retains only segments whose ordinal index (0-based,
// counting every segment ever produced by src) falls within any of
// ranges. Index ranges anchored at the stream's start are resolved
// immediately; one anchored at the end requires the full segment
// sequence, so FilterStream buffers every segment until src reaches EOF
// whenever such a range is present. It backs `--filter`/`--pair`-style
// index selection, and StripStream is the same mechanism applied to a
// single range.
type FilterStream struct {
	src    SegmentStream
	ranges []mapper.RangeMapper

	anyTail bool
	idx     int64
	segs    []Segment

	allBytes []byte
	buffered []Segment
	allSeen  bool
	resolved bool
	emitPos  int
}

// NewFilterStream retains segments from src whose ordinal index falls
// in any of ranges.
func NewFilterStream(src SegmentStream, ranges []mapper.RangeMapper) *FilterStream {
	anyTail := false
	for _, r := range ranges {
		if r.HasRightAnchor() {
			anyTail = true
		}
	}
	sorted := append([]mapper.RangeMapper(nil), ranges...)
	if !anyTail {
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Offset < sorted[j].Start.Offset })
	}
	return &FilterStream{src: src, ranges: sorted, anyTail: anyTail}
}

// NewStripStream is FilterStream restricted to a single index range.
func NewStripStream(src SegmentStream, r mapper.RangeMapper) *FilterStream {
	return NewFilterStream(src, []mapper.RangeMapper{r})
}

func inAnyRange(idx int64, ranges []mapper.RangeMapper, total int64) bool {
	for _, r := range ranges {
		start, end := r.Resolve(total)
		if idx >= start && idx < end {
			return true
		}
	}
	return false
}

func (f *FilterStream) FillSegmentBuf() (bool, int, int, int, error) {
	if f.anyTail {
		return f.fillBuffered()
	}
	return f.fillLazy()
}

// fillLazy assumes the caller follows the usual drain convention (fully
// consuming what a fill produced before requesting the next one), so
// every segment AsSlices exposes on entry here is one FilterStream
// hasn't assigned an ordinal index to yet.
func (f *FilterStream) fillLazy() (bool, int, int, int, error) {
	isEOF, n, _, maxConsume, err := f.src.FillSegmentBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	_, upstream := f.src.AsSlices()

	f.segs = f.segs[:0]
	for _, s := range upstream {
		if inAnyRange(f.idx, f.ranges, 1<<62) {
			f.segs = append(f.segs, s)
		}
		f.idx++
	}
	return isEOF && len(f.segs) == 0, n, len(f.segs), maxConsume, nil
}

func (f *FilterStream) fillBuffered() (bool, int, int, int, error) {
	for !f.allSeen {
		isEOF, _, _, maxConsume, err := f.src.FillSegmentBuf()
		if err != nil {
			return false, 0, 0, 0, err
		}
		b, upstream := f.src.AsSlices()
		base := int64(len(f.allBytes))
		f.allBytes = append(f.allBytes, b[:maxConsume]...)
		for _, s := range upstream {
			if s.Pos < int64(maxConsume) {
				f.buffered = append(f.buffered, Segment{Pos: base + s.Pos, Len: s.Len})
			}
		}
		f.src.Consume(maxConsume)
		if isEOF {
			f.allSeen = true
		}
	}
	if !f.resolved {
		total := int64(len(f.buffered))
		for i, s := range f.buffered {
			if inAnyRange(int64(i), f.ranges, total) {
				f.segs = append(f.segs, s)
			}
		}
		f.resolved = true
	}
	done := f.emitPos >= len(f.segs)
	return done, len(f.allBytes), len(f.segs) - f.emitPos, len(f.allBytes), nil
}

func (f *FilterStream) AsSlices() ([]byte, []Segment) {
	if f.anyTail {
		return f.allBytes, f.segs[f.emitPos:]
	}
	return f.src.AsSlices()
}

func (f *FilterStream) Consume(bytes int) (int, int) {
	if f.anyTail {
		// bytes are owned by the buffered copy, not upstream (already
		// fully drained); segments consumed one at a time as requested
		k := 0
		for k < len(f.segs)-f.emitPos && bytes > 0 {
			bytes -= int(f.segs[f.emitPos+k].Len)
			k++
		}
		f.emitPos += k
		return bytes, k
	}
	return f.src.Consume(bytes)
}
