package segstream

import (
	"sort"

	"nd/internal/mapper"
)

// ExtendStream maps each input segment through every supplied
// RangeMapper (evaluated in the segment's own local coordinates, s=0,
// e=segment length), emitting up to one output segment per mapper per
// input segment. Outputs are re-sorted by position so the stream stays
// non-descending even though a later mapper can produce an earlier
// start than one applied before it.
type ExtendStream struct {
	src     SegmentStream
	mappers []mapper.RangeMapper
	out     []Segment
}

// NewExtendStream applies mappers to every segment of src.
func NewExtendStream(src SegmentStream, mappers []mapper.RangeMapper) *ExtendStream {
	return &ExtendStream{src: src, mappers: mappers}
}

func (e *ExtendStream) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, _, maxConsume, err := e.src.FillSegmentBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	_, upstream := e.src.AsSlices()

	e.out = e.out[:0]
	for _, s := range upstream {
		for _, m := range e.mappers {
			start, end := m.Resolve(s.Len)
			if end > start {
				e.out = append(e.out, Segment{Pos: s.Pos + start, Len: end - start})
			}
		}
	}
	sort.Slice(e.out, func(i, j int) bool { return e.out[i].Pos < e.out[j].Pos })

	return isEOF && len(e.out) == 0, n, len(e.out), maxConsume, nil
}

func (e *ExtendStream) AsSlices() ([]byte, []Segment) {
	b, _ := e.src.AsSlices()
	return b, e.out
}

func (e *ExtendStream) Consume(bytes int) (int, int) {
	k := 0
	for k < len(e.out) && bytes > 0 {
		bytes -= int(e.out[k].Len)
		k++
	}
	n, _ := e.src.Consume(bytes)
	return n, k
}
