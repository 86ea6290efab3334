package segstream

// BridgeStream inverts a segment stream, emitting the gaps between
// consecutive input segments instead of the segments themselves.
// startOffset/endOffset nudge each gap's bounds inward or outward,
// wrapped modulo the adjacent segment's length plus one so an offset
// can never push past the segment it's relative to.
type BridgeStream struct {
	src                     SegmentStream
	startOffset, endOffset  int64

	prev *Segment
	out  []Segment
}

// NewBridgeStream emits the complement of src's segments.
func NewBridgeStream(src SegmentStream, startOffset, endOffset int64) *BridgeStream {
	return &BridgeStream{src: src, startOffset: startOffset, endOffset: endOffset}
}

func mod(n, m int64) int64 {
	if m <= 0 {
		return 0
	}
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}

func (br *BridgeStream) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, _, maxConsume, err := br.src.FillSegmentBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	_, upstream := br.src.AsSlices()

	br.out = br.out[:0]
	for _, s := range upstream {
		if br.prev != nil {
			so := mod(br.startOffset, br.prev.Len+1)
			eo := mod(br.endOffset, s.Len+1)
			gapStart := br.prev.Pos + br.prev.Len + so
			gapEnd := s.Pos + eo
			if gapEnd > gapStart {
				br.out = append(br.out, Segment{Pos: gapStart, Len: gapEnd - gapStart})
			}
		}
		p := s
		br.prev = &p
	}

	return isEOF && len(br.out) == 0, n, len(br.out), maxConsume, nil
}

func (br *BridgeStream) AsSlices() ([]byte, []Segment) {
	b, _ := br.src.AsSlices()
	return b, br.out
}

func (br *BridgeStream) Consume(bytes int) (int, int) {
	k := 0
	for k < len(br.out) && bytes > 0 {
		bytes -= int(br.out[k].Len)
		k++
	}
	n, _ := br.src.Consume(bytes)
	return n, k
}
