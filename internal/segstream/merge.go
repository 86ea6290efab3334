package segstream

// extend widens a segment by l bytes on the left and r bytes on the
// right, clamped to zero.
func extend(s Segment, l, r int64) Segment {
	pos := s.Pos - l
	end := s.Pos + s.Len + r
	if pos < 0 {
		pos = 0
	}
	if end < pos {
		end = pos
	}
	return Segment{Pos: pos, Len: end - pos}
}

// MergeStream merges consecutive input segments (each widened by
// extend) whenever they overlap by at least `merge` bytes, combining
// them into a single segment spanning the union.
type MergeStream struct {
	src       SegmentStream
	extL, extR int64
	merge     int64

	acc     *Segment
	out     []Segment
}

// NewMergeStream merges consecutive segments of src, each widened by
// (extendLeft, extendRight), when the widened spans overlap by at least
// minOverlap bytes.
func NewMergeStream(src SegmentStream, extendLeft, extendRight, minOverlap int64) *MergeStream {
	return &MergeStream{src: src, extL: extendLeft, extR: extendRight, merge: minOverlap}
}

func overlapLen(a, b Segment) int64 {
	start := a.Pos
	if b.Pos > start {
		start = b.Pos
	}
	end := a.Pos + a.Len
	if b.Pos+b.Len < end {
		end = b.Pos + b.Len
	}
	if end < start {
		return 0
	}
	return end - start
}

func union(a, b Segment) Segment {
	start := a.Pos
	if b.Pos < start {
		start = b.Pos
	}
	end := a.Pos + a.Len
	if b.Pos+b.Len > end {
		end = b.Pos + b.Len
	}
	return Segment{Pos: start, Len: end - start}
}

func (m *MergeStream) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, _, maxConsume, err := m.src.FillSegmentBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	_, upstream := m.src.AsSlices()

	m.out = m.out[:0]
	for _, raw := range upstream {
		s := extend(raw, m.extL, m.extR)
		if m.acc == nil {
			m.acc = &s
			continue
		}
		if overlapLen(*m.acc, s) >= m.merge {
			u := union(*m.acc, s)
			m.acc = &u
			continue
		}
		m.out = append(m.out, *m.acc)
		m.acc = &s
	}
	if isEOF && m.acc != nil {
		m.out = append(m.out, *m.acc)
		m.acc = nil
	}

	done := isEOF && len(m.out) == 0
	return done, n, len(m.out), maxConsume, nil
}

func (m *MergeStream) AsSlices() ([]byte, []Segment) {
	b, _ := m.src.AsSlices()
	return b, m.out
}

func (m *MergeStream) Consume(bytes int) (int, int) {
	k := 0
	for k < len(m.out) && bytes > 0 {
		bytes -= int(m.out[k].Len)
		k++
	}
	n, _ := m.src.Consume(bytes)
	return n, k
}

// AndStream emits the pairwise intersection of consecutive input
// segments (each widened by extend), provided the overlap is at least
// minOverlap bytes.
type AndStream struct {
	src        SegmentStream
	extL, extR int64
	minOverlap int64

	prev *Segment
	out  []Segment
}

// NewAndStream intersects consecutive segments of src, each widened by
// (extendLeft, extendRight), when they overlap by at least minOverlap.
func NewAndStream(src SegmentStream, extendLeft, extendRight, minOverlap int64) *AndStream {
	return &AndStream{src: src, extL: extendLeft, extR: extendRight, minOverlap: minOverlap}
}

func (a *AndStream) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, _, maxConsume, err := a.src.FillSegmentBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	_, upstream := a.src.AsSlices()

	a.out = a.out[:0]
	for _, raw := range upstream {
		s := extend(raw, a.extL, a.extR)
		if a.prev != nil {
			if ov := overlapLen(*a.prev, s); ov >= a.minOverlap {
				start := s.Pos
				if a.prev.Pos > start {
					start = a.prev.Pos
				}
				a.out = append(a.out, Segment{Pos: start, Len: ov})
			}
		}
		a.prev = &s
	}
	return isEOF && len(a.out) == 0, n, len(a.out), maxConsume, nil
}

func (a *AndStream) AsSlices() ([]byte, []Segment) {
	b, _ := a.src.AsSlices()
	return b, a.out
}

func (a *AndStream) Consume(bytes int) (int, int) {
	k := 0
	for k < len(a.out) && bytes > 0 {
		bytes -= int(a.out[k].Len)
		k++
	}
	n, _ := a.src.Consume(bytes)
	return n, k
}
