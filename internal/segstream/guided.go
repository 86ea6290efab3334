package segstream

import "nd/internal/bytestream"

// Record is one (offset, span) pair read from a guide stream.
type Record struct {
	Offset int64
	Span   int64
}

// RecordSource yields guide records in ascending offset order, such as
// a hex-text record parser reading a second input stream.
type RecordSource interface {
	Next() (Record, bool, error)
}

// GuidedSlicer emits one segment per record read from a RecordSource,
// at that record's (offset, span) into src.
type GuidedSlicer struct {
	window
	src     bytestream.ByteStream
	records RecordSource

	pos      int64
	pending  *Record
	finished bool
}

// NewGuidedSlicer slices src using offsets and spans read from records.
func NewGuidedSlicer(src bytestream.ByteStream, records RecordSource) *GuidedSlicer {
	s := &GuidedSlicer{src: src, records: records}
	s.window.src = src
	return s
}

func (s *GuidedSlicer) FillSegmentBuf() (bool, int, int, int, error) {
	if s.finished {
		b, _ := s.asSlices()
		return true, len(b), len(s.segs), len(b), nil
	}

	isEOF, n, err := s.src.FillBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}

	for {
		if s.pending == nil {
			rec, ok, err := s.records.Next()
			if err != nil {
				return false, 0, 0, 0, err
			}
			if !ok {
				s.finished = true
				break
			}
			s.pending = &rec
		}

		rec := *s.pending
		local := rec.Offset - s.pos
		if local < 0 {
			local = 0
		}
		if local+rec.Span > int64(n) {
			if !isEOF {
				break
			}
			rec.Span = int64(n) - local
			if rec.Span <= 0 {
				s.pending = nil
				continue
			}
		}
		s.segs = append(s.segs, Segment{Pos: local, Len: rec.Span})
		s.pending = nil
	}

	maxConsume := n
	if len(s.segs) > 0 {
		maxConsume = int(s.segs[0].Pos)
	} else if s.pending != nil {
		p := s.pending.Offset - s.pos
		if p >= 0 && int(p) < maxConsume {
			maxConsume = int(p)
		}
	}

	done := s.finished && len(s.segs) == 0
	return done, n, len(s.segs), maxConsume, nil
}

func (s *GuidedSlicer) AsSlices() ([]byte, []Segment) { return s.asSlices() }

func (s *GuidedSlicer) Consume(bytes int) (int, int) {
	n, k := s.consumeBytes(bytes)
	s.pos += int64(n)
	return n, k
}
