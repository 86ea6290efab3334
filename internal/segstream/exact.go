package segstream

import (
	"bytes"

	"nd/internal/bytestream"
)

// ExactMatchSlicer emits one segment per occurrence of a fixed literal
// pattern.
type ExactMatchSlicer struct {
	window
	src     bytestream.ByteStream
	pattern []byte
}

// NewExactMatchSlicer slices src at every occurrence of pattern.
func NewExactMatchSlicer(src bytestream.ByteStream, pattern []byte) *ExactMatchSlicer {
	s := &ExactMatchSlicer{src: src, pattern: pattern}
	s.window.src = src
	return s
}

func (s *ExactMatchSlicer) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, err := s.src.FillBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}

	overhead := len(s.pattern)
	if overhead < 1 {
		overhead = 1
	}
	scanLimit := n
	if !isEOF {
		if scanLimit > overhead {
			scanLimit -= overhead
		} else {
			scanLimit = 0
		}
	}

	data := s.src.AsSlice()[:scanLimit]
	s.segs = s.segs[:0]
	if len(s.pattern) > 0 {
		pos := 0
		for {
			i := bytes.Index(data[pos:], s.pattern)
			if i < 0 {
				break
			}
			s.segs = append(s.segs, Segment{Pos: int64(pos + i), Len: int64(len(s.pattern))})
			pos += i + len(s.pattern)
		}
	}

	maxConsume := scanLimit
	if len(s.segs) > 0 {
		maxConsume = int(s.segs[0].Pos)
	}

	done := isEOF && scanLimit == n && len(s.segs) == 0
	return done, n, len(s.segs), maxConsume, nil
}

func (s *ExactMatchSlicer) AsSlices() ([]byte, []Segment) { return s.asSlices() }

func (s *ExactMatchSlicer) Consume(bytes int) (int, int) { return s.consumeBytes(bytes) }
