package segstream

import (
	"regexp"

	"nd/internal/bytestream"
)

// matchOverhead is how many trailing bytes of a partial window are
// withheld from matching each round, so a pattern that could still
// extend past what's currently buffered isn't falsely resolved against
// a chunk boundary.
const matchOverhead = 64

// RegexSlicer emits one segment per non-overlapping match of re against
// the byte stream.
type RegexSlicer struct {
	window
	src bytestream.ByteStream
	re  *regexp.Regexp
}

// NewRegexSlicer slices src at matches of re.
func NewRegexSlicer(src bytestream.ByteStream, re *regexp.Regexp) *RegexSlicer {
	s := &RegexSlicer{src: src, re: re}
	s.window.src = src
	return s
}

func (s *RegexSlicer) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, err := s.src.FillBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}

	scanLimit := n
	if !isEOF {
		if scanLimit > matchOverhead {
			scanLimit -= matchOverhead
		} else {
			scanLimit = 0
		}
	}

	data := s.src.AsSlice()[:scanLimit]
	idx := s.re.FindAllIndex(data, -1)
	s.segs = s.segs[:0]
	for _, m := range idx {
		s.segs = append(s.segs, Segment{Pos: int64(m[0]), Len: int64(m[1] - m[0])})
	}

	maxConsume := scanLimit
	if len(s.segs) > 0 {
		maxConsume = int(s.segs[0].Pos)
	}

	done := isEOF && scanLimit == n && len(s.segs) == 0
	return done, n, len(s.segs), maxConsume, nil
}

func (s *RegexSlicer) AsSlices() ([]byte, []Segment) { return s.asSlices() }

func (s *RegexSlicer) Consume(bytes int) (int, int) { return s.consumeBytes(bytes) }
