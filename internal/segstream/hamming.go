package segstream

import "nd/internal/bytestream"

// HammingSlicer emits one segment per window position whose byte-wise
// Hamming distance to pattern is within budget. Overlapping candidate
// windows are all reported (unlike ExactMatchSlicer, matches may
// overlap since an approximate match doesn't consume the bytes it
// covers).
type HammingSlicer struct {
	window
	src     bytestream.ByteStream
	pattern []byte
	budget  int
}

// NewHammingSlicer slices src at every position within budget mismatches
// of pattern.
func NewHammingSlicer(src bytestream.ByteStream, pattern []byte, budget int) *HammingSlicer {
	s := &HammingSlicer{src: src, pattern: pattern, budget: budget}
	s.window.src = src
	return s
}

func hammingDistanceWithinBudget(a, b []byte, budget int) bool {
	mism := 0
	for i := range a {
		if a[i] != b[i] {
			mism++
			if mism > budget {
				return false
			}
		}
	}
	return true
}

func (s *HammingSlicer) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, err := s.src.FillBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}

	plen := len(s.pattern)
	scanLimit := n - plen + 1
	if scanLimit < 0 {
		scanLimit = 0
	}
	if !isEOF {
		// the last plen-1 positions might still be extended by more
		// incoming bytes changing what's comparable, so hold them back
		if scanLimit > 0 {
			scanLimit--
		}
	}

	data := s.src.AsSlice()
	s.segs = s.segs[:0]
	for i := 0; i < scanLimit && plen > 0; i++ {
		if hammingDistanceWithinBudget(data[i:i+plen], s.pattern, s.budget) {
			s.segs = append(s.segs, Segment{Pos: int64(i), Len: int64(plen)})
		}
	}

	maxConsume := scanLimit
	if len(s.segs) > 0 {
		maxConsume = int(s.segs[0].Pos)
	}

	done := isEOF && scanLimit >= n-plen+1 && len(s.segs) == 0
	return done, n, len(s.segs), maxConsume, nil
}

func (s *HammingSlicer) AsSlices() ([]byte, []Segment) { return s.asSlices() }

func (s *HammingSlicer) Consume(bytes int) (int, int) { return s.consumeBytes(bytes) }
