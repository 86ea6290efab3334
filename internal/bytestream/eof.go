package bytestream

// EofStream promotes a RawSource to a ByteStream by detecting definitive
// EOF: two consecutive fills that report the same length, the second one
// preceded by a zero-length Consume telling the source "try harder, I need
// more before I can make progress". A single short fill is ambiguous (the
// source may just be slow); two in a row at the same length is not.
type EofStream struct {
	src     RawSource
	len     int
	request int
}

// NewEofStream wraps src, giving it reliable EOF reporting.
func NewEofStream(src RawSource) *EofStream {
	return &EofStream{src: src, request: BlockSize}
}

func (s *EofStream) FillBuf() (bool, int, error) {
	n, err := s.src.FillBuf()
	if err != nil {
		return false, 0, err
	}
	s.len = n
	if s.len >= s.request {
		return false, s.len, nil
	}

	prevLen := s.len
	for {
		s.src.Consume(0)

		n, err := s.src.FillBuf()
		if err != nil {
			return false, 0, err
		}
		s.len = n

		if s.len >= s.request {
			return false, s.len, nil
		}
		if s.len == prevLen {
			return true, s.len, nil
		}
		prevLen = s.len
	}
}

func (s *EofStream) AsSlice() []byte {
	return s.src.AsSlice()
}

func (s *EofStream) Consume(amount int) {
	s.src.Consume(amount)
	s.len -= amount

	if amount == 0 {
		s.request = nextPow2(s.len + (s.len+1)/2)
	} else {
		s.request = s.len + 1
		if s.request < BlockSize {
			s.request = BlockSize
		}
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
