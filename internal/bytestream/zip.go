package bytestream

import "nd/internal/streambuf"

// Zip interleaves k sources word-by-word: wordSize bytes from src0, then
// wordSize bytes from src1, ... repeated until the shortest source (after
// rounding each down to a whole number of words) runs out. It backs
// `--zip` for building structure-of-arrays style interleavings back into
// array-of-structures form.
type Zip struct {
	srcs     []ByteStream
	wordSize int
	buf      *streambuf.StreamBuf
}

// NewZip interleaves srcs at the given word size, which must be a power
// of two no greater than 16.
func NewZip(srcs []ByteStream, wordSize int) *Zip {
	if len(srcs) == 0 {
		panic("bytestream: Zip requires at least one source")
	}
	if wordSize <= 0 || wordSize&(wordSize-1) != 0 || wordSize > 16 {
		panic("bytestream: Zip word size must be a power of two no greater than 16")
	}
	return &Zip{srcs: srcs, wordSize: wordSize, buf: streambuf.New()}
}

// fillAll pulls every source forward until either all are at EOF or every
// one of them has at least one whole word ready, then returns the number
// of whole words' worth of bytes available from the shortest source.
func (z *Zip) fillAll() (int, error) {
	mask := ^(z.wordSize - 1)
	for {
		allEOF := true
		bytesPerSrc := -1
		for _, s := range z.srcs {
			isEOF, n, err := s.FillBuf()
			if err != nil {
				return 0, err
			}
			allEOF = allEOF && isEOF

			aligned := n & mask
			if bytesPerSrc < 0 || aligned < bytesPerSrc {
				bytesPerSrc = aligned
			}
		}

		if allEOF || bytesPerSrc > 0 {
			return bytesPerSrc, nil
		}
		for _, s := range z.srcs {
			s.Consume(0)
		}
	}
}

func (z *Zip) gather(bytesPerSrc int, dst []byte) {
	w := z.wordSize
	pos := 0
	for off := 0; off < bytesPerSrc; off += w {
		for _, s := range z.srcs {
			copy(dst[pos:pos+w], s.AsSlice()[off:off+w])
			pos += w
		}
	}
}

func (z *Zip) FillBuf() (bool, int, error) {
	n, err := z.buf.FillBuf(func(b *[]byte) (bool, error) {
		bytesPerSrc, err := z.fillAll()
		if err != nil {
			return false, err
		}
		if bytesPerSrc == 0 {
			return false, nil
		}

		start := len(*b)
		*b = append(*b, make([]byte, len(z.srcs)*bytesPerSrc)...)
		z.gather(bytesPerSrc, (*b)[start:])

		for _, s := range z.srcs {
			s.Consume(bytesPerSrc)
		}
		return false, nil
	})
	if err != nil {
		return false, 0, err
	}
	return z.buf.IsEOF(), n, nil
}

func (z *Zip) AsSlice() []byte {
	return z.buf.AsSlice()
}

func (z *Zip) Consume(amount int) {
	z.buf.Consume(amount)
}
