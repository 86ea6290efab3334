package bytestream

// Clip skips the first skip bytes of src, exposes at most length bytes
// after that, and holds back the last strip bytes of src itself (strip
// counts from the end of the source stream, not from the end of the
// length-bounded window). It reports EOF once length bytes have been
// consumed. It backs the assembler's Seek and Clipper stages and the
// fixed-length zero runs that --pad splices around the source.
type Clip struct {
	src    ByteStream
	skip   int
	rem    int
	strip  int
}

// NewClip wraps src, skipping skip bytes, exposing at most length bytes
// after that, with the final strip bytes of src hidden.
func NewClip(src ByteStream, skip, length, strip int) *Clip {
	return &Clip{src: src, skip: skip, rem: length, strip: strip}
}

func (c *Clip) FillBuf() (bool, int, error) {
	for c.skip > 0 {
		isEOF, n, err := c.src.FillBuf()
		if err != nil {
			return false, 0, err
		}
		consumeLen := c.skip
		if n < consumeLen {
			consumeLen = n
		}
		c.src.Consume(consumeLen)
		c.skip -= consumeLen

		if isEOF {
			break
		}
	}

	if c.rem <= 0 {
		return true, 0, nil
	}

	for {
		isEOF, n, err := c.src.FillBuf()
		if err != nil {
			return false, 0, err
		}
		if isEOF || n > c.strip {
			avail := n - c.strip
			if avail < 0 {
				avail = 0
			}
			if avail > c.rem {
				avail = c.rem
			}
			return isEOF, avail, nil
		}
		c.src.Consume(0)
	}
}

func (c *Clip) AsSlice() []byte {
	return c.src.AsSlice()
}

func (c *Clip) Consume(amount int) {
	c.rem -= amount
	c.src.Consume(amount)
}
