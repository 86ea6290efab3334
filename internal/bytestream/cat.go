package bytestream

import "nd/internal/streambuf"

// Cat concatenates several ByteStreams into one. Away from a source
// boundary it delegates straight through to the current source's own
// buffer, so most of a long single-source run costs nothing extra; only
// the bytes around a seam between two sources get copied into its own
// cache, so a caller never sees a short window right where one source
// ends and the next begins.
type Cat struct {
	srcs    []ByteStream
	i       int
	cache   *streambuf.StreamBuf
	caching bool
}

// NewCat returns a Cat over srcs, read in order.
func NewCat(srcs []ByteStream) *Cat {
	return &Cat{srcs: srcs, cache: streambuf.New()}
}

func (c *Cat) FillBuf() (bool, int, error) {
	if c.caching || c.cache.Len() > 0 {
		return c.fillCache()
	}
	if c.i >= len(c.srcs) {
		return true, 0, nil
	}

	isEOF, n, err := c.srcs[c.i].FillBuf()
	if err != nil {
		return false, 0, err
	}
	if !isEOF {
		return false, n, nil
	}

	// current source is exhausted: splice its tail and the next
	// source's head together in the cache
	c.caching = true
	stream := c.srcs[c.i].AsSlice()
	c.cache.ExtendFromSlice(stream[:n])
	c.srcs[c.i].Consume(n)
	c.i++

	return c.fillCache()
}

func (c *Cat) fillCache() (bool, int, error) {
	var ferr error
	n, err := c.cache.FillBuf(func(b *[]byte) (bool, error) {
		if c.i >= len(c.srcs) {
			return false, nil
		}

		isEOF, nn, err := c.srcs[c.i].FillBuf()
		if err != nil {
			ferr = err
			return false, nil
		}

		stream := c.srcs[c.i].AsSlice()
		*b = append(*b, stream[:nn]...)
		c.srcs[c.i].Consume(nn)
		if isEOF {
			c.i++
			// an exhausted source that wasn't the last one shouldn't
			// read as "no progress" to the caller: there's more to
			// pull immediately, so ask for another round straight away
			return c.i < len(c.srcs), nil
		}
		return false, nil
	})
	if err != nil {
		return false, 0, err
	}
	if ferr != nil {
		return false, 0, ferr
	}

	return c.i >= len(c.srcs), n, nil
}

func (c *Cat) AsSlice() []byte {
	if !c.caching && c.cache.Len() == 0 && c.i < len(c.srcs) {
		return c.srcs[c.i].AsSlice()
	}
	return c.cache.AsSlice()
}

func (c *Cat) Consume(amount int) {
	if !c.caching && c.cache.Len() == 0 && c.i < len(c.srcs) {
		c.srcs[c.i].Consume(amount)
		return
	}

	c.cache.Consume(amount)
	if c.cache.Len() == 0 {
		c.caching = false
	}
}
