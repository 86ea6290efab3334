package bytestream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// chunkSource is a RawSource that reveals pattern chunkSize bytes at a
// time: each FillBuf call grows the currently-visible window until it
// covers everything left unconsumed, then stabilizes (signalling EOF to
// an EofStream wrapper once two fills in a row report the same length).
type chunkSource struct {
	pattern   []byte
	pos       int
	avail     int
	chunkSize int
}

func (c *chunkSource) FillBuf() (int, error) {
	remaining := len(c.pattern) - c.pos
	if c.avail < remaining {
		c.avail += c.chunkSize
		if c.avail > remaining {
			c.avail = remaining
		}
	}
	return c.avail, nil
}

func (c *chunkSource) AsSlice() []byte {
	return c.pattern[c.pos:]
}

func (c *chunkSource) Consume(amount int) {
	c.pos += amount
	c.avail -= amount
	if c.avail < 0 {
		c.avail = 0
	}
}

func TestEofStreamHalfByHalf(t *testing.T) {
	pattern := bytes.Repeat([]byte("abc"), 1000)
	src := NewEofStream(&chunkSource{pattern: pattern, chunkSize: 17})

	var drain []byte
	for len(drain) < len(pattern) {
		isEOF, n, err := src.FillBuf()
		require.NoError(t, err)
		require.True(t, isEOF) // chunkSource has no genuine partial-read boundary
		if n == 0 {
			break
		}

		half := (n + 1) / 2
		drain = append(drain, src.AsSlice()[:half]...)
		src.Consume(half)
	}

	require.Equal(t, pattern, drain)

	isEOF, n, err := src.FillBuf()
	require.NoError(t, err)
	require.True(t, isEOF)
	require.Equal(t, 0, n)
}

func TestRawStreamReadsThrough(t *testing.T) {
	pattern := strings.Repeat("abcdefgh", 5000)
	r := NewRaw(strings.NewReader(pattern), 1)

	var drain []byte
	for {
		n, err := r.FillBuf()
		require.NoError(t, err)
		if n == len(drain) {
			break
		}
		drain = append(drain[:0], r.AsSlice()[:n]...)
		r.Consume(0)
	}

	require.Equal(t, pattern, string(drain))
}

func TestCatConcatenatesAcrossSeams(t *testing.T) {
	parts := [][]byte{
		[]byte("hello "),
		[]byte(""),
		[]byte("cruel "),
		[]byte("world"),
	}
	expected := []byte("hello cruel world")

	srcs := make([]ByteStream, len(parts))
	for i, p := range parts {
		srcs[i] = NewEofStream(&chunkSource{pattern: p, chunkSize: 2})
	}
	cat := NewCat(srcs)

	var drain []byte
	for len(drain) < len(expected) {
		isEOF, n, err := cat.FillBuf()
		require.NoError(t, err)
		if n == 0 {
			require.True(t, isEOF)
			break
		}

		take := n
		if take > 3 {
			take = 3
		}
		drain = append(drain, cat.AsSlice()[:take]...)
		cat.Consume(take)
	}

	require.Equal(t, expected, drain)
}
