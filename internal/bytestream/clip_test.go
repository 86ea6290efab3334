package bytestream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func drainClip(t *testing.T, c *Clip) []byte {
	t.Helper()
	var out []byte
	for {
		isEOF, n, err := c.FillBuf()
		require.NoError(t, err)
		if n > 0 {
			out = append(out, c.AsSlice()[:n]...)
			c.Consume(n)
		} else if isEOF {
			break
		} else {
			c.Consume(0)
		}
	}
	return out
}

func TestClipSkipsAndBoundsLength(t *testing.T) {
	src := NewEofStream(NewRaw(strings.NewReader("0123456789"), 1))
	c := NewClip(src, 2, 5, 1)

	got := drainClip(t, c)
	require.Equal(t, "23456", string(got))
}

func TestClipWithNoStripKeepsWholeWindow(t *testing.T) {
	src := NewEofStream(NewRaw(strings.NewReader("abcdefgh"), 1))
	c := NewClip(src, 3, 100, 0)

	got := drainClip(t, c)
	require.Equal(t, "defgh", string(got))
}

func TestClipSkipPastEndYieldsNothing(t *testing.T) {
	src := NewEofStream(NewRaw(strings.NewReader("abc"), 1))
	c := NewClip(src, 10, 5, 0)

	got := drainClip(t, c)
	require.Empty(t, got)
}

func TestClipStripLargerThanWindowYieldsNothing(t *testing.T) {
	src := NewEofStream(NewRaw(strings.NewReader("abcdef"), 1))
	c := NewClip(src, 0, 100, 10)

	got := drainClip(t, c)
	require.Empty(t, got)
}
