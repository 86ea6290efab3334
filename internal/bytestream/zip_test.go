package bytestream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func drainZip(t *testing.T, z *Zip) []byte {
	t.Helper()
	var out []byte
	for {
		isEOF, n, err := z.FillBuf()
		require.NoError(t, err)
		if n > 0 {
			out = append(out, z.AsSlice()[:n]...)
			z.Consume(n)
		} else if isEOF {
			break
		} else {
			z.Consume(0)
		}
	}
	return out
}

func TestZipInterleavesEqualLengthSources(t *testing.T) {
	a := NewEofStream(NewRaw(strings.NewReader("ABCDEF"), 1))
	b := NewEofStream(NewRaw(strings.NewReader("123456"), 1))
	z := NewZip([]ByteStream{a, b}, 2)

	got := drainZip(t, z)
	require.Equal(t, "AB12CD34EF56", string(got))
}

func TestZipTruncatesToShortestWholeWordCount(t *testing.T) {
	a := NewEofStream(NewRaw(strings.NewReader("ABCD"), 1))
	b := NewEofStream(NewRaw(strings.NewReader("123456"), 1))
	z := NewZip([]ByteStream{a, b}, 2)

	got := drainZip(t, z)
	require.Equal(t, "AB12CD34", string(got))
}

func TestZipSingleSourceIsIdentity(t *testing.T) {
	a := NewEofStream(NewRaw(strings.NewReader("hello!"), 1))
	z := NewZip([]ByteStream{a}, 2)

	got := drainZip(t, z)
	require.Equal(t, "hello!", string(got))
}

func TestZipPanicsOnNonPowerOfTwoWordSize(t *testing.T) {
	a := NewEofStream(NewRaw(strings.NewReader("abcd"), 1))
	require.Panics(t, func() { NewZip([]ByteStream{a}, 3) })
}
