package ndproc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"nd/internal/bytestream"
)

func drainAll(t *testing.T, src bytestream.RawSource) []byte {
	t.Helper()
	s := bytestream.NewEofStream(src)
	var out []byte
	for {
		isEOF, n, err := s.FillBuf()
		require.NoError(t, err)
		if n > 0 {
			out = append(out, s.AsSlice()[:n]...)
			s.Consume(n)
			continue
		}
		if isEOF {
			return out
		}
		s.Consume(0)
	}
}

func TestSubprocessEchoesWrittenBytes(t *testing.T) {
	s, err := Start("cat")
	require.NoError(t, err)

	_, err = s.Write([]byte("hello patch"))
	require.NoError(t, err)
	require.NoError(t, s.CloseWrite())

	out := drainAll(t, s.Stdout())
	require.Equal(t, "hello patch", string(out))
	require.NoError(t, s.Wait())
}

func TestSubprocessWaitReportsNonZeroExit(t *testing.T) {
	s, err := Start("exit 7")
	require.NoError(t, err)
	require.NoError(t, s.CloseWrite())

	drainAll(t, s.Stdout())
	require.Error(t, s.Wait())
}
