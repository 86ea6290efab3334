package bytestream

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestTeeMirrorsConsumedBytesToCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache, err := NewTeeCache(fs, "/spill")
	require.NoError(t, err)

	src := NewEofStream(NewRaw(strings.NewReader("hello world"), 1))
	tee := NewTee(src, cache)

	var drain []byte
	for {
		isEOF, n, err := tee.FillBuf()
		require.NoError(t, err)
		if n == 0 {
			require.True(t, isEOF)
			break
		}
		take := n
		if take > 4 {
			take = 4
		}
		drain = append(drain, tee.AsSlice()[:take]...)
		tee.Consume(take)
	}
	require.NoError(t, cache.Close())
	require.Equal(t, "hello world", string(drain))

	reader, err := NewCacheReader(fs, "/spill", cache)
	require.NoError(t, err)
	ro := NewEofStream(reader)

	var replay []byte
	for {
		isEOF, n, err := ro.FillBuf()
		require.NoError(t, err)
		if n == 0 && isEOF {
			break
		}
		replay = append(replay, ro.AsSlice()[:n]...)
		ro.Consume(n)
		if isEOF {
			break
		}
	}
	require.Equal(t, "hello world", string(replay))
}
