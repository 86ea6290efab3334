package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
	"nd/internal/mapper"
)

func mustRange(t *testing.T, expr string) mapper.RangeMapper {
	t.Helper()
	r, err := mapper.ParseRange(expr)
	require.NoError(t, err)
	return r
}

func TestFuseClipsCollapsesSeekAndLeftAnchoredBytes(t *testing.T) {
	nodes := []Node{
		SeekNode{N: 10},
		BytesNode{Range: mustRange(t, "0..5")},
	}
	got := fuseClips(nodes)
	require.Equal(t, []Node{ClipperNode{Skip: 10, Len: 5}}, got)
}

func TestFuseClipsLeavesBareSeekUnbounded(t *testing.T) {
	nodes := []Node{SeekNode{N: 4}}
	got := fuseClips(nodes)
	require.Equal(t, []Node{ClipperNode{Skip: 4, Len: -1}}, got)
}

func TestFuseClipsSkipsRightAnchoredBytes(t *testing.T) {
	nodes := []Node{
		SeekNode{N: 2},
		BytesNode{Range: mustRange(t, "0..e-1")},
	}
	got := fuseClips(nodes)
	require.Equal(t, []Node{ClipperNode{Skip: 2, Len: -1}, BytesNode{Range: mustRange(t, "0..e-1")}}, got)
}

func TestFuseClipsLeavesPadAlone(t *testing.T) {
	nodes := []Node{PadNode{Left: 4}, SeekNode{N: 2}}
	got := fuseClips(nodes)
	require.Equal(t, []Node{PadNode{Left: 4}, ClipperNode{Skip: 2, Len: -1}}, got)
}
