package hextext

import (
	"testing"

	"github.com/stretchr/testify/require"
	"nd/internal/segstream"
)

// oneShotSegSrc hands its whole segment list to the first caller and
// reports EOF immediately, mirroring the fixedSegSrc helper used to test
// segstream's own transformers.
type oneShotSegSrc struct {
	b    []byte
	segs []segstream.Segment
}

func (s *oneShotSegSrc) FillSegmentBuf() (bool, int, int, int, error) {
	return true, len(s.b), len(s.segs), len(s.b), nil
}
func (s *oneShotSegSrc) AsSlices() ([]byte, []segstream.Segment) { return s.b, s.segs }
func (s *oneShotSegSrc) Consume(bytes int) (int, int)            { return bytes, len(s.segs) }

func TestFormatterRendersLineWithoutPadding(t *testing.T) {
	src := &oneShotSegSrc{b: []byte{0x41, 0x42}, segs: []segstream.Segment{{Pos: 0, Len: 2}}}
	f := NewFormatter(src, 0x10, 2)

	_, n, count, _, err := f.FillSegmentBuf()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	buf, segs := f.AsSlices()
	require.Equal(t, []segstream.Segment{{Pos: 0, Len: int64(n)}}, segs)
	require.Equal(t, "000000000010 02 | 41 42 | AB\n", string(buf[:n]))
}

func TestFormatterPadsShortSegmentToWidth(t *testing.T) {
	src := &oneShotSegSrc{b: []byte{0xaa}, segs: []segstream.Segment{{Pos: 0, Len: 1}}}
	f := NewFormatter(src, 0x20, 3)

	_, n, count, _, err := f.FillSegmentBuf()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	buf, _ := f.AsSlices()
	require.Equal(t, "000000000020 01 | aa       | .  \n", string(buf[:n]))
}
