package segstream

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"nd/internal/mapper"
)

// fixedSegSrc hands its entire segment list to the first caller and
// reports EOF immediately, for transformer tests that don't care about
// chunk boundaries.
type fixedSegSrc struct {
	b    []byte
	segs []Segment
}

func (f *fixedSegSrc) FillSegmentBuf() (bool, int, int, int, error) {
	return true, len(f.b), len(f.segs), len(f.b), nil
}
func (f *fixedSegSrc) AsSlices() ([]byte, []Segment) { return f.b, f.segs }
func (f *fixedSegSrc) Consume(bytes int) (int, int)  { return bytes, len(f.segs) }

func TestMergeStreamCombinesOverlappingWidenedSegments(t *testing.T) {
	src := &fixedSegSrc{b: make([]byte, 20), segs: []Segment{{Pos: 0, Len: 3}, {Pos: 4, Len: 3}, {Pos: 10, Len: 2}}}
	m := NewMergeStream(src, 0, 2, 1)

	_, _, count, _, err := m.FillSegmentBuf()
	require.NoError(t, err)
	_, segs := m.AsSlices()
	require.Equal(t, []Segment{{Pos: 0, Len: 9}, {Pos: 10, Len: 4}}, segs[:count])
}

func TestAndStreamIntersectsConsecutiveSegments(t *testing.T) {
	src := &fixedSegSrc{b: make([]byte, 20), segs: []Segment{{Pos: 0, Len: 5}, {Pos: 3, Len: 8}}}
	a := NewAndStream(src, 0, 0, 1)

	_, _, count, _, err := a.FillSegmentBuf()
	require.NoError(t, err)
	_, segs := a.AsSlices()
	require.Equal(t, []Segment{{Pos: 3, Len: 2}}, segs[:count])
}

func TestExtendStreamAppliesEachMapperAndReorders(t *testing.T) {
	src := &fixedSegSrc{b: make([]byte, 20), segs: []Segment{{Pos: 0, Len: 10}}}
	r1, err := mapper.ParseRange("6..8")
	require.NoError(t, err)
	r2, err := mapper.ParseRange("1..3")
	require.NoError(t, err)
	e := NewExtendStream(src, []mapper.RangeMapper{r1, r2})

	_, _, count, _, err := e.FillSegmentBuf()
	require.NoError(t, err)
	_, segs := e.AsSlices()
	require.Equal(t, []Segment{{Pos: 1, Len: 2}, {Pos: 6, Len: 2}}, segs[:count])
}

func TestBridgeStreamEmitsGapsBetweenSegments(t *testing.T) {
	src := &fixedSegSrc{b: make([]byte, 20), segs: []Segment{{Pos: 0, Len: 3}, {Pos: 5, Len: 3}, {Pos: 10, Len: 2}}}
	br := NewBridgeStream(src, 0, 0)

	_, _, count, _, err := br.FillSegmentBuf()
	require.NoError(t, err)
	_, segs := br.AsSlices()
	require.Equal(t, []Segment{{Pos: 3, Len: 2}, {Pos: 8, Len: 2}}, segs[:count])
}

func TestRegexRefineSplitsSegmentsOnMatches(t *testing.T) {
	src := &fixedSegSrc{b: []byte("abXcdXef"), segs: []Segment{{Pos: 0, Len: 8}}}
	r := NewRegexRefine(src, regexp.MustCompile("X"))

	_, _, count, _, err := r.FillSegmentBuf()
	require.NoError(t, err)
	_, segs := r.AsSlices()
	require.Equal(t, []Segment{{Pos: 2, Len: 1}, {Pos: 5, Len: 1}}, segs[:count])
}
