package segstream

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"nd/internal/bytestream"
	"nd/internal/walkexpr"
)

func TestRegexSlicerEmitsNonOverlappingMatches(t *testing.T) {
	src := bytestream.NewEofStream(&countingRaw{data: []byte("aXbXcXd")})
	s := NewRegexSlicer(src, regexp.MustCompile("X"))

	segs := drainSegments(t, s)
	require.Equal(t, []Segment{{Pos: 1, Len: 1}, {Pos: 3, Len: 1}, {Pos: 5, Len: 1}}, segs)
}

func TestExactMatchSlicerFindsEveryOccurrence(t *testing.T) {
	src := bytestream.NewEofStream(&countingRaw{data: []byte("ababab")})
	s := NewExactMatchSlicer(src, []byte("ab"))

	segs := drainSegments(t, s)
	require.Equal(t, []Segment{{Pos: 0, Len: 2}, {Pos: 2, Len: 2}, {Pos: 4, Len: 2}}, segs)
}

func TestHammingSlicerRespectsBudget(t *testing.T) {
	src := bytestream.NewEofStream(&countingRaw{data: []byte("aaab")})
	s := NewHammingSlicer(src, []byte("aab"), 0)

	segs := drainSegments(t, s)
	require.Equal(t, []Segment{{Pos: 1, Len: 3}}, segs)
}

type recSrc struct {
	recs []Record
	i    int
}

func (r *recSrc) Next() (Record, bool, error) {
	if r.i >= len(r.recs) {
		return Record{}, false, nil
	}
	rec := r.recs[r.i]
	r.i++
	return rec, true, nil
}

func TestGuidedSlicerFollowsRecordOffsets(t *testing.T) {
	src := bytestream.NewEofStream(&countingRaw{data: []byte("abcdefgh")})
	recs := &recSrc{recs: []Record{{Offset: 1, Span: 3}, {Offset: 5, Span: 2}}}
	s := NewGuidedSlicer(src, recs)

	segs := drainSegments(t, s)
	require.Equal(t, []Segment{{Pos: 1, Len: 3}, {Pos: 5, Len: 2}}, segs)
}

func TestWalkSlicerAdvancesByLengthPrefix(t *testing.T) {
	// two length-prefixed records: [2 'a' 'b'] [1 'x']
	src := bytestream.NewEofStream(&countingRaw{data: []byte{2, 'a', 'b', 1, 'x'}})
	e, err := walkexpr.Parse("b[0]+1")
	require.NoError(t, err)
	w := NewWalkSlicer(src, []*walkexpr.Expr{e})

	var abs int64
	var out []Segment
	for {
		isEOF, n, count, maxConsume, err := w.FillSegmentBuf()
		require.NoError(t, err)
		if count > 0 {
			_, segs := w.AsSlices()
			batch := append([]Segment(nil), segs[:count]...)
			amt := maxConsume
			for _, s := range batch {
				if end := int(s.Pos + s.Len); end > amt {
					amt = end
				}
			}
			if amt > n {
				amt = n
			}
			consumed, _ := w.Consume(amt)
			for _, s := range batch {
				out = append(out, Segment{Pos: abs + s.Pos, Len: s.Len})
			}
			abs += int64(consumed)
			continue
		}
		if isEOF {
			break
		}
		w.Consume(0)
	}

	require.Equal(t, []Segment{{Pos: 0, Len: 3}, {Pos: 3, Len: 2}}, out)
}
