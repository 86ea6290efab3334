package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"nd/internal/bytestream"
	"nd/internal/mapper"
	"nd/internal/segstream"
)

func drainBytes(t *testing.T, s bytestream.ByteStream) []byte {
	t.Helper()
	var out []byte
	for {
		isEOF, n, err := s.FillBuf()
		require.NoError(t, err)
		if n > 0 {
			out = append(out, s.AsSlice()[:n]...)
			s.Consume(n)
		} else if isEOF {
			break
		} else {
			s.Consume(0)
		}
	}
	return out
}

func rawInput(s string) bytestream.ByteStream {
	return bytestream.NewEofStream(bytestream.NewRaw(strings.NewReader(s), 1))
}

func TestAssembleFusesSeekAndBytesIntoClip(t *testing.T) {
	req := Request{
		Inputs: []bytestream.ByteStream{rawInput("0123456789abcdef")},
		ByteNodes: []Node{
			SeekNode{N: 3},
			BytesNode{Range: mustRange(t, "0..4")},
		},
	}
	res, err := Assemble(req)
	require.NoError(t, err)
	require.NotNil(t, res.Bytes)
	require.Nil(t, res.Segments)

	got := drainBytes(t, res.Bytes)
	require.Equal(t, "3456", string(got))
}

func TestAssembleCutWithoutSlicerYieldsByteStream(t *testing.T) {
	req := Request{
		Inputs: []bytestream.ByteStream{rawInput("0123456789")},
		ByteNodes: []Node{
			CutNode{Ranges: []mapper.RangeMapper{mustRange(t, "0..2"), mustRange(t, "e-2..e")}},
		},
	}
	res, err := Assemble(req)
	require.NoError(t, err)
	got := drainBytes(t, res.Bytes)
	require.Equal(t, "0189", string(got))
}

func TestAssembleZipsMultipleInputs(t *testing.T) {
	req := Request{
		Inputs:  []bytestream.ByteStream{rawInput("ABCDEF"), rawInput("123456")},
		ZipWord: 2,
	}
	res, err := Assemble(req)
	require.NoError(t, err)
	got := drainBytes(t, res.Bytes)
	require.Equal(t, "AB12CD34EF56", string(got))
}

func drainPipelineSegments(t *testing.T, s segstream.SegmentStream) []string {
	t.Helper()
	var out []string
	for {
		isEOF, n, count, maxConsume, err := s.FillSegmentBuf()
		require.NoError(t, err)
		if count > 0 {
			b, segs := s.AsSlices()
			batch := append([]segstream.Segment(nil), segs[:count]...)
			for _, sg := range batch {
				out = append(out, string(b[sg.Pos:sg.Pos+sg.Len]))
			}
			amt := maxConsume
			for _, sg := range batch {
				if end := int(sg.Pos + sg.Len); end > amt {
					amt = end
				}
			}
			if amt > n {
				amt = n
			}
			s.Consume(amt)
			continue
		}
		if isEOF {
			break
		}
		s.Consume(0)
	}
	return out
}

func TestAssembleWidthSlicerProducesSegments(t *testing.T) {
	req := Request{
		Inputs: []bytestream.ByteStream{rawInput("0123456789")},
		Slicer: WidthNode{Pitch: 4, Span: 4, TailOpen: true},
	}
	res, err := Assemble(req)
	require.NoError(t, err)
	require.Nil(t, res.Bytes)
	require.NotNil(t, res.Segments)

	require.Equal(t, []string{"0123", "4567", "89"}, drainPipelineSegments(t, res.Segments))
}

func TestAssembleRejectsPatchNodeWithoutPatchSource(t *testing.T) {
	req := Request{
		Inputs:    []bytestream.ByteStream{rawInput("0123456789")},
		ByteNodes: []Node{PatchNode{}},
	}
	_, err := Assemble(req)
	require.Error(t, err)
}

func TestAssembleRejectsGuidedSlicerWithoutGuideSource(t *testing.T) {
	req := Request{
		Inputs: []bytestream.ByteStream{rawInput("0123456789")},
		Slicer: GuidedSliceNode{},
	}
	_, err := Assemble(req)
	require.Error(t, err)
}
