package pipeline

import (
	"fmt"
	"math"

	"nd/internal/bytestream"
	"nd/internal/mapper"
	"nd/internal/segstream"
)

// Request describes one pipeline run: the input byte source(s), the
// byte-layer stages to run before slicing, at most one slicer, and the
// segment-layer stages to run after it.
type Request struct {
	// Inputs is one or more already-wrapped primary sources. More than
	// one is only meaningful together with Zip or an implied Cat (the
	// multi-file concatenation the CLI offers when given several file
	// arguments with no --zip flag).
	Inputs []bytestream.ByteStream
	// ZipWord, if non-zero, interleaves Inputs word-by-word instead of
	// concatenating them end to end.
	ZipWord int

	// ByteNodes runs in order on the byte layer before any slicer.
	// Valid members: PadNode, SeekNode, BytesNode, ClipperNode,
	// CutNode, PatchNode.
	ByteNodes []Node
	// Patches supplies the records a PatchNode overlays. Required iff
	// ByteNodes contains a PatchNode.
	Patches bytestream.PatchSource

	// Slicer is nil (byte output, no segmentation) or exactly one of
	// WidthNode, RegexSliceNode, ExactSliceNode, HammingSliceNode,
	// GuidedSliceNode, RangeSliceNode, WalkSliceNode.
	Slicer Node
	// Guide supplies the records a GuidedSliceNode slices against.
	// Required iff Slicer is a GuidedSliceNode.
	Guide segstream.RecordSource

	// SegNodes runs in order on the segment layer after Slicer. Valid
	// members: FilterNode, ExtendNode, MergeNode, AndNode, BridgeNode,
	// RegexRefineNode.
	SegNodes []Node
}

// Result is the head of the assembled chain: exactly one of Bytes or
// Segments is set, depending on whether Request.Slicer was nil.
type Result struct {
	Bytes    bytestream.ByteStream
	Segments segstream.SegmentStream
}

// unbounded stands in for "no length limit" when lowering a Clip whose
// fused run left its length unresolved (a bare Seek, or a ClipperNode
// with Len -1).
const unbounded = math.MaxInt32

// Assemble builds the concrete stream chain named by req, running the
// optimizer's fusion passes over req.ByteNodes first.
func Assemble(req Request) (Result, error) {
	base, err := combineInputs(req.Inputs, req.ZipWord)
	if err != nil {
		return Result{}, err
	}

	cur := base
	for _, n := range optimize(req.ByteNodes) {
		cur, err = lowerByteNode(cur, n, req.Patches)
		if err != nil {
			return Result{}, err
		}
	}

	if req.Slicer == nil {
		return Result{Bytes: cur}, nil
	}

	segs, err := lowerSlicer(cur, req.Slicer, req.Guide)
	if err != nil {
		return Result{}, err
	}
	for _, n := range req.SegNodes {
		segs, err = lowerSegNode(segs, n)
		if err != nil {
			return Result{}, err
		}
	}
	return Result{Segments: segs}, nil
}

func combineInputs(inputs []bytestream.ByteStream, zipWord int) (bytestream.ByteStream, error) {
	switch {
	case len(inputs) == 0:
		return nil, fmt.Errorf("pipeline: no input stream given")
	case len(inputs) == 1:
		return inputs[0], nil
	case zipWord > 0:
		return bytestream.NewZip(inputs, zipWord), nil
	default:
		return bytestream.NewCat(inputs), nil
	}
}

func zeroPad(n int64) bytestream.ByteStream {
	return bytestream.NewClip(bytestream.NewZero(int(n)), 0, int(n), 0)
}

func lowerByteNode(cur bytestream.ByteStream, n Node, patches bytestream.PatchSource) (bytestream.ByteStream, error) {
	switch v := n.(type) {
	case PadNode:
		parts := make([]bytestream.ByteStream, 0, 3)
		if v.Left > 0 {
			parts = append(parts, zeroPad(v.Left))
		}
		parts = append(parts, cur)
		if v.Right > 0 {
			parts = append(parts, zeroPad(v.Right))
		}
		if len(parts) == 1 {
			return cur, nil
		}
		return bytestream.NewCat(parts), nil

	case SeekNode:
		return bytestream.NewClip(cur, int(v.N), unbounded, 0), nil

	case BytesNode:
		return bytestream.NewCut(cur, []mapper.RangeMapper{v.Range}), nil

	case ClipperNode:
		length := unbounded
		if v.Len >= 0 {
			length = int(v.Len)
		}
		return bytestream.NewClip(cur, int(v.Skip), length, int(v.Strip)), nil

	case CutNode:
		return bytestream.NewCut(cur, v.Ranges), nil

	case PatchNode:
		if patches == nil {
			return nil, fmt.Errorf("pipeline: patch stage requires a patch source")
		}
		return bytestream.NewPatch(cur, patches), nil

	default:
		return nil, fmt.Errorf("pipeline: %T is not a byte-layer stage", n)
	}
}

func lowerSlicer(cur bytestream.ByteStream, n Node, guide segstream.RecordSource) (segstream.SegmentStream, error) {
	switch v := n.(type) {
	case WidthNode:
		return segstream.NewConstSlicer(cur, v.Pitch, v.Span, v.HeadOpen, v.TailOpen), nil
	case RegexSliceNode:
		return segstream.NewRegexSlicer(cur, v.Pattern), nil
	case ExactSliceNode:
		return segstream.NewExactMatchSlicer(cur, v.Literal), nil
	case HammingSliceNode:
		return segstream.NewHammingSlicer(cur, v.Literal, v.Budget), nil
	case GuidedSliceNode:
		if guide == nil {
			return nil, fmt.Errorf("pipeline: guided slicer requires a guide source")
		}
		return segstream.NewGuidedSlicer(cur, guide), nil
	case RangeSliceNode:
		return segstream.NewRangeSlicer(cur, v.Ranges), nil
	case WalkSliceNode:
		return segstream.NewWalkSlicer(cur, v.Exprs), nil
	default:
		return nil, fmt.Errorf("pipeline: %T is not a slicer stage", n)
	}
}

func lowerSegNode(cur segstream.SegmentStream, n Node) (segstream.SegmentStream, error) {
	switch v := n.(type) {
	case FilterNode:
		return segstream.NewFilterStream(cur, v.Ranges), nil
	case ExtendNode:
		return segstream.NewExtendStream(cur, v.Mappers), nil
	case MergeNode:
		return segstream.NewMergeStream(cur, v.ExtL, v.ExtR, v.MinOverlap), nil
	case AndNode:
		return segstream.NewAndStream(cur, v.ExtL, v.ExtR, v.MinOverlap), nil
	case BridgeNode:
		return segstream.NewBridgeStream(cur, v.OffL, v.OffR), nil
	case RegexRefineNode:
		return segstream.NewRegexRefine(cur, v.Pattern), nil
	default:
		return nil, fmt.Errorf("pipeline: %T is not a segment-layer stage", n)
	}
}
