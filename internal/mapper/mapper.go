package mapper

import (
	"fmt"
	"strings"
)

// segVars is the variable set available inside a segment-mapper
// expression: s is the segment's start (always 0 in local coordinates),
// e is the segment's length (one past the last valid offset).
var segVars = []string{"s", "e"}

// Anchor identifies which end of a segment an offset is measured from.
type Anchor int

const (
	// AnchorStart measures forward from the beginning of the segment.
	AnchorStart Anchor = iota
	// AnchorEnd measures backward from the end of the segment.
	AnchorEnd
)

func (a Anchor) String() string {
	if a == AnchorEnd {
		return "e"
	}
	return "s"
}

// SegmentAnchor is one resolved half of a mapper expression: "anchor +
// offset" in segment-local coordinates.
type SegmentAnchor struct {
	Anchor Anchor
	Offset int64
}

// Resolve turns the anchor into an absolute segment-local position,
// given the segment's length. The result is not clamped to [0, length]:
// callers that need a valid slice bound do that themselves.
func (a SegmentAnchor) Resolve(length int64) int64 {
	if a.Anchor == AnchorEnd {
		return length + a.Offset
	}
	return a.Offset
}

func parseAnchor(expr string, defaultAnchor Anchor) (SegmentAnchor, error) {
	expr = strings.TrimSpace(expr)
	e, err := Parse(expr, segVars, nil)
	if err != nil {
		return SegmentAnchor{}, fmt.Errorf("mapper: anchor %q: %w", expr, err)
	}
	name, offset, isVar, ok := shape(e.root)
	if !ok {
		return SegmentAnchor{}, fmt.Errorf("mapper: anchor %q must be a constant, a bare s/e, or s/e plus a constant offset", expr)
	}
	if !isVar {
		return SegmentAnchor{Anchor: defaultAnchor, Offset: offset}, nil
	}
	if name == "s" {
		return SegmentAnchor{Anchor: AnchorStart, Offset: offset}, nil
	}
	return SegmentAnchor{Anchor: AnchorEnd, Offset: offset}, nil
}

// RangeMapper is a parsed "start..end" segment expression, like
// `--extend s+3..e-1` for trimming 3 bytes off the front and 1 off the
// back of every matched segment.
type RangeMapper struct {
	Start SegmentAnchor
	End   SegmentAnchor
}

// ParseRange parses a "start..end" expression. Either side may be
// omitted ("..5", "3..", ".."); a bare start defaults to anchoring at
// the segment's beginning, a bare end defaults to anchoring at the
// segment's beginning too (so "3..10" reads as the ordinary half-open
// range [3,10), matching slice-literal intuition); an explicit `e`
// reference is required to anchor relative to the segment's end.
func ParseRange(expr string) (RangeMapper, error) {
	parts := strings.SplitN(expr, "..", 2)
	if len(parts) != 2 {
		return RangeMapper{}, fmt.Errorf("mapper: range %q must contain \"..\"", expr)
	}

	start := SegmentAnchor{Anchor: AnchorStart, Offset: 0}
	if s := strings.TrimSpace(parts[0]); s != "" {
		a, err := parseAnchor(s, AnchorStart)
		if err != nil {
			return RangeMapper{}, err
		}
		start = a
	}

	end := SegmentAnchor{Anchor: AnchorEnd, Offset: 0}
	if s := strings.TrimSpace(parts[1]); s != "" {
		a, err := parseAnchor(s, AnchorStart)
		if err != nil {
			return RangeMapper{}, err
		}
		end = a
	}

	return RangeMapper{Start: start, End: end}, nil
}

// HasRightAnchor reports whether either bound is measured from the
// segment's end, meaning the full segment length must be known before
// the range can be resolved.
func (m RangeMapper) HasRightAnchor() bool {
	return m.Start.Anchor == AnchorEnd || m.End.Anchor == AnchorEnd
}

// BodyLen returns the number of bytes this range keeps from the front
// of a segment when both bounds are start-anchored. It returns 0 when
// the start bound is end-anchored, and -1 when only the end bound is
// (the length then depends on the segment's total length).
func (m RangeMapper) BodyLen() int64 {
	if m.Start.Anchor != AnchorStart {
		return 0
	}
	if m.End.Anchor == AnchorStart {
		n := m.End.Offset - m.Start.Offset
		if n < 0 {
			return 0
		}
		return n
	}
	return -1 // end is right-anchored; body length depends on total length
}

// Resolve computes absolute [start, end) bounds within a segment of the
// given length, clamped to a valid non-negative, non-decreasing pair.
func (m RangeMapper) Resolve(length int64) (start, end int64) {
	start = m.Start.Resolve(length)
	end = m.End.Resolve(length)
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	if end > length {
		end = length
	}
	if start > length {
		start = length
	}
	return start, end
}
