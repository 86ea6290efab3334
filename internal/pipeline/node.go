// Package pipeline assembles the CLI's requested stages into a concrete
// chain of bytestream/segstream objects, runs a greedy rewrite pass
// over the byte-layer stage list first, and drains the result to a
// sink.
package pipeline

import (
	"regexp"

	"nd/internal/mapper"
	"nd/internal/walkexpr"
)

// Node is one pipeline stage, tagged by its concrete Go type (the sum
// type the assembler pattern-matches over with a type switch, in place
// of a vtable-dispatched trait object).
type Node interface {
	node()
}

// PadNode adds l virtual zero bytes before the stream and r after it.
type PadNode struct{ Left, Right int64 }

// SeekNode skips n bytes from the front of the stream.
type SeekNode struct{ N int64 }

// BytesNode keeps only the range named by Range, evaluated against the
// (possibly unknown until EOF) stream length.
type BytesNode struct{ Range mapper.RangeMapper }

// ClipperNode is the fused form of a Seek/Bytes run: skip Skip
// bytes, keep at most Len of what follows, then hold back Strip bytes
// from the tail.
type ClipperNode struct {
	Skip, Len, Strip int64
}

// CutNode keeps only the byte ranges named by Ranges.
type CutNode struct{ Ranges []mapper.RangeMapper }

// PatchNode overlays patch records (parsed from a side stream supplied
// by the assembler) onto the primary stream.
type PatchNode struct{}

// WidthNode slices the stream at a fixed pitch/span.
type WidthNode struct {
	Pitch, Span        int64
	HeadOpen, TailOpen bool
}

// RegexSliceNode emits one segment per regex match.
type RegexSliceNode struct{ Pattern *regexp.Regexp }

// ExactSliceNode emits one segment per exact literal match.
type ExactSliceNode struct{ Literal []byte }

// HammingSliceNode emits one segment per approximate match within a
// Hamming-distance budget.
type HammingSliceNode struct {
	Literal []byte
	Budget  int
}

// GuidedSliceNode emits one segment per (offset, span) record read from
// a side stream supplied by the assembler.
type GuidedSliceNode struct{}

// RangeSliceNode materializes Ranges directly as segments.
type RangeSliceNode struct{ Ranges []mapper.RangeMapper }

// WalkSliceNode evaluates Exprs to advance a walk pointer.
type WalkSliceNode struct{ Exprs []*walkexpr.Expr }

// FilterNode retains only segments whose running index falls in Ranges.
type FilterNode struct{ Ranges []mapper.RangeMapper }

// ExtendNode applies each of Mappers to every input segment.
type ExtendNode struct{ Mappers []mapper.RangeMapper }

// MergeNode merges consecutive segments whose extended spans overlap by
// at least MinOverlap bytes.
type MergeNode struct{ ExtL, ExtR, MinOverlap int64 }

// AndNode intersects consecutive segments, extended by (ExtL, ExtR).
type AndNode struct{ ExtL, ExtR, MinOverlap int64 }

// BridgeNode inverts the segment stream, emitting the gaps between
// segments.
type BridgeNode struct{ OffL, OffR int64 }

// RegexRefineNode replaces each segment with its regex matches.
type RegexRefineNode struct{ Pattern *regexp.Regexp }

func (PadNode) node()          {}
func (SeekNode) node()         {}
func (BytesNode) node()        {}
func (ClipperNode) node()      {}
func (CutNode) node()          {}
func (PatchNode) node()        {}
func (WidthNode) node()        {}
func (RegexSliceNode) node()   {}
func (ExactSliceNode) node()   {}
func (HammingSliceNode) node() {}
func (GuidedSliceNode) node()  {}
func (RangeSliceNode) node()   {}
func (WalkSliceNode) node()    {}
func (FilterNode) node()       {}
func (ExtendNode) node()       {}
func (MergeNode) node()        {}
func (AndNode) node()          {}
func (BridgeNode) node()       {}
func (RegexRefineNode) node()  {}
