// Package segstream implements the segment-producing and
// segment-transforming half of the pipeline: streams of byte ranges
// over an underlying byte window, the way internal/bytestream streams
// the bytes themselves.
package segstream

import "nd/internal/bytestream"

// Segment names a byte range [Pos, Pos+Len) within the window currently
// exposed by a SegmentStream's AsSlices.
type Segment struct {
	Pos int64
	Len int64
}

// SegmentStream is the segment-layer analogue of bytestream.ByteStream.
// FillSegmentBuf grows the window and returns how many bytes and
// segments are now available, plus a maxConsume watermark: the producer
// promises no future segment will ever reference a byte before
// maxConsume, so a caller may safely drop cached bytes up to there even
// before consuming the segments that cover them (used by lazily
// resolved producers like ConstSlicer).
//
// After Consume(n), every remaining segment's Pos is reduced by n; any
// segment that started before n is dropped, since it must have been
// fully covered by the released bytes.
type SegmentStream interface {
	FillSegmentBuf() (isEOF bool, bytes int, count int, maxConsume int, err error)
	AsSlices() ([]byte, []Segment)
	Consume(bytes int) (bytesConsumed int, segmentsConsumed int)
}

// window is the shared bookkeeping every producer embeds: an
// underlying byte source plus the list of segments positioned relative
// to that source's current window.
type window struct {
	src  bytestream.ByteStream
	segs []Segment
}

func (w *window) asSlices() ([]byte, []Segment) {
	return w.src.AsSlice(), w.segs
}

// consumeBytes advances the byte window by n, dropping and
// repositioning segments the way the SegmentStream contract requires.
func (w *window) consumeBytes(n int) (int, int) {
	w.src.Consume(n)
	cut := 0
	for cut < len(w.segs) && w.segs[cut].Pos < int64(n) {
		cut++
	}
	kept := w.segs[cut:]
	for i := range kept {
		kept[i].Pos -= int64(n)
	}
	w.segs = append(w.segs[:0:0], kept...)
	return n, cut
}
