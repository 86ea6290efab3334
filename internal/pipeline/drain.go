package pipeline

import (
	"fmt"
	"io"

	"nd/internal/bytestream"
	"nd/internal/segstream"
)

// DrainBytes pulls src to EOF, writing every byte it yields to dst in
// the order it flows through the pipeline.
func DrainBytes(dst io.Writer, src bytestream.ByteStream) error {
	for {
		isEOF, n, err := src.FillBuf()
		if err != nil {
			return err
		}
		if n > 0 {
			if _, err := dst.Write(src.AsSlice()[:n]); err != nil {
				return fmt.Errorf("pipeline: write: %w", err)
			}
			src.Consume(n)
			continue
		}
		if isEOF {
			return nil
		}
		src.Consume(0)
	}
}

// DrainSegments pulls src to EOF, writing each segment's bytes to dst
// in order. This serves both a direct segment-extraction sink (raw
// bytes of each selected range) and a formatter-backed sink, since
// hextext.Formatter already renders its output as segments over its own
// byte buffer — draining it is the same "copy each segment" loop
// either way.
//
// maxConsume is only a lower bound on what's safe to drop (no later
// segment will reference an earlier byte); it does not necessarily
// cover the segments just read, so this drains through the furthest
// byte any just-read segment touches, not just maxConsume.
func DrainSegments(dst io.Writer, src segstream.SegmentStream) error {
	for {
		isEOF, n, count, maxConsume, err := src.FillSegmentBuf()
		if err != nil {
			return err
		}
		if count > 0 {
			b, segs := src.AsSlices()
			amt := maxConsume
			for _, seg := range segs[:count] {
				if _, err := dst.Write(b[seg.Pos : seg.Pos+seg.Len]); err != nil {
					return fmt.Errorf("pipeline: write: %w", err)
				}
				if end := int(seg.Pos + seg.Len); end > amt {
					amt = end
				}
			}
			if amt > n {
				amt = n
			}
			src.Consume(amt)
			continue
		}
		if isEOF {
			return nil
		}
		src.Consume(0)
	}
}

// Drain writes res to dst, dispatching to DrainBytes or DrainSegments
// depending on which half of res Assemble populated.
func Drain(dst io.Writer, res Result) error {
	if res.Segments != nil {
		return DrainSegments(dst, res.Segments)
	}
	return DrainBytes(dst, res.Bytes)
}

// RenderError formats err as the single-line `error: <cause>: <cause>`
// diagnostic: every layer in this module wraps with fmt.Errorf("...:
// %w", err), so the chain is already assembled by err.Error() once the
// outermost call prefixes it.
func RenderError(err error) string {
	return "error: " + err.Error()
}
