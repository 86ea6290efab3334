package hextext

import (
	"nd/internal/ndcodec"
	"nd/internal/segstream"
)

// Formatter renders each segment of an upstream SegmentStream as one
// hex-text line, exposing the rendered text as its own (single-segment-
// per-line) SegmentStream. It backs the text formatter component of the
// pipeline, the inverse of Reader.
type Formatter struct {
	src   segstream.SegmentStream
	base  int64
	width int64

	offset int64
	buf    []byte
	segs   []segstream.Segment
}

// NewFormatter renders segments pulled from src as hex-text lines, with
// offsets reported relative to base and hex/mosaic columns padded out to
// at least width bytes.
func NewFormatter(src segstream.SegmentStream, base int64, width int64) *Formatter {
	if width < 1 {
		width = 1
	}
	return &Formatter{src: src, base: base, width: width}
}

func (f *Formatter) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, count, maxConsume, err := f.src.FillSegmentBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	if n == 0 && count == 0 {
		return isEOF && len(f.segs) == 0, len(f.buf), len(f.segs), len(f.buf), nil
	}

	b, segs := f.src.AsSlices()
	for _, s := range segs[:count] {
		data := b[s.Pos : s.Pos+s.Len]
		abs := f.base + f.offset + s.Pos
		line := formatLine(data, abs, f.width)
		pos := int64(len(f.buf))
		f.buf = append(f.buf, line...)
		f.segs = append(f.segs, segstream.Segment{Pos: pos, Len: int64(len(line))})
	}

	// The segments just formatted are copied into f.buf, so the upstream
	// is retired through the furthest byte any of them touches (or
	// maxConsume, if that is further). Bytes past that point are kept,
	// since a lazily resolved producer may still need them.
	amt := maxConsume
	for _, s := range segs[:count] {
		if end := int(s.Pos + s.Len); end > amt {
			amt = end
		}
	}
	if amt > n {
		amt = n
	}
	consumed, _ := f.src.Consume(amt)
	f.offset += int64(consumed)

	done := isEOF && count == 0 && len(f.segs) == 0
	return done, len(f.buf), len(f.segs), len(f.buf), nil
}

func (f *Formatter) AsSlices() ([]byte, []segstream.Segment) {
	return f.buf, f.segs
}

func (f *Formatter) Consume(amount int) (int, int) {
	if amount == 0 {
		return 0, 0
	}
	cut := 0
	for cut < len(f.segs) && f.segs[cut].Pos < int64(amount) {
		cut++
	}
	kept := f.segs[cut:]
	for i := range kept {
		kept[i].Pos -= int64(amount)
	}
	f.segs = append(f.segs[:0:0], kept...)
	f.buf = append(f.buf[:0:0], f.buf[amount:]...)
	return amount, cut
}

// formatLine renders one "OFFSET SPAN | hex body | mosaic\n" line for
// data found at absolute offset, padding the hex and mosaic columns out
// to width bytes when data is shorter.
func formatLine(data []byte, offset int64, width int64) []byte {
	var tmp [32]byte
	out := make([]byte, 0, 16+3*int(width)+int(width)+8)

	n := ndcodec.FormatHexWord(tmp[:], uint64(offset), 6)
	out = append(out, tmp[:n]...)

	n = ndcodec.FormatHexWord(tmp[:], uint64(len(data)), 1)
	out = append(out, tmp[:n]...)

	out = append(out, '|', ' ')

	cols := int(width)
	if len(data) > cols {
		cols = len(data)
	}

	body := make([]byte, 3*cols)
	for i := range body {
		body[i] = ' '
	}
	ndcodec.FormatHexBody(body, data)
	out = append(out, body...)

	out = append(out, '|', ' ')

	mosaic := make([]byte, cols)
	for i := range mosaic {
		mosaic[i] = ' '
	}
	ndcodec.FormatMosaic(mosaic[:len(data)], data)
	out = append(out, mosaic...)

	out = append(out, '\n')
	return out
}
