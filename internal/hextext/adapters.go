package hextext

import (
	"nd/internal/bytestream"
	"nd/internal/segstream"
)

// GuideSource adapts a Reader to segstream.RecordSource, for
// --guide: read offsets and spans from a hex-text side file and slice
// the primary stream at those positions.
type GuideSource struct {
	r *Reader
}

// NewGuideSource wraps r as a segstream.RecordSource.
func NewGuideSource(r *Reader) *GuideSource {
	return &GuideSource{r: r}
}

func (g *GuideSource) Next() (segstream.Record, bool, error) {
	rec, ok, err := g.r.Next()
	if err != nil || !ok {
		return segstream.Record{}, false, err
	}
	return segstream.Record{Offset: rec.Offset, Span: rec.Span}, true, nil
}

// PatchSource adapts a Reader to bytestream.PatchSource, for
// --patch-back: a subprocess emits hex-text records naming replacement
// bytes for spans of the cached primary stream.
type PatchSource struct {
	r *Reader
}

// NewPatchSource wraps r as a bytestream.PatchSource.
func NewPatchSource(r *Reader) *PatchSource {
	return &PatchSource{r: r}
}

func (p *PatchSource) Next() (bytestream.PatchRecord, bool, error) {
	rec, ok, err := p.r.Next()
	if err != nil || !ok {
		return bytestream.PatchRecord{}, false, err
	}
	return bytestream.PatchRecord{Offset: rec.Offset, Span: rec.Span, Body: rec.Body}, true, nil
}
