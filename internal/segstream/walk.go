package segstream

import (
	"nd/internal/bytestream"
	"nd/internal/walkexpr"
)

// WalkSlicer evaluates one or more expressions against the bytes at a
// moving walk pointer; each expression that yields a positive span
// produces one segment per round, and the pointer advances by the
// largest span produced this round. It backs the generic structured
// record walker.
type WalkSlicer struct {
	window
	exprs []*walkexpr.Expr

	pos      int64 // absolute offset of src.AsSlice()[0]
	walkPtr  int64 // absolute offset of the current walk position
	finished bool
}

// NewWalkSlicer walks src, evaluating exprs at each step.
func NewWalkSlicer(src bytestream.ByteStream, exprs []*walkexpr.Expr) *WalkSlicer {
	return &WalkSlicer{window: window{src: src}, exprs: exprs}
}

func (w *WalkSlicer) FillSegmentBuf() (bool, int, int, int, error) {
	if w.finished {
		b, _ := w.asSlices()
		return true, len(b), len(w.segs), len(b), nil
	}

	for {
		isEOF, n, err := w.src.FillBuf()
		if err != nil {
			return false, 0, 0, 0, err
		}

		local := w.walkPtr - w.pos
		if local < 0 || local > int64(n) {
			w.finished = true
			break
		}
		view := w.src.AsSlice()[local:n]

		type result struct {
			span int64
			ok   bool
		}
		results := make([]result, len(w.exprs))
		incomplete := false
		anyOK := false
		var maxSpan int64 = -1

		for i, e := range w.exprs {
			span, err := e.Eval(view)
			if err != nil {
				if !isEOF {
					incomplete = true
				}
				continue
			}
			results[i] = result{span: span, ok: true}
			anyOK = true
			if span > maxSpan {
				maxSpan = span
			}
		}

		if incomplete {
			w.src.Consume(0)
			continue
		}
		if !anyOK || maxSpan <= 0 {
			w.finished = true
			break
		}

		for _, r := range results {
			if r.ok && r.span > 0 {
				w.segs = append(w.segs, Segment{Pos: local, Len: r.span})
			}
		}
		w.walkPtr += maxSpan
		break
	}

	b, _ := w.asSlices()
	maxConsume := int(w.walkPtr - w.pos)
	if maxConsume < 0 {
		maxConsume = 0
	}
	done := w.finished && len(w.segs) == 0
	return done, len(b), len(w.segs), maxConsume, nil
}

func (w *WalkSlicer) AsSlices() ([]byte, []Segment) { return w.asSlices() }

func (w *WalkSlicer) Consume(bytes int) (int, int) {
	n, k := w.consumeBytes(bytes)
	w.pos += int64(n)
	return n, k
}
