package segstream

import "regexp"

// RegexRefine replaces each input segment with zero or more segments
// matching re within that segment's byte range.
type RegexRefine struct {
	src SegmentStream
	re  *regexp.Regexp
	out []Segment
}

// NewRegexRefine refines every segment of src against re.
func NewRegexRefine(src SegmentStream, re *regexp.Regexp) *RegexRefine {
	return &RegexRefine{src: src, re: re}
}

func (r *RegexRefine) FillSegmentBuf() (bool, int, int, int, error) {
	isEOF, n, _, maxConsume, err := r.src.FillSegmentBuf()
	if err != nil {
		return false, 0, 0, 0, err
	}
	b, upstream := r.src.AsSlices()

	r.out = r.out[:0]
	for _, s := range upstream {
		data := b[s.Pos : s.Pos+s.Len]
		for _, m := range r.re.FindAllIndex(data, -1) {
			r.out = append(r.out, Segment{Pos: s.Pos + int64(m[0]), Len: int64(m[1] - m[0])})
		}
	}

	return isEOF && len(r.out) == 0, n, len(r.out), maxConsume, nil
}

func (r *RegexRefine) AsSlices() ([]byte, []Segment) {
	b, _ := r.src.AsSlices()
	return b, r.out
}

func (r *RegexRefine) Consume(bytes int) (int, int) {
	k := 0
	for k < len(r.out) && bytes > 0 {
		bytes -= int(r.out[k].Len)
		k++
	}
	n, _ := r.src.Consume(bytes)
	return n, k
}
