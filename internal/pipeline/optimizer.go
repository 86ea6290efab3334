package pipeline

// fuseClips collapses a Seek immediately followed by a Bytes whose
// range is left-anchored with a non-negative start and has a known
// body length into a single
// ClipperNode, so the assembler can wire one bytestream.Clip instead of
// a Clip-then-Cut pair. A bare Seek with no such Bytes behind it still
// becomes a ClipperNode (Len -1 meaning "unbounded"); Pad and
// right-anchored Bytes ranges are left alone, since Clip has no notion
// of bytes added before the source or of a range resolved against a
// total length it doesn't know yet.
func fuseClips(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	i := 0
	for i < len(nodes) {
		seek, ok := nodes[i].(SeekNode)
		if !ok {
			out = append(out, nodes[i])
			i++
			continue
		}
		clip := ClipperNode{Skip: seek.N, Len: -1}
		i++
		if i < len(nodes) {
			if b, ok := nodes[i].(BytesNode); ok {
				if n := b.Range.BodyLen(); n >= 0 && b.Range.Start.Offset >= 0 {
					clip.Skip += b.Range.Start.Offset
					clip.Len = n
					i++
				}
			}
		}
		out = append(out, clip)
	}
	return out
}

// optimize runs the one fusion pass, fuseClips. It only shortens or
// relabels runs it recognizes; anything it doesn't match passes
// through untouched.
//
// The spec this assembler follows also describes fusing a Width
// immediately followed by a Filter/Pair into a single regular-pitch
// ConstSlicer when the mapper algebra proves the result stays
// regular-pitch. That requires reasoning about arbitrary RangeMapper
// sets (proving a selected-index set forms an arithmetic progression
// and folding it into Pitch) that this assembler doesn't attempt:
// Width+Filter is left as two ordinary stages, ConstSlicer feeding
// FilterStream, which is correct but forgoes the fusion's win of
// letting FilterStream skip the segments a wider pitch would have
// excluded anyway.
func optimize(nodes []Node) []Node {
	return fuseClips(nodes)
}
