// Package bytestream implements the byte-level half of the pipeline: a
// pull-based ByteStream contract plus the sources and transformers that
// produce and reshape raw bytes before they reach a segment producer or a
// sink.
package bytestream

import "nd/internal/streambuf"

// ByteStream is the pull contract every byte source and transformer
// implements. FillBuf grows the window and reports whether the stream has
// reached a definitive EOF along with how many bytes are now available.
// AsSlice exposes the unconsumed window (plus a lookahead margin past the
// reported length); Consume advances the read position.
//
// Calling Consume(0) is a request for more lookahead, not an advance: a
// caller that cannot make progress with what's currently buffered signals
// it this way instead of busy-looping on FillBuf.
type ByteStream interface {
	FillBuf() (isEOF bool, n int, err error)
	AsSlice() []byte
	Consume(amount int)
}

// RawSource is the minimal contract satisfied by something closer to the
// OS than a full ByteStream: it can report how many bytes are readable but
// has no independent way to assert EOF is final (a short read isn't
// necessarily the end, it might just be a scheduling artifact). EofStream
// promotes a RawSource to a full ByteStream.
type RawSource interface {
	FillBuf() (n int, err error)
	AsSlice() []byte
	Consume(amount int)
}

// BlockSize is the default fill-request granularity, mirrored from
// streambuf so callers constructing sources don't need to import both
// packages for one constant.
var BlockSize = streambuf.BlockSize
