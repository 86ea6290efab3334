package hextext

import (
	"testing"

	"github.com/stretchr/testify/require"
	"nd/internal/bytestream"
)

// rawBytes is a RawSource delivering its whole payload in one shot, for
// tests that don't care about chunk boundaries.
type rawBytes struct {
	data []byte
	pos  int
}

func (r *rawBytes) FillBuf() (int, error) { return len(r.data) - r.pos, nil }
func (r *rawBytes) AsSlice() []byte       { return r.data[r.pos:] }
func (r *rawBytes) Consume(amount int)    { r.pos += amount }

func newReader(text string) *Reader {
	return NewReader(bytestream.NewEofStream(&rawBytes{data: []byte(text)}))
}

func TestReaderParsesOffsetSpanAndBody(t *testing.T) {
	r := newReader("000000000001 02 | 0a 0b | ..\n")

	rec, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Record{Offset: 1, Span: 2, Body: []byte{0x0a, 0x0b}}, rec)

	_, ok, err = r.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReaderHandlesMultipleRecordsAndEmptyBody(t *testing.T) {
	r := newReader("000000000000 03 | aa bb cc |\n000000000010 00 | |\n")

	rec1, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Record{Offset: 0, Span: 3, Body: []byte{0xaa, 0xbb, 0xcc}}, rec1)

	rec2, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Record{Offset: 0x10, Span: 0, Body: nil}, rec2)

	_, ok, err = r.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReaderRejectsMalformedOffset(t *testing.T) {
	r := newReader("zzzzzzzzzzzz 01 | 0a |\n")

	_, _, err := r.Next()
	require.Error(t, err)
}

func TestReaderAcceptsFinalLineWithoutTrailingNewline(t *testing.T) {
	r := newReader("000000000005 01 | ff |")

	rec, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Record{Offset: 5, Span: 1, Body: []byte{0xff}}, rec)
}
