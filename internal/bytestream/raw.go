package bytestream

import (
	"io"

	"github.com/spf13/afero"
	"nd/internal/streambuf"
)

// Raw is the RawSource wrapping a plain io.Reader. It is the bottom of
// every pipeline that reads from a file or stdin: bytes flow from the
// reader into a streambuf.StreamBuf window with no transformation.
type Raw struct {
	r   io.Reader
	buf *streambuf.StreamBuf
}

// NewRaw wraps r, aligning its EOF tail to align bytes (1 for no
// alignment requirement).
func NewRaw(r io.Reader, align int) *Raw {
	if align <= 0 {
		align = 1
	}
	return &Raw{r: r, buf: streambuf.NewWithAlign(align)}
}

// OpenRaw opens path through fs and wraps it as a Raw source. The caller
// is responsible for closing the returned file once the pipeline is done
// with it, if fs requires it.
func OpenRaw(fs afero.Fs, path string, align int) (*Raw, afero.File, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return NewRaw(f, align), f, nil
}

func (r *Raw) FillBuf() (int, error) {
	return r.buf.FillBuf(func(b *[]byte) (bool, error) {
		start := len(*b)
		*b = append(*b, make([]byte, streambuf.BlockSize)...)

		n, err := r.r.Read((*b)[start:])
		*b = (*b)[:start+n]

		if err == io.EOF {
			return false, nil
		}
		return false, err
	})
}

func (r *Raw) AsSlice() []byte {
	return r.buf.AsSlice()
}

func (r *Raw) Consume(amount int) {
	r.buf.Consume(amount)
}
