package edgelist

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"unsafe"

	"github.com/brandonshearin/csrgraph/csr"
	"golang.org/x/xerrors"
)

/*BinarySource yields edge pairs from a binary adjacency list: a bare
concatenation of (src, dst) records, each field sizeof(V) bytes in the host
byte order, with no separators or header.  A trailing partial record is a
parse error*/
type BinarySource[V csr.ID] struct {
	r      *bufio.Reader
	closer io.Closer

	buf      []byte
	src, dst V
	err      error
}

//NewBinarySource returns a BinarySource reading from r
func NewBinarySource[V csr.ID](r io.Reader) *BinarySource[V] {
	return &BinarySource[V]{
		r:   bufio.NewReader(r),
		buf: make([]byte, 2*int(unsafe.Sizeof(V(0)))),
	}
}

/*OpenBinary opens the binary adjacency list at path.  The returned source
owns the file handle and releases it on Close*/
func OpenBinary[V csr.ID](path string) (*BinarySource[V], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("open adjacency list %q: %v: %w", path, err, csr.ErrOpeningFile)
	}
	s := NewBinarySource[V](f)
	s.closer = f
	return s, nil
}

func (s *BinarySource[V]) Next() bool {
	if s.err != nil {
		return false
	}
	if _, err := io.ReadFull(s.r, s.buf); err != nil {
		switch err {
		case io.EOF:
			// clean end of stream
		case io.ErrUnexpectedEOF:
			s.err = xerrors.Errorf("truncated edge record at end of input: %w", csr.ErrParse)
		default:
			s.err = xerrors.Errorf("read adjacency list: %v: %w", err, csr.ErrLoad)
		}
		return false
	}

	width := int(unsafe.Sizeof(V(0)))
	if width == 4 {
		s.src = V(binary.NativeEndian.Uint32(s.buf))
		s.dst = V(binary.NativeEndian.Uint32(s.buf[4:]))
	} else {
		s.src = V(binary.NativeEndian.Uint64(s.buf))
		s.dst = V(binary.NativeEndian.Uint64(s.buf[8:]))
	}
	return true
}

//Edge returns the pair fetched by the last call to Next()
func (s *BinarySource[V]) Edge() (src, dst V) { return s.src, s.dst }

func (s *BinarySource[V]) Error() error { return s.err }

func (s *BinarySource[V]) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
