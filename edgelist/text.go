package edgelist

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"github.com/brandonshearin/csrgraph/csr"
	"golang.org/x/xerrors"
)

/*TextSource yields edge pairs from a text adjacency list: one "src dst" pair
per line, base-10, separated by ASCII whitespace.  Lines must be sorted
non-decreasing by src for the builder to accept them, but TextSource itself
does not check the order.

Blank lines and leading or trailing whitespace are rejected as parse errors
rather than silently skipped.*/
type TextSource[V csr.ID] struct {
	scanner *bufio.Scanner
	closer  io.Closer

	line     int
	src, dst V
	err      error
}

//NewTextSource returns a TextSource reading from r
func NewTextSource[V csr.ID](r io.Reader) *TextSource[V] {
	return &TextSource[V]{scanner: bufio.NewScanner(r)}
}

/*OpenText opens the text adjacency list at path.  The returned source owns
the file handle and releases it on Close*/
func OpenText[V csr.ID](path string) (*TextSource[V], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("open adjacency list %q: %v: %w", path, err, csr.ErrOpeningFile)
	}
	s := NewTextSource[V](f)
	s.closer = f
	return s, nil
}

func (s *TextSource[V]) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			s.err = xerrors.Errorf("read adjacency list: %v: %w", err, csr.ErrLoad)
		}
		return false
	}
	s.line++

	text := s.scanner.Text()
	if text == "" || isSpace(text[0]) || isSpace(text[len(text)-1]) {
		s.err = xerrors.Errorf("line %d: blank or padded line: %w", s.line, csr.ErrParse)
		return false
	}

	fields := strings.Fields(text)
	if len(fields) != 2 {
		s.err = xerrors.Errorf("line %d: expected 2 fields, got %d: %w", s.line, len(fields), csr.ErrParse)
		return false
	}

	if s.src, s.err = parseID[V](fields[0], s.line); s.err != nil {
		return false
	}
	if s.dst, s.err = parseID[V](fields[1], s.line); s.err != nil {
		return false
	}
	return true
}

//Edge returns the pair fetched by the last call to Next()
func (s *TextSource[V]) Edge() (src, dst V) { return s.src, s.dst }

func (s *TextSource[V]) Error() error { return s.err }

func (s *TextSource[V]) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func parseID[V csr.ID](field string, line int) (V, error) {
	bits := int(unsafe.Sizeof(V(0))) * 8
	v, err := strconv.ParseUint(field, 10, bits)
	if err != nil {
		return 0, xerrors.Errorf("line %d: bad vertex id %q: %w", line, field, csr.ErrParse)
	}
	return V(v), nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\v' || b == '\f'
}
