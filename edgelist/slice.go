package edgelist

import "github.com/brandonshearin/csrgraph/csr"

//Edge is a single (src, dst) pair
type Edge[V csr.ID] struct {
	Src V
	Dst V
}

/*SliceSource adapts an in-memory edge list to the EdgeSource interface.
Useful for tests and for small graphs that were assembled programmatically*/
type SliceSource[V csr.ID] struct {
	edges []Edge[V]
	cur   int
}

//NewSliceSource returns a SliceSource over edges
func NewSliceSource[V csr.ID](edges []Edge[V]) *SliceSource[V] {
	return &SliceSource[V]{edges: edges, cur: -1}
}

func (s *SliceSource[V]) Next() bool {
	if s.cur+1 >= len(s.edges) {
		return false
	}
	s.cur++
	return true
}

//Edge returns the pair fetched by the last call to Next()
func (s *SliceSource[V]) Edge() (src, dst V) {
	e := s.edges[s.cur]
	return e.Src, e.Dst
}

func (s *SliceSource[V]) Error() error { return nil }

func (s *SliceSource[V]) Close() error { return nil }
