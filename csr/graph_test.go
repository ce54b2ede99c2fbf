package csr_test

import (
	"os"
	"path/filepath"

	"github.com/brandonshearin/csrgraph/csr"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(GraphTestSuite))

type GraphTestSuite struct {
	graph *csr.Graph[uint32]
}

func (s *GraphTestSuite) SetUpTest(c *gc.C) {
	g, err := csr.BuildFrom[uint32](pairSource([][2]uint32{{0, 1}, {0, 2}, {1, 5}, {1, 2}, {4, 7}}), buildDir(c))
	c.Assert(err, gc.IsNil)
	s.graph = g
}

func (s *GraphTestSuite) TearDownTest(c *gc.C) {
	if s.graph != nil {
		c.Assert(s.graph.Close(), gc.IsNil)
	}
}

func (s *GraphTestSuite) TestCounts(c *gc.C) {
	c.Assert(s.graph.NumVertices(), gc.Equals, 8)
	c.Assert(s.graph.NumEdges(), gc.Equals, 5)
}

func (s *GraphTestSuite) TestOutEdges(c *gc.C) {
	c.Assert(s.graph.OutEdges(0), gc.DeepEquals, []uint32{1, 2})
	c.Assert(s.graph.OutEdges(1), gc.DeepEquals, []uint32{5, 2})
	c.Assert(s.graph.OutEdges(2), gc.HasLen, 0)
	c.Assert(s.graph.OutEdges(4), gc.DeepEquals, []uint32{7})
	c.Assert(s.graph.OutEdges(7), gc.HasLen, 0)
}

func (s *GraphTestSuite) TestVertexIterator(c *gc.C) {
	expected := [][]uint32{{1, 2}, {5, 2}, {}, {}, {7}, {}, {}, {}}

	it := s.graph.Vertices()
	for i := 0; i < len(expected); i++ {
		c.Assert(it.Next(), gc.Equals, true, gc.Commentf("vertex %d", i))
		c.Assert(it.Vertex(), gc.Equals, i)

		got := it.OutEdges()
		c.Assert(got, gc.HasLen, len(expected[i]))
		if len(expected[i]) != 0 {
			c.Assert(got, gc.DeepEquals, expected[i])
		}
	}
	c.Assert(it.Next(), gc.Equals, false)
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
}

func (s *GraphTestSuite) TestIteratorIsRestartable(c *gc.C) {
	first, second := s.graph.Vertices(), s.graph.Vertices()
	c.Assert(first.Next(), gc.Equals, true)
	c.Assert(first.Next(), gc.Equals, true)
	c.Assert(second.Next(), gc.Equals, true)
	c.Assert(second.Vertex(), gc.Equals, 0)
	c.Assert(first.Vertex(), gc.Equals, 1)
}

func (s *GraphTestSuite) TestEdgeMultisetPreserved(c *gc.C) {
	var got [][2]uint32
	for it := s.graph.Vertices(); it.Next(); {
		for _, dst := range it.OutEdges() {
			got = append(got, [2]uint32{uint32(it.Vertex()), dst})
		}
	}
	c.Assert(got, gc.DeepEquals, [][2]uint32{{0, 1}, {0, 2}, {1, 5}, {1, 2}, {4, 7}})
}

func (s *GraphTestSuite) TestOffsetsMonotone(c *gc.C) {
	prev := 0
	total := 0
	for it := s.graph.Vertices(); it.Next(); {
		degree := len(it.OutEdges())
		c.Assert(degree >= 0, gc.Equals, true)
		total += degree
		c.Assert(total >= prev, gc.Equals, true)
		prev = total
	}
	c.Assert(total, gc.Equals, s.graph.NumEdges())
}

func (s *GraphTestSuite) TestOpenMissingDirectory(c *gc.C) {
	_, err := csr.Open[uint32](filepath.Join(c.MkDir(), "does-not-exist"))
	c.Assert(xerrors.Is(err, csr.ErrOpeningFile), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *GraphTestSuite) TestOpenTruncatedVertexFile(c *gc.C) {
	dir := c.MkDir()
	// 3 bytes cannot hold a whole offset
	c.Assert(os.WriteFile(filepath.Join(dir, "vertex.csr"), []byte{1, 2, 3}, 0o644), gc.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "edge.csr"), nil, 0o644), gc.IsNil)

	_, err := csr.Open[uint32](dir)
	c.Assert(xerrors.Is(err, csr.ErrLoad), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *GraphTestSuite) TestOpenTruncatedEdgeFile(c *gc.C) {
	dir := c.MkDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "vertex.csr"), make([]byte, 16), 0o644), gc.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "edge.csr"), []byte{1, 2, 3}, 0o644), gc.IsNil)

	_, err := csr.Open[uint32](dir)
	c.Assert(xerrors.Is(err, csr.ErrLoad), gc.Equals, true, gc.Commentf("got %v", err))
}
