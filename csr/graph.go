package csr

import (
	"os"
	"path/filepath"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

/*Graph is a read-only view over a CSR directory produced by Build.  Both
files are memory mapped, so the graph is paged in lazily by the OS and can be
orders of magnitude larger than physical memory.

A Graph is safe to share across goroutines.  Slices handed out by OutEdges
and the vertex iterator point straight into the mapped region and stay valid
until Close is called.*/
type Graph[V ID] struct {
	vertexFile *os.File
	edgeFile   *os.File
	vertexMem  mmap.MMap
	edgeMem    mmap.MMap

	offsets []uint64
	edges   []V
}

/*Open maps the vertex.csr and edge.csr files under dir and returns a Graph
view over them.  The files are opened read-only; Open never mutates the
directory contents.*/
func Open[V ID](dir string) (*Graph[V], error) {
	g := new(Graph[V])

	var err error
	if g.vertexFile, err = os.Open(filepath.Join(dir, vertexFileName)); err != nil {
		return nil, xerrors.Errorf("open %s: %v: %w", vertexFileName, err, ErrOpeningFile)
	}
	if g.edgeFile, err = os.Open(filepath.Join(dir, edgeFileName)); err != nil {
		_ = g.vertexFile.Close()
		return nil, xerrors.Errorf("open %s: %v: %w", edgeFileName, err, ErrOpeningFile)
	}

	if err = g.mapFiles(); err != nil {
		_ = g.Close()
		return nil, err
	}

	return g, nil
}

func (g *Graph[V]) mapFiles() error {
	vertexInfo, err := g.vertexFile.Stat()
	if err != nil {
		return xerrors.Errorf("stat %s: %v: %w", vertexFileName, err, ErrFs)
	}
	edgeInfo, err := g.edgeFile.Stat()
	if err != nil {
		return xerrors.Errorf("stat %s: %v: %w", edgeFileName, err, ErrFs)
	}

	vertexSize := vertexInfo.Size()
	if vertexSize < offsetWidth || vertexSize%offsetWidth != 0 {
		return xerrors.Errorf("%s holds %d bytes which is not a whole offset array: %w", vertexFileName, vertexSize, ErrLoad)
	}
	width := int64(idWidth[V]())
	edgeSize := edgeInfo.Size()
	if edgeSize%width != 0 {
		return xerrors.Errorf("%s holds %d bytes which is not a multiple of the id width %d: %w", edgeFileName, edgeSize, width, ErrLoad)
	}

	if g.vertexMem, err = mmap.Map(g.vertexFile, mmap.RDONLY, 0); err != nil {
		return xerrors.Errorf("mmap %s: %v: %w", vertexFileName, err, ErrLoad)
	}
	g.offsets = unsafe.Slice((*uint64)(unsafe.Pointer(&g.vertexMem[0])), vertexSize/offsetWidth)

	// a graph without edges has a zero-length edge file, which cannot be
	// mapped; an empty slice view is equivalent
	if edgeSize > 0 {
		if g.edgeMem, err = mmap.Map(g.edgeFile, mmap.RDONLY, 0); err != nil {
			return xerrors.Errorf("mmap %s: %v: %w", edgeFileName, err, ErrLoad)
		}
		g.edges = unsafe.Slice((*V)(unsafe.Pointer(&g.edgeMem[0])), edgeSize/width)
	}

	return nil
}

//NumVertices returns the number of vertices in the graph
func (g *Graph[V]) NumVertices() int { return len(g.offsets) - 1 }

//NumEdges returns the number of edges in the graph
func (g *Graph[V]) NumEdges() int { return len(g.edges) }

/*OutEdges returns the out-edge destinations of vertex i as a slice into the
mapped edge file.  The slice must not be modified.  Behavior is undefined for
i outside [0, NumVertices())*/
func (g *Graph[V]) OutEdges(i int) []V {
	return g.edges[g.offsets[i]:g.offsets[i+1]]
}

/*Vertices returns an iterator over every vertex and its out-edge slice in
ascending id order.  Each call returns a fresh iterator positioned before the
first vertex*/
func (g *Graph[V]) Vertices() *VertexIterator[V] {
	return &VertexIterator[V]{g: g, cur: -1}
}

/*Close unmaps both regions and closes the underlying files.  Any slices
previously handed out become invalid*/
func (g *Graph[V]) Close() error {
	var err *multierror.Error
	if g.vertexMem != nil {
		if uErr := g.vertexMem.Unmap(); uErr != nil {
			err = multierror.Append(err, xerrors.Errorf("unmap %s: %w", vertexFileName, uErr))
		}
		g.vertexMem, g.offsets = nil, nil
	}
	if g.edgeMem != nil {
		if uErr := g.edgeMem.Unmap(); uErr != nil {
			err = multierror.Append(err, xerrors.Errorf("unmap %s: %w", edgeFileName, uErr))
		}
		g.edgeMem, g.edges = nil, nil
	}
	if g.vertexFile != nil {
		if cErr := g.vertexFile.Close(); cErr != nil {
			err = multierror.Append(err, cErr)
		}
		g.vertexFile = nil
	}
	if g.edgeFile != nil {
		if cErr := g.edgeFile.Close(); cErr != nil {
			err = multierror.Append(err, cErr)
		}
		g.edgeFile = nil
	}
	return err.ErrorOrNil()
}
