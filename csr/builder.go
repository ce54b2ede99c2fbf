package csr

import (
	"bufio"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"
)

const (
	vertexFileName = "vertex.csr"
	edgeFileName   = "edge.csr"

	// offsets are platform-index sized; all supported targets are 64-bit
	offsetWidth = 8
)

/*Build consumes a lazy sequence of (src, dst) edge pairs sorted in
non-decreasing order by source and materializes it under dir as two files:
edge.csr, the flat list of destination ids, and vertex.csr, the prefix-sum
offsets into it.  The pass is streaming; memory usage is constant no matter
how large the input is.

The destination directory must not exist yet.  Build does not clean up
partially written files on failure; callers that need atomicity should build
into a staging directory and rename it on success.*/
func Build[V ID](src EdgeSource[V], dir string) error {
	if err := os.Mkdir(dir, 0o755); err != nil {
		return xerrors.Errorf("create graph directory %q: %v: %w", dir, err, ErrFs)
	}

	vertexFile, err := os.Create(filepath.Join(dir, vertexFileName))
	if err != nil {
		return xerrors.Errorf("create %s: %v: %w", vertexFileName, err, ErrOpeningFile)
	}
	defer vertexFile.Close()
	edgeFile, err := os.Create(filepath.Join(dir, edgeFileName))
	if err != nil {
		return xerrors.Errorf("create %s: %v: %w", edgeFileName, err, ErrOpeningFile)
	}
	defer edgeFile.Close()

	vertexWriter := bufio.NewWriter(vertexFile)
	edgeWriter := bufio.NewWriter(edgeFile)

	var (
		prevSrc      uint64
		edgesWritten uint64
		maxID        uint64
		edgeBuf      [8]byte
	)

	// vertex 0 always starts at offset 0
	if err := writeOffset(vertexWriter, 0); err != nil {
		return err
	}

	for src.Next() {
		s, d := src.Edge()

		if uint64(d) > maxID {
			maxID = uint64(d)
		}

		// enforce the sort order the single-pass layout depends on
		if uint64(s) < prevSrc {
			return xerrors.Errorf("edge source %d after %d is not sorted: %w", s, prevSrc, ErrParse)
		}

		n := putID(edgeBuf[:], d)
		if _, err := edgeWriter.Write(edgeBuf[:n]); err != nil {
			return xerrors.Errorf("write edge: %v: %w", err, ErrLoad)
		}

		// close out every source between the previous one and s, empty
		// sources included, by repeating the running edge count
		for prevSrc < uint64(s) {
			prevSrc++
			if err := writeOffset(vertexWriter, edgesWritten); err != nil {
				return err
			}
		}

		edgesWritten++
	}
	if err := src.Error(); err != nil {
		return xerrors.Errorf("reading edge stream: %w", err)
	}

	// An empty stream references no vertices at all; leave the file with
	// the single initial offset so the graph opens with zero vertices.
	if edgesWritten > 0 {
		numVertices := prevSrc
		if maxID > numVertices {
			numVertices = maxID
		}
		numVertices++

		// pad out the trailing vertices (those past the last source, up to
		// the highest referenced id) plus the terminating sentinel
		for written := prevSrc + 1; written <= numVertices; written++ {
			if err := writeOffset(vertexWriter, edgesWritten); err != nil {
				return err
			}
		}
	}

	if err := edgeWriter.Flush(); err != nil {
		return xerrors.Errorf("flush %s: %v: %w", edgeFileName, err, ErrLoad)
	}
	if err := vertexWriter.Flush(); err != nil {
		return xerrors.Errorf("flush %s: %v: %w", vertexFileName, err, ErrLoad)
	}
	if err := edgeFile.Close(); err != nil {
		return xerrors.Errorf("close %s: %v: %w", edgeFileName, err, ErrLoad)
	}
	if err := vertexFile.Close(); err != nil {
		return xerrors.Errorf("close %s: %v: %w", vertexFileName, err, ErrLoad)
	}

	return nil
}

/*BuildFrom builds the CSR representation of src under dir and returns an
opened Graph over it*/
func BuildFrom[V ID](src EdgeSource[V], dir string) (*Graph[V], error) {
	if err := Build(src, dir); err != nil {
		return nil, err
	}
	return Open[V](dir)
}

func writeOffset(w *bufio.Writer, offset uint64) error {
	var buf [offsetWidth]byte
	binary.NativeEndian.PutUint64(buf[:], offset)
	if _, err := w.Write(buf[:]); err != nil {
		return xerrors.Errorf("write vertex offset: %v: %w", err, ErrLoad)
	}
	return nil
}
