package csr

import (
	"encoding/binary"
	"unsafe"
)

/*ID is the set of integer types that can be used as vertex identifiers.
Identifiers are stored on disk as fixed-width native-endian values, so the
width of the chosen type dictates the layout of edge.csr.  u32 covers graphs
of up to ~4.3B vertices; u64 covers everything beyond that at twice the
storage cost.*/
type ID interface {
	uint32 | uint64
}

/*EdgeSource is implemented by objects that can lazily yield (src, dst) edge
pairs for the builder.  Since edge lists can be arbitrarily large we follow
the iterator design pattern and fetch pairs on demand instead of
materializing them.*/
type EdgeSource[V ID] interface {
	/*Advance the source.  If no more pairs are available or an error
	occurs, calls to Next() return false*/
	Next() bool

	//Edge returns the pair fetched by the last call to Next()
	Edge() (src, dst V)

	/*Error returns the last encountered error by the source*/
	Error() error

	/*Release any resources associated with the source*/
	Close() error
}

// idWidth returns the on-disk width of V in bytes.
func idWidth[V ID]() int {
	var v V
	return int(unsafe.Sizeof(v))
}

// putID encodes v into buf using the host byte order and returns the number
// of bytes written.
func putID[V ID](buf []byte, v V) int {
	if idWidth[V]() == 4 {
		binary.NativeEndian.PutUint32(buf, uint32(v))
		return 4
	}
	binary.NativeEndian.PutUint64(buf, uint64(v))
	return 8
}
