package compute

import (
	"math"
	"sync/atomic"
	"unsafe"
)

/*Value is the set of types that per-vertex algorithm data can have.  All of
them fit in a single 32- or 64-bit machine word, which lets the engine use
hardware atomics on plain slices by reinterpreting each cell as its
underlying word*/
type Value interface {
	uint32 | uint64 | float32 | float64
}

// loadCell atomically loads the cell at p.
func loadCell[D Value](p *D) D {
	if unsafe.Sizeof(*p) == 4 {
		bits := atomic.LoadUint32((*uint32)(unsafe.Pointer(p)))
		return *(*D)(unsafe.Pointer(&bits))
	}
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(p)))
	return *(*D)(unsafe.Pointer(&bits))
}

// storeCell atomically stores v into the cell at p.
func storeCell[D Value](p *D, v D) {
	if unsafe.Sizeof(v) == 4 {
		atomic.StoreUint32((*uint32)(unsafe.Pointer(p)), *(*uint32)(unsafe.Pointer(&v)))
		return
	}
	atomic.StoreUint64((*uint64)(unsafe.Pointer(p)), *(*uint64)(unsafe.Pointer(&v)))
}

// casCell publishes next into the cell at p iff it still holds cur,
// comparing bit patterns rather than values.
func casCell[D Value](p *D, cur, next D) bool {
	if unsafe.Sizeof(cur) == 4 {
		return atomic.CompareAndSwapUint32(
			(*uint32)(unsafe.Pointer(p)),
			*(*uint32)(unsafe.Pointer(&cur)),
			*(*uint32)(unsafe.Pointer(&next)),
		)
	}
	return atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(p)),
		*(*uint64)(unsafe.Pointer(&cur)),
		*(*uint64)(unsafe.Pointer(&next)),
	)
}

/*AtomicMin lowers the destination cell to f(src) if that improves on its
current value, retrying the compare-and-swap against concurrent writers until
it either wins or observes a value at least as low.  It returns true iff the
cell was changed.

AtomicMin is the canonical monotone relaxation primitive: BFS passes
f(v) = v+1, weakly connected components passes the identity*/
func AtomicMin[D Value](src D, dst *D, f func(D) D) bool {
	val := f(src)
	cur := loadCell(dst)
	for val < cur {
		if casCell(dst, cur, val) {
			return true
		}
		cur = loadCell(dst)
	}
	return false
}

/*MaxValue returns the highest value representable by D (positive infinity
for the float instantiations).  Useful as the "unreached" marker in traversal
algorithms*/
func MaxValue[D Value]() D {
	var d D
	switch p := any(&d).(type) {
	case *uint32:
		*p = math.MaxUint32
	case *uint64:
		*p = math.MaxUint64
	case *float32:
		*p = float32(math.Inf(1))
	case *float64:
		*p = math.Inf(1)
	}
	return d
}
