package compute

import (
	"bufio"
	"encoding/binary"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/brandonshearin/csrgraph/csr"
	"golang.org/x/xerrors"
)

// vertices handed to the worker pool at a time; coarse enough to amortize
// the cursor contention, fine enough to balance skewed degree distributions
const chunkSize = 1024

/*RelaxFunc applies one edge relaxation: given the source vertex's data from
the previous iteration, it may improve the destination cell and must report
whether it changed it.  The destination may be relaxed concurrently from
several sources, so implementations have to update it atomically (see
AtomicMin) and their effect must be commutative, idempotent and monotone for
the engine's convergence guarantees to hold*/
type RelaxFunc[D Value] func(src D, dst *D) bool

//Config encapsulates the tunables for a Compute instance
type Config struct {
	// Workers is the maximum number of goroutines that process vertices
	// during Push and the bulk operations; a sweep never uses more
	// goroutines than it has chunks of vertices.  Defaults to
	// runtime.NumCPU().
	Workers int
}

func (c *Config) validate() error {
	if c.Workers < 0 {
		return xerrors.New("invalid number of workers")
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

/*Compute drives iterative vertex-centric algorithms over a borrowed Graph
view.  It keeps two parallel arrays per vertex, an activity flag and the
algorithm's data value, each double buffered: relaxations read the old
buffers and write the new ones, and Step promotes new to old between
iterations.

A single controller goroutine owns the instance; Push fans the sweep out over
a worker pool internally but Step, the setters and the readers must never
overlap a running Push*/
type Compute[V csr.ID, D Value] struct {
	graph   *csr.Graph[V]
	workers int

	oldActive []atomic.Bool //which vertices are active in the current iteration
	newActive []atomic.Bool //which vertices become active in the next iteration
	oldData   []D           //the data of the current iteration
	newData   []D           //the data being built for the next iteration
}

/*New allocates the compute state for graph g: four arrays of length
NumVertices, zero initialized.  The graph is borrowed and must stay open for
the lifetime of the returned instance.

The idiomatic initialization pattern is to populate the new buffers with the
setters and then call Step once to install them as the first iteration's
state*/
func New[V csr.ID, D Value](g *csr.Graph[V], cfg Config) (*Compute[V, D], error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("compute config validation failed: %w", err)
	}

	n := g.NumVertices()
	return &Compute[V, D]{
		graph:     g,
		workers:   cfg.Workers,
		oldActive: make([]atomic.Bool, n),
		newActive: make([]atomic.Bool, n),
		oldData:   make([]D, n),
		newData:   make([]D, n),
	}, nil
}

//NumVertices returns the number of vertices the instance tracks state for
func (c *Compute[V, D]) NumVertices() int { return len(c.oldData) }

//SetActive marks vertex i as active (or not) for the next iteration
func (c *Compute[V, D]) SetActive(i int, active bool) {
	c.newActive[i].Store(active)
}

//SetData sets vertex i's data for the next iteration
func (c *Compute[V, D]) SetData(i int, data D) {
	storeCell(&c.newData[i], data)
}

//FillActive sets every vertex's next-iteration activity flag to active
func (c *Compute[V, D]) FillActive(active bool) {
	c.parallelFor(len(c.newActive), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			c.newActive[i].Store(active)
		}
	})
}

//FillData sets every vertex's next-iteration data to data
func (c *Compute[V, D]) FillData(data D) {
	c.parallelFor(len(c.newData), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			storeCell(&c.newData[i], data)
		}
	})
}

/*Step is the global iteration barrier.  The new buffers are installed as the
old ones, the new activity flags are reset, and the new data buffer is
re-seeded with a copy of the freshly installed values so that relaxations
improve on the last iteration's state.

Step must not be called concurrently with Push or with any setter*/
func (c *Compute[V, D]) Step() {
	c.oldActive, c.newActive = c.newActive, c.oldActive
	c.oldData, c.newData = c.newData, c.oldData

	c.parallelFor(len(c.newActive), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			c.newActive[i].Store(false)
		}
		copy(c.newData[lo:hi], c.oldData[lo:hi])
	})
}

/*NumActive counts the vertices active in the current iteration.  The count
is computed on every call, so callers looping on it should store the value*/
func (c *Compute[V, D]) NumActive() int {
	var total atomic.Int64
	c.parallelFor(len(c.oldActive), func(lo, hi int) {
		count := 0
		for i := lo; i < hi; i++ {
			if c.oldActive[i].Load() {
				count++
			}
		}
		total.Add(int64(count))
	})
	return int(total.Load())
}

/*Push performs one vertex-centric relaxation sweep: for every vertex active
in the current iteration, relax is invoked once per outgoing edge with the
vertex's current data and a pointer to the destination's next-iteration cell.
Whenever relax reports a change, the destination is scheduled for the next
iteration.

The sweep is distributed over the worker pool and blocks until every vertex
has been processed.  The visit order is unspecified and may interleave across
workers; see RelaxFunc for the contract that makes the outcome deterministic
regardless*/
func (c *Compute[V, D]) Push(relax RelaxFunc[D]) {
	c.parallelFor(c.graph.NumVertices(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if !c.oldActive[i].Load() {
				continue
			}
			// the old buffers are never written during a push, so a
			// plain read is race free here
			src := c.oldData[i]
			for _, dst := range c.graph.OutEdges(i) {
				if relax(src, &c.newData[dst]) {
					c.newActive[dst].Store(true)
				}
			}
		}
	})
}

/*Data returns the current iteration's data as a read-only slice in vertex-id
order.  The slice aliases the engine's internal state: it must not be
modified and is only valid until the next call to Step*/
func (c *Compute[V, D]) Data() []D { return c.oldData }

/*SaveData writes the current iteration's data to a freshly created file at
path: NumVertices fixed-width native-endian values in vertex-id order, no
header*/
func (c *Compute[V, D]) SaveData(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("create data file %q: %v: %w", path, err, csr.ErrOpeningFile)
	}

	w := bufio.NewWriter(f)
	var buf [8]byte
	for i := range c.oldData {
		n := encodeValue(buf[:], c.oldData[i])
		if _, err := w.Write(buf[:n]); err != nil {
			_ = f.Close()
			return xerrors.Errorf("write data file %q: %v: %w", path, err, csr.ErrLoad)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return xerrors.Errorf("flush data file %q: %v: %w", path, err, csr.ErrLoad)
	}
	if err := f.Close(); err != nil {
		return xerrors.Errorf("close data file %q: %v: %w", path, err, csr.ErrLoad)
	}
	return nil
}

/*parallelFor splits [0, n) into fixed-size chunks and lets the worker pool
steal them through a shared cursor until the range is exhausted.  It blocks
until every chunk has been processed, acting as a fork-join barrier*/
func (c *Compute[V, D]) parallelFor(n int, body func(lo, hi int)) {
	if n == 0 {
		return
	}

	workers := c.workers
	if chunks := (n + chunkSize - 1) / chunkSize; workers > chunks {
		workers = chunks
	}

	var cursor atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				hi := int(cursor.Add(chunkSize))
				lo := hi - chunkSize
				if lo >= n {
					return
				}
				if hi > n {
					hi = n
				}
				body(lo, hi)
			}
		}()
	}
	wg.Wait()
}

// encodeValue writes v into buf using the host byte order and returns the
// number of bytes written.
func encodeValue[D Value](buf []byte, v D) int {
	if unsafe.Sizeof(v) == 4 {
		binary.NativeEndian.PutUint32(buf, *(*uint32)(unsafe.Pointer(&v)))
		return 4
	}
	binary.NativeEndian.PutUint64(buf, *(*uint64)(unsafe.Pointer(&v)))
	return 8
}
