package bfs

import (
	"context"
	"time"

	"github.com/brandonshearin/csrgraph/compute"
	"github.com/brandonshearin/csrgraph/csr"
	"golang.org/x/xerrors"
)

/*RoundFunc is invoked after every completed round with the 1-based round
number, the number of vertices active for the next round and the time the
round took.  Useful for progress reporting*/
type RoundFunc func(round, active int, took time.Duration)

/*Run performs a breadth-first search over g from src and returns the
converged compute state: Data() holds the hop count from src to every vertex
in vertex-id order, and SaveData can dump it.  Vertices that src cannot reach
keep the maximum value of V.

Each round relaxes the frontier's neighbors with an atomic min over
distance+1, so the search converges after at most diameter+1 rounds*/
func Run[V csr.ID](ctx context.Context, g *csr.Graph[V], src int, cfg compute.Config, onRound RoundFunc) (*compute.Compute[V, V], error) {
	if src < 0 || src >= g.NumVertices() {
		return nil, xerrors.Errorf("bfs source %d is not a vertex of a %d-vertex graph", src, g.NumVertices())
	}

	c, err := compute.New[V, V](g, cfg)
	if err != nil {
		return nil, err
	}

	// every vertex starts unreached and idle; the source seeds the frontier
	c.FillActive(false)
	c.FillData(compute.MaxValue[V]())
	c.SetActive(src, true)
	c.SetData(src, 0)
	c.Step()

	relax := func(src V, dst *V) bool {
		return compute.AtomicMin(src, dst, func(v V) V { return v + 1 })
	}

	ex := compute.NewExecutor(c, relax, roundCallbacks[V](onRound))
	if err := ex.RunToCompletion(ctx); err != nil {
		return nil, xerrors.Errorf("bfs from %d: %w", src, err)
	}

	return c, nil
}

func roundCallbacks[V csr.ID](onRound RoundFunc) compute.ExecutorCallbacks[V, V] {
	if onRound == nil {
		return compute.ExecutorCallbacks[V, V]{}
	}

	var round int
	var start time.Time
	return compute.ExecutorCallbacks[V, V]{
		PreRound: func(context.Context, *compute.Compute[V, V]) error {
			start = time.Now()
			return nil
		},
		PostRound: func(_ context.Context, _ *compute.Compute[V, V], active int) error {
			round++
			onRound(round, active, time.Since(start))
			return nil
		},
	}
}
