package wcc

import (
	"context"
	"time"

	"github.com/brandonshearin/csrgraph/compute"
	"github.com/brandonshearin/csrgraph/csr"
	"golang.org/x/xerrors"
)

/*RoundFunc is invoked after every completed round with the 1-based round
number, the number of vertices active for the next round and the time the
round took*/
type RoundFunc func(round, active int, took time.Duration)

/*Run labels the vertices of g with component ids and returns the converged
compute state: Data() holds the labels in vertex-id order, and SaveData can
dump them.  Every vertex converges to the minimum id among the vertices that
can reach it along directed edges, itself included, so vertices fed by the
same minimum share a label.

All vertices start active with their own id as data; rounds relax neighbors
with an atomic min over the label itself until no label changes*/
func Run[V csr.ID](ctx context.Context, g *csr.Graph[V], cfg compute.Config, onRound RoundFunc) (*compute.Compute[V, V], error) {
	c, err := compute.New[V, V](g, cfg)
	if err != nil {
		return nil, err
	}

	c.FillActive(true)
	for i := 0; i < g.NumVertices(); i++ {
		c.SetData(i, V(i))
	}
	c.Step()

	relax := func(src V, dst *V) bool {
		return compute.AtomicMin(src, dst, func(v V) V { return v })
	}

	ex := compute.NewExecutor(c, relax, roundCallbacks[V](onRound))
	if err := ex.RunToCompletion(ctx); err != nil {
		return nil, xerrors.Errorf("wcc: %w", err)
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
