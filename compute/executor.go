package compute

import (
	"context"

	"github.com/brandonshearin/csrgraph/csr"
)

/*Executor wraps a Compute instance and provides an orchestration layer for
running push/step rounds until an error occurs or an exit condition is met.
Users can provide an optional set of callbacks to be executed before and
after each round.

The executor assumes the caller has already seeded the state (setters plus an
initial Step); it only drives the iteration loop*/
type Executor[V csr.ID, D Value] struct {
	c     *Compute[V, D]
	relax RelaxFunc[D]
	cb    ExecutorCallbacks[V, D]
	round int
}

/*ExecutorCallbacks encapsulates a series of callbacks that are invoked by an
Executor instance while it runs.  All callbacks are optional and will be
ignored if not specified*/
type ExecutorCallbacks[V csr.ID, D Value] struct {
	// PreRound, if defined, is invoked before running the next round.
	PreRound func(ctx context.Context, c *Compute[V, D]) error

	// PostRound, if defined, is invoked after a round's push and step
	// with the number of vertices active for the next round.
	PostRound func(ctx context.Context, c *Compute[V, D], activeInRound int) error

	// PostRoundKeepRunning, if defined, is invoked after running a round
	// to decide whether the stop condition for terminating the run has
	// been met.  The default keeps running while any vertex is active.
	PostRoundKeepRunning func(ctx context.Context, c *Compute[V, D], activeInRound int) (bool, error)
}

// NewExecutor returns an Executor instance for compute state c that applies
// relax on every round and invokes the provided callbacks around each one.
func NewExecutor[V csr.ID, D Value](c *Compute[V, D], relax RelaxFunc[D], cb ExecutorCallbacks[V, D]) *Executor[V, D] {
	patchEmptyCallbacks(&cb)
	return &Executor[V, D]{
		c:     c,
		relax: relax,
		cb:    cb,
	}
}

func patchEmptyCallbacks[V csr.ID, D Value](cb *ExecutorCallbacks[V, D]) {
	if cb.PreRound == nil {
		cb.PreRound = func(context.Context, *Compute[V, D]) error { return nil }
	}
	if cb.PostRound == nil {
		cb.PostRound = func(context.Context, *Compute[V, D], int) error { return nil }
	}
	if cb.PostRoundKeepRunning == nil {
		cb.PostRoundKeepRunning = func(_ context.Context, _ *Compute[V, D], activeInRound int) (bool, error) {
			return activeInRound > 0, nil
		}
	}
}

func (ex *Executor[V, D]) Compute() *Compute[V, D] { return ex.c }

/*Round returns the number of completed rounds after which the run went on.
A round that ends the run because PostRound failed or PostRoundKeepRunning
(by default: an empty frontier) stopped it is not counted*/
func (ex *Executor[V, D]) Round() int { return ex.round }

// RunRounds executes at most numRounds push/step rounds unless the context
// expires, an error occurs, the frontier empties or one of the callbacks
// signals a stop.
func (ex *Executor[V, D]) RunRounds(ctx context.Context, numRounds int) error {
	return ex.run(ctx, numRounds)
}

// RunToCompletion keeps executing rounds until the frontier empties, the
// context expires, an error occurs or a callback signals a stop.
func (ex *Executor[V, D]) RunToCompletion(ctx context.Context) error {
	return ex.run(ctx, -1)
}

func (ex *Executor[V, D]) run(ctx context.Context, maxRounds int) error {
	var activeInRound int
	var err error
	var keepRunning bool
	var cb = ex.cb
	for ; maxRounds != 0 && ex.c.NumActive() > 0; ex.round, maxRounds = ex.round+1, maxRounds-1 {
		if err = ensureContextNotExpired(ctx); err != nil {
			break
		} else if err = cb.PreRound(ctx, ex.c); err != nil {
			break
		}

		ex.c.Push(ex.relax)
		ex.c.Step()
		activeInRound = ex.c.NumActive()

		if err = cb.PostRound(ctx, ex.c, activeInRound); err != nil {
			break
		} else if keepRunning, err = cb.PostRoundKeepRunning(ctx, ex.c, activeInRound); !keepRunning || err != nil {
			break
		}
	}
	return err
}

func ensureContextNotExpired(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
