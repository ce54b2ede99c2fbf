package compute_test

import (
	"context"
	"math"

	"github.com/brandonshearin/csrgraph/compute"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ExecutorTestSuite))

type ExecutorTestSuite struct{}

func (s *ExecutorTestSuite) TestRunToCompletion(c *gc.C) {
	g := buildGraph(c, [][2]uint32{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 0}})
	defer g.Close()
	eng := newCompute(c, g, 0)

	eng.FillActive(false)
	eng.FillData(math.MaxUint32)
	eng.SetActive(0, true)
	eng.SetData(0, 0)
	eng.Step()

	ex := compute.NewExecutor(eng, bfsRelax, compute.ExecutorCallbacks[uint32, uint32]{})
	c.Assert(ex.RunToCompletion(context.TODO()), gc.IsNil)

	c.Assert(eng.Data(), gc.DeepEquals, []uint32{0, 1, 2, 3, 4, 5, 6, 7})
	// 7 completed rounds reach every vertex; the final round relaxes
	// 7 -> 0 without improving anything and stops the run
	c.Assert(ex.Round(), gc.Equals, 7)
}

func (s *ExecutorTestSuite) TestCallbacksInvoked(c *gc.C) {
	g := basicGraph(c)
	defer g.Close()
	eng := newCompute(c, g, 0)

	eng.FillActive(false)
	eng.FillData(math.MaxUint32)
	eng.SetActive(0, true)
	eng.SetData(0, 0)
	eng.Step()

	var preCalls, postCalls int
	cb := compute.ExecutorCallbacks[uint32, uint32]{
		PreRound: func(context.Context, *compute.Compute[uint32, uint32]) error {
			preCalls++
			return nil
		},
		PostRound: func(context.Context, *compute.Compute[uint32, uint32], int) error {
			postCalls++
			return nil
		},
	}

	ex := compute.NewExecutor(eng, bfsRelax, cb)
	c.Assert(ex.RunToCompletion(context.TODO()), gc.IsNil)
	c.Assert(preCalls, gc.Equals, postCalls)
	c.Assert(preCalls > 0, gc.Equals, true)
}

func (s *ExecutorTestSuite) TestRunRoundsStopsEarly(c *gc.C) {
	g := buildGraph(c, [][2]uint32{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 0}})
	defer g.Close()
	eng := newCompute(c, g, 0)

	eng.FillActive(false)
	eng.FillData(math.MaxUint32)
	eng.SetActive(0, true)
	eng.SetData(0, 0)
	eng.Step()

	ex := compute.NewExecutor(eng, bfsRelax, compute.ExecutorCallbacks[uint32, uint32]{})
	c.Assert(ex.RunRounds(context.TODO(), 2), gc.IsNil)

	c.Assert(ex.Round(), gc.Equals, 2)
	c.Assert(eng.Data(), gc.DeepEquals, []uint32{0, 1, 2, math.MaxUint32, math.MaxUint32, math.MaxUint32, math.MaxUint32, math.MaxUint32})
}

func (s *ExecutorTestSuite) TestKeepRunningStopsTheRun(c *gc.C) {
	g := buildGraph(c, [][2]uint32{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 0}})
	defer g.Close()
	eng := newCompute(c, g, 0)

	eng.FillActive(false)
	eng.FillData(math.MaxUint32)
	eng.SetActive(0, true)
	eng.SetData(0, 0)
	eng.Step()

	cb := compute.ExecutorCallbacks[uint32, uint32]{
		PostRoundKeepRunning: func(_ context.Context, c *compute.Compute[uint32, uint32], _ int) (bool, error) {
			// stop as soon as vertex 3 has been reached
			return c.Data()[3] == math.MaxUint32, nil
		},
	}

	ex := compute.NewExecutor(eng, bfsRelax, cb)
	c.Assert(ex.RunToCompletion(context.TODO()), gc.IsNil)
	c.Assert(eng.Data()[3], gc.Equals, uint32(3))
	c.Assert(eng.Data()[5], gc.Equals, uint32(math.MaxUint32))
}

func (s *ExecutorTestSuite) TestExpiredContext(c *gc.C) {
	g := basicGraph(c)
	defer g.Close()
	eng := newCompute(c, g, 0)

	eng.FillActive(true)
	eng.Step()

	ctx, cancel := context.WithCancel(context.TODO())
	cancel()

	ex := compute.NewExecutor(eng, minRelax, compute.ExecutorCallbacks[uint32, uint32]{})
	c.Assert(ex.RunToCompletion(ctx), gc.Equals, context.Canceled)
}

func (s *ExecutorTestSuite) TestCallbackErrorAborts(c *gc.C) {
	g := basicGraph(c)
	defer g.Close()
	eng := newCompute(c, g, 0)

	eng.FillActive(true)
	eng.Step()

	boom := xerrors.New("boom")
	cb := compute.ExecutorCallbacks[uint32, uint32]{
		PreRound: func(context.Context, *compute.Compute[uint32, uint32]) error { return boom },
	}

	ex := compute.NewExecutor(eng, minRelax, cb)
	c.Assert(xerrors.Is(ex.RunToCompletion(context.TODO()), boom), gc.Equals, true)
}
