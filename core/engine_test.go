package core

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/encodeous/dvsim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMetric(t *testing.T) {
	assert.Equal(t, state.Metric(5), AddMetric(2, 3))
	assert.Equal(t, state.INF, AddMetric(state.INF, 3))
	assert.Equal(t, state.INF, AddMetric(3, state.INF))
	assert.Equal(t, state.INFM, AddMetric(state.INFM, state.INFM))
}

func TestLineConvergence(t *testing.T) {
	// A --2-- B --3-- C
	topo := MakeTopology(t, []state.RouterId{"A", "B", "C"}, "A B 2", "B C 3")
	res, h := RunEngine(t, topo, EngineOptions{})

	assert.True(t, res.Converged)
	assert.Equal(t, []int{0, 1, 2}, h.RoundNumbers())
	assert.Equal(t, 0, res.FirstRound)
	assert.Equal(t, 2, res.LastRound)

	tables := BuildRoutingTables(topo, res.Vectors)
	assert.Equal(t, `Routing Table of router A:
B,B,2
C,B,5

Routing Table of router B:
A,A,2
C,C,3

Routing Table of router C:
A,B,5
B,B,3

`, StringRoutes(tables, topo.Routers()))
}

func TestLineDistanceTables(t *testing.T) {
	topo := MakeTopology(t, []state.RouterId{"A", "B", "C"}, "A B 2", "B C 3")
	buf := &bytes.Buffer{}
	_, err := NewEngine(topo, EngineOptions{}).Run(context.Background(), &TextReporter{W: buf})
	require.NoError(t, err)
	assert.Equal(t, `Distance Table of router A at t=0:
     B    C
B    2    INF
C    INF  INF

Distance Table of router B at t=0:
     A    C
A    2    INF
C    INF  3

Distance Table of router C at t=0:
     A    B
A    INF  INF
B    INF  3

Distance Table of router A at t=1:
     B    C
B    2    INF
C    5    INF

Distance Table of router B at t=1:
     A    C
A    2    INF
C    INF  3

Distance Table of router C at t=1:
     A    B
A    INF  5
B    INF  3

Distance Table of router A at t=2:
     B    C
B    2    INF
C    5    INF

Distance Table of router B at t=2:
     A    C
A    2    8
C    7    3

Distance Table of router C at t=2:
     A    B
A    INF  5
B    INF  3

`, buf.String())
}

func TestSynchronousRounds(t *testing.T) {
	// A -1- B -1- C -1- D
	// estimates must only grow by one hop per round
	topo := MakeTopology(t, nil, "A B 1", "B C 1", "C D 1")
	res, h := RunEngine(t, topo, EngineOptions{})
	require.True(t, res.Converged)

	est := h.Rounds[0].Estimates()
	assert.Equal(t, state.Metric(1), est.Get("A", "B"))
	assert.Equal(t, state.INF, est.Get("A", "C"))

	est = h.Rounds[1].Estimates()
	assert.Equal(t, state.Metric(2), est.Get("A", "C"))
	assert.Equal(t, state.INF, est.Get("A", "D"))

	est = h.Rounds[2].Estimates()
	assert.Equal(t, state.Metric(3), est.Get("A", "D"))
	// the last round adds the alternative costs learnt from the full estimates
	assert.Equal(t, []int{0, 1, 2, 3}, h.RoundNumbers())
}

func TestSelfDistanceAndUnreachability(t *testing.T) {
	// two components: A - B and C - D, plus a declared isolated router E
	topo := MakeTopology(t, []state.RouterId{"E"}, "A B 4", "C D 1")
	res, h := RunEngine(t, topo, EngineOptions{})
	require.True(t, res.Converged)

	for _, r := range h.Rounds {
		est := r.Estimates()
		for _, id := range r.Routers {
			assert.Equal(t, state.Metric(0), est.Get(id, id))
		}
		for _, src := range []state.RouterId{"A", "B"} {
			for _, dst := range []state.RouterId{"C", "D", "E"} {
				assert.Equal(t, state.INF, est.Get(src, dst), "round %d: %s -> %s", r.T, src, dst)
				assert.Equal(t, state.INF, est.Get(dst, src), "round %d: %s -> %s", r.T, dst, src)
			}
		}
	}

	tables := BuildRoutingTables(topo, res.Vectors)
	assert.Equal(t, []RouteEntry{
		{Dest: "A", Metric: state.INF},
		{Dest: "B", Metric: state.INF},
		{Dest: "C", Metric: state.INF},
		{Dest: "D", Metric: state.INF},
	}, tables["E"])
}

func randomTopology(rng *rand.Rand, n int, extraLinks int) *state.Topology {
	topo := state.NewTopology()
	ids := make([]state.RouterId, n)
	for i := range n {
		ids[i] = state.RouterId(fmt.Sprintf("r%02d", i))
		topo.AddNode(ids[i])
	}
	// spanning tree so the graph is connected
	for i := 1; i < n; i++ {
		topo.AddEdge(ids[i], ids[rng.IntN(i)], state.Metric(1+rng.IntN(20)))
	}
	for range extraLinks {
		topo.AddEdge(ids[rng.IntN(n)], ids[rng.IntN(n)], state.Metric(1+rng.IntN(20)))
	}
	return topo
}

func TestConvergesToShortestPaths(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 20 {
		topo := randomTopology(rng, 3+rng.IntN(10), rng.IntN(15))
		res, _ := RunEngine(t, topo, EngineOptions{})
		require.True(t, res.Converged, "topology %d did not converge", i)

		if diff := cmp.Diff(shortestPaths(topo), res.Vectors); diff != "" {
			t.Fatalf("topology %d: estimates differ from shortest paths (-want +got):\n%s", i, diff)
		}

		// triangle inequality at convergence
		for _, r := range topo.Routers() {
			for _, d := range topo.Routers() {
				for _, n := range topo.Neighbours(r) {
					assert.LessOrEqual(t, res.Vectors.Get(r, d), AddMetric(n.Cost, res.Vectors.Get(n.Id, d)))
				}
			}
		}
	}
}

func TestDeterministicOutput(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	topo := randomTopology(rng, 8, 10)
	run := func() string {
		buf := &bytes.Buffer{}
		rep := &TextReporter{W: buf}
		res, err := NewEngine(topo, EngineOptions{}).Run(context.Background(), rep)
		require.NoError(t, err)
		require.NoError(t, rep.RoutingTables(topo.Routers(), BuildRoutingTables(topo, res.Vectors)))
		return buf.String()
	}
	assert.Equal(t, run(), run())
}

func TestRoundCap(t *testing.T) {
	// A -1- B -1- C converged, then A is cut off: B and C count to infinity
	topo := MakeTopology(t, []state.RouterId{"A", "B", "C"}, "A B 1", "B C 1")
	res, _ := RunEngine(t, topo, EngineOptions{})
	require.True(t, res.Converged)

	topo.UpdateEdge("A", "B", state.RemoveCost)
	capped, h := RunEngine(t, topo, EngineOptions{
		MaxRounds:  10,
		StartRound: res.LastRound + 1,
		Seed:       res.Vectors,
	})
	assert.False(t, capped.Converged)
	// the first round counts towards the cap
	assert.Len(t, h.Rounds, 10)
	assert.Equal(t, res.LastRound+1, capped.FirstRound)
	assert.Equal(t, res.LastRound+10, capped.LastRound)

	// estimates towards A only ever increase
	last := state.Metric(0)
	for _, r := range h.Rounds {
		cur := r.Estimates().Get("B", "A")
		assert.GreaterOrEqual(t, cur, last)
		last = cur
	}
	// A itself knows it is isolated right away
	assert.Equal(t, state.INF, h.Rounds[0].Estimates().Get("A", "B"))
}

func TestDefaultRoundCap(t *testing.T) {
	topo := MakeTopology(t, []state.RouterId{"A", "B", "C"}, "A B 1", "B C 1")
	res, _ := RunEngine(t, topo, EngineOptions{})
	topo.UpdateEdge("A", "B", state.RemoveCost)

	capped, h := RunEngine(t, topo, EngineOptions{StartRound: res.LastRound + 1, Seed: res.Vectors})
	assert.False(t, capped.Converged)
	assert.Len(t, h.Rounds, state.MaxRounds)
	assert.Equal(t, res.LastRound+state.MaxRounds, capped.LastRound)
}

func TestTieBreakSmallestNextHop(t *testing.T) {
	//    C
	//  1/ \1
	// A     D
	//  1\ /1
	//    B
	topo := MakeTopology(t, nil, "A C 1", "A B 1", "C D 1", "B D 1")
	res, _ := RunEngine(t, topo, EngineOptions{})
	tables := BuildRoutingTables(topo, res.Vectors)
	assert.Contains(t, tables["A"], RouteEntry{Dest: "D", NextHop: "B", Metric: 2})
	assert.Contains(t, tables["D"], RouteEntry{Dest: "A", NextHop: "B", Metric: 2})
}

func TestShouldSwitch(t *testing.T) {
	unreachable := RouteEntry{Dest: "X", Metric: state.INF}
	viaB := RouteEntry{Dest: "X", NextHop: "B", Metric: 4}
	viaC := RouteEntry{Dest: "X", NextHop: "C", Metric: 4}
	cheap := RouteEntry{Dest: "X", NextHop: "Z", Metric: 1}

	assert.True(t, ShouldSwitch(unreachable, viaC))
	assert.False(t, ShouldSwitch(viaC, unreachable))
	assert.True(t, ShouldSwitch(viaC, viaB))
	assert.False(t, ShouldSwitch(viaB, viaC))
	assert.True(t, ShouldSwitch(viaB, cheap))
	assert.False(t, ShouldSwitch(cheap, viaB))
}

func TestCostDecreaseMatchesScratch(t *testing.T) {
	topo := MakeTopology(t, nil, "A B 2", "B C 3", "A C 10", "C D 1")
	res, _ := RunEngine(t, topo, EngineOptions{})
	require.True(t, res.Converged)

	topo.UpdateEdge("A", "C", 1)
	seeded, _ := RunEngine(t, topo, EngineOptions{Seed: res.Vectors, StartRound: res.LastRound + 1})
	scratch, _ := RunEngine(t, topo, EngineOptions{})
	require.True(t, seeded.Converged)
	require.True(t, scratch.Converged)

	assert.LessOrEqual(t, seeded.LastRound-seeded.FirstRound, scratch.LastRound-scratch.FirstRound)
	if diff := cmp.Diff(BuildRoutingTables(topo, scratch.Vectors), BuildRoutingTables(topo, seeded.Vectors)); diff != "" {
		t.Fatalf("seeded routes differ from scratch (-scratch +seeded):\n%s", diff)
	}
	assert.Contains(t, BuildRoutingTables(topo, seeded.Vectors)["A"], RouteEntry{Dest: "D", NextHop: "C", Metric: 2})
}

func TestIdempotentReconvergence(t *testing.T) {
	topo := MakeTopology(t, nil, "A B 2", "B C 3", "C D 4", "A D 20")
	res, _ := RunEngine(t, topo, EngineOptions{})
	before := BuildRoutingTables(topo, res.Vectors)

	topo.UpdateEdge("B", "C", 7)
	topo.UpdateEdge("B", "C", 3)
	again, h := RunEngine(t, topo, EngineOptions{Seed: res.Vectors, StartRound: res.LastRound + 1})
	require.True(t, again.Converged)
	// already converged, the first round is the fixed point
	assert.Len(t, h.Rounds, 1)
	assert.True(t, EqualRoutingTables(before, BuildRoutingTables(topo, again.Vectors)))
}

func TestRunCancelled(t *testing.T) {
	topo := MakeTopology(t, nil, "A B 2", "B C 3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(topo, EngineOptions{}).Run(ctx, &RecordingReporter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReporterError(t *testing.T) {
	topo := MakeTopology(t, nil, "A B 2", "B C 3")
	_, err := NewEngine(topo, EngineOptions{}).Run(context.Background(), &failingReporter{after: 1})
	assert.ErrorContains(t, err, "reporter closed")
}
