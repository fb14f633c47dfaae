package core

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/encodeous/dvsim/state"
	"github.com/stretchr/testify/require"
)

// RecordingReporter keeps every report it receives
type RecordingReporter struct {
	Rounds []*Round
	Routes []RoutingTables
}

func (h *RecordingReporter) DistanceTables(r *Round) error {
	h.Rounds = append(h.Rounds, r)
	return nil
}

func (h *RecordingReporter) RoutingTables(routers []state.RouterId, tables map[state.RouterId][]RouteEntry) error {
	h.Routes = append(h.Routes, tables)
	return nil
}

func (h *RecordingReporter) RoundNumbers() []int {
	out := make([]int, 0, len(h.Rounds))
	for _, r := range h.Rounds {
		out = append(out, r.T)
	}
	return out
}

type failingReporter struct {
	after int
}

func (f *failingReporter) DistanceTables(r *Round) error {
	if f.after == 0 {
		return fmt.Errorf("reporter closed")
	}
	f.after--
	return nil
}

func (f *failingReporter) RoutingTables([]state.RouterId, map[state.RouterId][]RouteEntry) error {
	return nil
}

// MakeTopology builds a topology from `a b cost` lines
func MakeTopology(t *testing.T, declared []state.RouterId, links ...string) *state.Topology {
	t.Helper()
	topo := state.NewTopology()
	for _, r := range declared {
		topo.AddNode(r)
	}
	for _, l := range links {
		var a, b string
		var cost int
		_, err := fmt.Sscanf(l, "%s %s %d", &a, &b, &cost)
		require.NoError(t, err)
		m, ok := state.MetricFromCost(cost)
		require.True(t, ok, "invalid cost in %q", l)
		topo.AddEdge(state.RouterId(a), state.RouterId(b), m)
	}
	return topo
}

func RunEngine(t *testing.T, topo *state.Topology, opts EngineOptions) (*Result, *RecordingReporter) {
	t.Helper()
	h := &RecordingReporter{}
	res, err := NewEngine(topo, opts).Run(context.Background(), h)
	require.NoError(t, err)
	return res, h
}

func StringRoutes(tables RoutingTables, routers []state.RouterId) string {
	sb := strings.Builder{}
	for _, id := range routers {
		sb.WriteString(FormatRoutingTable(id, tables[id]))
	}
	return sb.String()
}

// shortestPaths is a reference Floyd-Warshall implementation
func shortestPaths(topo *state.Topology) Vectors {
	ids := topo.Routers()
	dist := make(Vectors)
	for _, a := range ids {
		dist[a] = make(map[state.RouterId]state.Metric)
		for _, b := range ids {
			if a == b {
				continue
			}
			dist[a][b] = state.INF
			if c, ok := topo.Cost(a, b); ok {
				dist[a][b] = c
			}
		}
	}
	for _, k := range ids {
		for _, i := range ids {
			for _, j := range ids {
				if i == j {
					continue
				}
				if alt := AddMetric(dist.Get(i, k), dist.Get(k, j)); alt < dist[i][j] {
					dist[i][j] = alt
				}
			}
		}
	}
	return dist
}
