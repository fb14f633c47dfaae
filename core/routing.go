package core

import (
	"fmt"

	"github.com/encodeous/dvsim/state"
)

// RouteEntry is the selected next hop towards Dest. Unreachable destinations have no next hop and an INF metric.
type RouteEntry struct {
	Dest    state.RouterId
	NextHop state.RouterId
	Metric  state.Metric
}

func (r RouteEntry) Reachable() bool {
	return r.Metric.Reachable()
}

func (r RouteEntry) String() string {
	if !r.Reachable() {
		return fmt.Sprintf("%s,INF,INF", r.Dest)
	}
	return fmt.Sprintf("%s,%s,%s", r.Dest, r.NextHop, r.Metric)
}

// ShouldSwitch reports whether newRoute is preferred over curRoute. A lower
// metric always wins, equal metrics are broken by the smallest next hop id.
func ShouldSwitch(curRoute, newRoute RouteEntry) bool {
	if !newRoute.Reachable() {
		return false
	}
	if !curRoute.Reachable() || newRoute.Metric < curRoute.Metric {
		return true
	}
	return newRoute.Metric == curRoute.Metric && newRoute.NextHop < curRoute.NextHop
}

// BuildRoutingTables selects, for every router and every other router in the
// universe, the neighbour that minimises Cost(R, via) + D(via, dst).
func BuildRoutingTables(topo *state.Topology, est Vectors) map[state.RouterId][]RouteEntry {
	ids := topo.Routers()
	tables := make(map[state.RouterId][]RouteEntry, len(ids))
	for _, id := range ids {
		neighs := topo.Neighbours(id)
		entries := make([]RouteEntry, 0, len(ids)-1)
		for _, dst := range ids {
			if dst == id {
				continue
			}
			sel := RouteEntry{Dest: dst, Metric: state.INF}
			for _, n := range neighs {
				cand := RouteEntry{
					Dest:    dst,
					NextHop: n.Id,
					Metric:  AddMetric(n.Cost, est.Get(n.Id, dst)),
				}
				if ShouldSwitch(sel, cand) {
					sel = cand
				}
			}
			entries = append(entries, sel)
		}
		tables[id] = entries
	}
	return tables
}
