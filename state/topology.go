package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type RouterId string

type Neighbour struct {
	Id   RouterId
	Cost Metric
}

// Link is an undirected link, A is always the smaller id.
type Link struct {
	A    RouterId
	B    RouterId
	Cost Metric
}

func (l Link) String() string {
	return fmt.Sprintf("%s %s %s", l.A, l.B, l.Cost)
}

// Topology holds the routers and bidirectional links of the simulated network.
// Topology is not safe for concurrent use, it must only be mutated between engine runs.
type Topology struct {
	// declared routers are always part of the router universe, even when isolated
	declared map[RouterId]struct{}
	adj      map[RouterId]map[RouterId]Metric
	revision uint64
}

func NewTopology() *Topology {
	return &Topology{
		declared: make(map[RouterId]struct{}),
		adj:      make(map[RouterId]map[RouterId]Metric),
	}
}

// AddNode declares a router. Declaring an existing router is a no-op.
func (t *Topology) AddNode(id RouterId) {
	changed := false
	if _, ok := t.declared[id]; !ok {
		t.declared[id] = struct{}{}
		changed = true
	}
	if _, ok := t.adj[id]; !ok {
		t.adj[id] = make(map[RouterId]Metric)
		changed = true
	}
	if changed {
		t.revision++
	}
}

// AddEdge adds or replaces the link between a and b. Links to self and
// non-positive or unreachable costs are ignored. Returns true if the topology changed.
func (t *Topology) AddEdge(a, b RouterId, cost Metric) bool {
	if a == b || cost == 0 || cost > INFM {
		return false
	}
	if old, ok := t.adj[a][b]; ok && old == cost {
		return false
	}
	t.ensure(a)
	t.ensure(b)
	t.adj[a][b] = cost
	t.adj[b][a] = cost
	t.revision++
	return true
}

// UpdateEdge applies a link update from the update phase. A cost of RemoveCost
// deletes the link and prunes endpoints that are left without links, any other
// cost is handled like AddEdge. Returns true if the topology changed.
func (t *Topology) UpdateEdge(a, b RouterId, cost int) bool {
	if cost == RemoveCost {
		return t.removeEdge(a, b)
	}
	m, ok := MetricFromCost(cost)
	if !ok {
		return false
	}
	return t.AddEdge(a, b, m)
}

func (t *Topology) removeEdge(a, b RouterId) bool {
	if _, ok := t.adj[a][b]; !ok {
		return false // unknown link
	}
	delete(t.adj[a], b)
	delete(t.adj[b], a)
	t.prune(a)
	t.prune(b)
	t.revision++
	return true
}

func (t *Topology) ensure(id RouterId) {
	if _, ok := t.adj[id]; !ok {
		t.adj[id] = make(map[RouterId]Metric)
	}
}

func (t *Topology) prune(id RouterId) {
	if len(t.adj[id]) == 0 {
		delete(t.adj, id)
	}
}

// Clone returns a deep copy of the topology, including its revision.
func (t *Topology) Clone() *Topology {
	c := &Topology{
		declared: maps.Clone(t.declared),
		adj:      make(map[RouterId]map[RouterId]Metric, len(t.adj)),
		revision: t.revision,
	}
	for id, neighs := range t.adj {
		c.adj[id] = maps.Clone(neighs)
	}
	return c
}

// Routers returns the sorted router universe: every declared router and every router with a link.
func (t *Topology) Routers() []RouterId {
	set := maps.Clone(t.declared)
	for id := range t.adj {
		set[id] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Neighbours returns the neighbours of a router sorted by id.
func (t *Topology) Neighbours(id RouterId) []Neighbour {
	neighs := make([]Neighbour, 0, len(t.adj[id]))
	for _, n := range slices.Sorted(maps.Keys(t.adj[id])) {
		neighs = append(neighs, Neighbour{Id: n, Cost: t.adj[id][n]})
	}
	return neighs
}

// Cost returns the cost of the direct link between a and b.
func (t *Topology) Cost(a, b RouterId) (Metric, bool) {
	c, ok := t.adj[a][b]
	return c, ok
}

func (t *Topology) Links() []Link {
	links := make([]Link, 0)
	for a, neighs := range t.adj {
		for b, cost := range neighs {
			if a < b {
				links = append(links, Link{A: a, B: b, Cost: cost})
			}
		}
	}
	slices.SortFunc(links, func(x, y Link) int {
		if c := strings.Compare(string(x.A), string(y.A)); c != 0 {
			return c
		}
		return strings.Compare(string(x.B), string(y.B))
	})
	return links
}

// Empty reports whether the topology has no links.
func (t *Topology) Empty() bool {
	for _, neighs := range t.adj {
		if len(neighs) > 0 {
			return false
		}
	}
	return true
}

// Revision increases every time the topology changes.
func (t *Topology) Revision() uint64 {
	return t.revision
}

// Fingerprint is a canonical representation of the router universe and links.
// Two topologies with the same fingerprint produce the same routing tables.
func (t *Topology) Fingerprint() string {
	sb := strings.Builder{}
	for i, id := range t.Routers() {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(string(id))
	}
	for _, l := range t.Links() {
		sb.WriteString(";")
		sb.WriteString(l.String())
	}
	return sb.String()
}
