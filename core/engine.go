package core

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/encodeous/dvsim/perf"
	"github.com/encodeous/dvsim/state"
)

type EngineEvent int

const (
	RoundComputed EngineEvent = iota
	Converged
	RoundCapReached
)

func (e EngineEvent) String() string {
	switch e {
	case RoundComputed:
		return "RoundComputed"
	case Converged:
		return "Converged"
	case RoundCapReached:
		return "RoundCapReached"
	}
	return "Unknown"
}

// Vectors holds the distance estimate of every router to every destination
type Vectors map[state.RouterId]map[state.RouterId]state.Metric

// Get returns the estimate from r to dst. A router is always 0 away from
// itself, unknown estimates are INF.
func (v Vectors) Get(r, dst state.RouterId) state.Metric {
	if r == dst {
		return 0
	}
	if m, ok := v[r][dst]; ok {
		return m
	}
	return state.INF
}

// DistanceTable is the view of a single router in a single round, broken down
// by destination and the neighbour the traffic would be sent through.
type DistanceTable struct {
	Router state.RouterId
	// Ids lists every other router in the universe, it is both the list of destinations and the list of vias
	Ids   []state.RouterId
	Costs map[state.RouterId]map[state.RouterId]state.Metric // dst -> via -> metric
}

func (d *DistanceTable) Cost(dst, via state.RouterId) state.Metric {
	if m, ok := d.Costs[dst][via]; ok {
		return m
	}
	return state.INF
}

// Estimate is the best cost to dst over every via
func (d *DistanceTable) Estimate(dst state.RouterId) state.Metric {
	best := state.INF
	for _, m := range d.Costs[dst] {
		best = min(best, m)
	}
	return best
}

func (d *DistanceTable) Equal(o *DistanceTable) bool {
	return d.Router == o.Router && maps.EqualFunc(d.Costs, o.Costs, func(a, b map[state.RouterId]state.Metric) bool {
		return maps.Equal(a, b)
	})
}

// Round is the state of every router at round T
type Round struct {
	T       int
	Routers []state.RouterId
	Tables  map[state.RouterId]*DistanceTable
}

func (r *Round) Estimates() Vectors {
	est := make(Vectors, len(r.Routers))
	for _, id := range r.Routers {
		tbl := r.Tables[id]
		vec := make(map[state.RouterId]state.Metric, len(tbl.Ids))
		for _, dst := range tbl.Ids {
			vec[dst] = tbl.Estimate(dst)
		}
		est[id] = vec
	}
	return est
}

func (r *Round) Equal(o *Round) bool {
	if len(r.Tables) != len(o.Tables) {
		return false
	}
	for id, tbl := range r.Tables {
		other, ok := o.Tables[id]
		if !ok || !tbl.Equal(other) {
			return false
		}
	}
	return true
}

type EngineOptions struct {
	// MaxRounds caps the number of rounds computed and reported, including the first one. Defaults to state.MaxRounds
	MaxRounds int
	// StartRound is the display number of the first round
	StartRound int
	// Seed holds the estimates the first round is computed from. With a nil seed
	// routers only know themselves, so the first round contains direct links only.
	Seed Vectors
	Log  *slog.Logger
}

type Result struct {
	FirstRound int
	LastRound  int
	Converged  bool
	Final      *Round
	Vectors    Vectors
}

// Engine runs the synchronous distance vector algorithm over a topology
type Engine struct {
	topo  *state.Topology
	opts  EngineOptions
	ids   []state.RouterId
	neigh map[state.RouterId][]state.Neighbour
}

func NewEngine(topo *state.Topology, opts EngineOptions) *Engine {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = state.MaxRounds
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	e := &Engine{
		topo:  topo,
		opts:  opts,
		ids:   topo.Routers(),
		neigh: make(map[state.RouterId][]state.Neighbour),
	}
	for _, id := range e.ids {
		e.neigh[id] = topo.Neighbours(id)
	}
	return e
}

func (e *Engine) log(event EngineEvent, desc string, args ...any) {
	lvl := slog.LevelDebug
	if event == RoundCapReached {
		lvl = slog.LevelWarn
	}
	e.opts.Log.Log(context.Background(), lvl, event.String()+" "+desc, args...)
}

// computeRound computes every router's distance table for round t. Only prev is
// read, so every router sees the estimates of the previous round and never a
// value updated within the same round.
func (e *Engine) computeRound(t int, prev Vectors) *Round {
	r := &Round{
		T:       t,
		Routers: e.ids,
		Tables:  make(map[state.RouterId]*DistanceTable, len(e.ids)),
	}
	for _, id := range e.ids {
		others := make([]state.RouterId, 0, len(e.ids)-1)
		for _, o := range e.ids {
			if o != id {
				others = append(others, o)
			}
		}
		tbl := &DistanceTable{
			Router: id,
			Ids:    others,
			Costs:  make(map[state.RouterId]map[state.RouterId]state.Metric, len(others)),
		}
		for _, dst := range others {
			row := make(map[state.RouterId]state.Metric, len(others))
			for _, via := range others {
				row[via] = state.INF
			}
			for _, n := range e.neigh[id] {
				// Cost(R, via) + D(via, dst)
				row[n.Id] = AddMetric(n.Cost, prev.Get(n.Id, dst))
			}
			tbl.Costs[dst] = row
		}
		r.Tables[id] = tbl
	}
	return r
}

// Run iterates until two consecutive rounds are identical or MaxRounds rounds
// have been reported. Every computed round except the repeated one is passed to the reporter.
func (e *Engine) Run(ctx context.Context, rep Reporter) (*Result, error) {
	start := time.Now()
	t := e.opts.StartRound
	cur := e.computeRound(t, e.opts.Seed)
	e.log(RoundComputed, "computed initial round", "t", t)
	if err := rep.DistanceTables(cur); err != nil {
		return nil, err
	}

	converged := false
	for i := 1; i < e.opts.MaxRounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := e.computeRound(t+1, cur.Estimates())
		if next.Equal(cur) {
			converged = true
			break
		}
		t++
		cur = next
		e.log(RoundComputed, "computed round", "t", t)
		if err := rep.DistanceTables(cur); err != nil {
			return nil, err
		}
	}

	rounds := t - e.opts.StartRound
	if converged {
		e.log(Converged, "distance vectors converged", "t", t, "rounds", rounds)
		perf.RoundsToConverge.Add(float64(rounds))
	} else {
		e.log(RoundCapReached, "stopped before convergence", "t", t, "max_rounds", e.opts.MaxRounds)
		perf.CappedRuns.Add(1)
	}
	perf.EngineRuns.Add(1)
	perf.RunLatency.Add(float64(time.Since(start).Microseconds()))

	return &Result{
		FirstRound: e.opts.StartRound,
		LastRound:  t,
		Converged:  converged,
		Final:      cur,
		Vectors:    cur.Estimates(),
	}, nil
}
