package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/encodeous/dvsim/state"
	"github.com/google/uuid"
)

type SessionCfg struct {
	Out       io.Writer
	Log       *slog.Logger
	MaxRounds int
	Trace     bool
}

// Session runs a scenario: it converges the initial topology, applies the
// updates, and converges again, even when the updates changed nothing. The second run is seeded with the estimates of
// the first one and continues its round numbering.
type Session struct {
	Id      string
	cfg     SessionCfg
	log     *slog.Logger
	history *RouteHistory
	topo    *state.Topology

	// carried between runs
	seed      Vectors
	nextRound int
}

func NewSession(cfg SessionCfg) *Session {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = state.MaxRounds
	}
	id := uuid.NewString()
	return &Session{
		Id:      id,
		cfg:     cfg,
		log:     cfg.Log.With("session", id),
		history: NewRouteHistory(state.HistoryCapacity),
		topo:    state.NewTopology(),
	}
}

// Execute runs the scenario. Panics are returned as errors.
func (s *Session) Execute(ctx context.Context, sc *state.ScenarioCfg) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	rep := MultiReporter{&TextReporter{W: s.cfg.Out}}
	if s.cfg.Trace {
		tracer := NewTracer(s.log)
		defer func() {
			if cerr := tracer.Close(); cerr != nil {
				s.log.Error("failed to close tracer", "error", cerr)
			}
		}()
		rep = append(rep, &TraceReporter{Tracer: tracer})
	}

	if sc.Input.Skipped > 0 {
		s.log.Debug("skipped malformed input lines", "count", sc.Input.Skipped)
	}
	s.topo = sc.BuildTopology()
	s.log.Info("topology loaded", "routers", len(s.topo.Routers()), "links", len(s.topo.Links()))
	if err := s.converge(ctx, rep, "initial"); err != nil {
		return fmt.Errorf("initial convergence failed: %w", err)
	}

	if sc.Input.Truncated {
		s.log.Info("input ended before the update phase")
		return nil
	}
	changed := sc.ApplyUpdates(s.topo)
	s.log.Info("updates applied", "updates", len(sc.Updates), "changed", changed, "revision", s.topo.Revision())
	if err := s.converge(ctx, rep, "update"); err != nil {
		return fmt.Errorf("update convergence failed: %w", err)
	}
	return nil
}

func (s *Session) converge(ctx context.Context, rep Reporter, phase string) error {
	log := s.log.With("phase", phase)
	if s.topo.Empty() {
		log.Info("topology has no links, skipping run")
		return nil
	}
	e := NewEngine(s.topo, EngineOptions{
		MaxRounds:  s.cfg.MaxRounds,
		StartRound: s.nextRound,
		Seed:       s.seed,
		Log:        log,
	})
	res, err := e.Run(ctx, rep)
	if err != nil {
		return err
	}
	s.seed = res.Vectors
	s.nextRound = res.LastRound + 1

	tables := BuildRoutingTables(s.topo, res.Vectors)
	if prev, seen := s.history.Record(s.topo.Fingerprint(), tables); seen {
		if EqualRoutingTables(prev, tables) {
			log.Info("reconverged to the routing tables of a previously seen topology")
		} else {
			log.Warn("routing tables differ from a previous run on the same topology")
		}
	}
	return rep.RoutingTables(s.topo.Routers(), tables)
}
