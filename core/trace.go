package core

import (
	"log/slog"
	"strings"

	"github.com/dustin/go-broadcast"
	"github.com/encodeous/dvsim/state"
)

// RoundEvent is published for every reported round
type RoundEvent struct {
	T         int
	Estimates Vectors
	Routers   []state.RouterId
}

// RouteEvent is published when the routing tables of a run are reported
type RouteEvent struct {
	Routers []state.RouterId
	Tables  map[state.RouterId][]RouteEntry
}

// traceFlush is submitted on Close. Events are delivered in order, so once the
// log subscriber sees it every earlier event has been logged.
type traceFlush struct{}

// Tracer fans out engine events to subscribers. A built-in subscriber writes
// every event to the debug log.
type Tracer struct {
	broadcast.Broadcaster
	log      *slog.Logger
	listener chan interface{}
	flushed  chan struct{}
	done     chan struct{}
}

func NewTracer(log *slog.Logger) *Tracer {
	t := &Tracer{
		Broadcaster: broadcast.NewBroadcaster(state.TraceBuffer),
		log:         log,
		listener:    make(chan interface{}, state.TraceBuffer),
		flushed:     make(chan struct{}),
		done:        make(chan struct{}),
	}
	t.Register(t.listener)
	go t.listen()
	return t
}

func (t *Tracer) listen() {
	defer close(t.done)
	for ev := range t.listener {
		switch ev := ev.(type) {
		case traceFlush:
			close(t.flushed)
		case RoundEvent:
			for _, id := range ev.Routers {
				t.log.Debug("trace round", "t", ev.T, "router", id, "vector", formatVector(ev.Routers, id, ev.Estimates))
			}
		case RouteEvent:
			for _, id := range ev.Routers {
				entries := make([]string, 0, len(ev.Tables[id]))
				for _, e := range ev.Tables[id] {
					entries = append(entries, e.String())
				}
				t.log.Debug("trace routes", "router", id, "routes", strings.Join(entries, " "))
			}
		}
	}
}

// Close logs every pending event, then stops the log subscriber and the
// broadcaster. Other subscribers must be unregistered before calling Close.
func (t *Tracer) Close() error {
	t.Submit(traceFlush{})
	<-t.flushed
	t.Unregister(t.listener)
	close(t.listener)
	<-t.done
	return t.Broadcaster.Close()
}

func formatVector(ids []state.RouterId, id state.RouterId, est Vectors) string {
	parts := make([]string, 0, len(ids))
	for _, dst := range ids {
		if dst == id {
			continue
		}
		parts = append(parts, string(dst)+"="+est.Get(id, dst).String())
	}
	return strings.Join(parts, " ")
}

// TraceReporter publishes reports to a Tracer
type TraceReporter struct {
	Tracer *Tracer
}

func (t *TraceReporter) DistanceTables(r *Round) error {
	t.Tracer.Submit(RoundEvent{
		T:         r.T,
		Estimates: r.Estimates(),
		Routers:   r.Routers,
	})
	return nil
}

func (t *TraceReporter) RoutingTables(routers []state.RouterId, tables map[state.RouterId][]RouteEntry) error {
	t.Tracer.Submit(RouteEvent{
		Routers: routers,
		Tables:  tables,
	})
	return nil
}
