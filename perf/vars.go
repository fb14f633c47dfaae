package perf

import (
	"expvar"

	"github.com/encodeous/metric"
)

var (
	EngineRuns       = metric.NewCounter("10m10s")
	CappedRuns       = metric.NewCounter("10m10s")
	RoundsToConverge = metric.NewHistogram("10m10s")
	RunLatency       = metric.NewHistogram("1m1s")
)

func init() {
	expvar.Publish("dvsim:EngineRuns", EngineRuns)
	expvar.Publish("dvsim:CappedRuns", CappedRuns)
	expvar.Publish("dvsim:RoundsToConverge", RoundsToConverge)
	expvar.Publish("dvsim:RunLatency (µs)", RunLatency)
}
