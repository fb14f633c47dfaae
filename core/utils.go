package core

import (
	"github.com/encodeous/dvsim/state"
)

// AddMetric adds two metrics. The sum saturates at INFM, so only an INF operand produces INF.
func AddMetric(a, b state.Metric) state.Metric {
	if a == state.INF || b == state.INF {
		return state.INF
	} else {
		return state.Metric(min(uint64(state.INFM), uint64(a)+uint64(b)))
	}
}
