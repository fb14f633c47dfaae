package state

import "strconv"

// Metric is the cost of a link or path. INF marks an unreachable destination.
type Metric uint32

func (m Metric) Reachable() bool {
	return m != INF
}

func (m Metric) String() string {
	if m == INF {
		return "INF"
	}
	return strconv.FormatUint(uint64(m), 10)
}

// MetricFromCost converts a cost read from input into a link metric. Only
// strictly positive, finite costs are valid link metrics.
func MetricFromCost(cost int) (Metric, bool) {
	if cost <= 0 || uint64(cost) > uint64(INFM) {
		return INF, false
	}
	return Metric(cost), true
}
