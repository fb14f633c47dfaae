package state

const (
	INF = ^Metric(0)
	// INFM is the maximum value for a metric that is not unreachable.
	INFM = INF - 1
	// RemoveCost is the link cost that signals a link removal in the update phase.
	RemoveCost = -1
)

var (
	MaxRounds       = 100 // rounds per engine run, non-converging runs stop here
	HistoryCapacity = 64  // topologies remembered by the route history
	TraceBuffer     = 1024
)
