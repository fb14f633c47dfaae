package core

import (
	"maps"
	"slices"

	"github.com/encodeous/dvsim/state"
	"github.com/jellydator/ttlcache/v3"
)

type RoutingTables = map[state.RouterId][]RouteEntry

// RouteHistory remembers the routing tables computed for recently seen topologies
type RouteHistory struct {
	tables *ttlcache.Cache[string, RoutingTables]
}

func NewRouteHistory(capacity int) *RouteHistory {
	return &RouteHistory{
		tables: ttlcache.New[string, RoutingTables](
			ttlcache.WithCapacity[string, RoutingTables](uint64(capacity)),
			ttlcache.WithDisableTouchOnHit[string, RoutingTables](),
		),
	}
}

// Record stores the tables computed for a topology fingerprint. If the same
// topology was seen before, the previously computed tables are returned.
func (h *RouteHistory) Record(fingerprint string, tables RoutingTables) (RoutingTables, bool) {
	var prev RoutingTables
	item := h.tables.Get(fingerprint)
	if item != nil {
		prev = item.Value()
	}
	h.tables.Set(fingerprint, tables, ttlcache.NoTTL)
	return prev, item != nil
}

func (h *RouteHistory) Len() int {
	return h.tables.Len()
}

func EqualRoutingTables(a, b RoutingTables) bool {
	return maps.EqualFunc(a, b, func(x, y []RouteEntry) bool {
		return slices.Equal(x, y)
	})
}
