package state

// LinkCfg is a single `SOURCE NEIGHBOUR COST` line of the topology or update phase
type LinkCfg struct {
	A    RouterId `yaml:"a"`
	B    RouterId `yaml:"b"`
	Cost int      `yaml:"cost"`
}

// SimCfg represents simulation settings that may be set from a scenario file
type SimCfg struct {
	MaxRounds int    `yaml:"max_rounds,omitempty"` // round cap per run, defaults to MaxRounds
	LogPath   string `yaml:"log_path,omitempty"`   // if not empty, logs are also written to this file
	Trace     bool   `yaml:"trace,omitempty"`      // log every computed round at debug level
}

// InputInfo describes how a scenario was read from the line protocol
type InputInfo struct {
	Skipped int // malformed or ignored lines
	// Truncated is set when the input ended before the update phase started
	Truncated bool
}

// ScenarioCfg is a complete simulation input: the declared routers, the initial
// topology, and the updates applied after the first convergence.
type ScenarioCfg struct {
	Routers []RouterId `yaml:"routers"`
	Links   []LinkCfg  `yaml:"links"`
	Updates []LinkCfg  `yaml:"updates,omitempty"`
	Sim     SimCfg     `yaml:"sim,omitempty"`
	Input   InputInfo  `yaml:"-"`
}

// BuildTopology creates the initial topology from the declared routers and
// links. Invalid link lines are ignored, matching the line protocol.
func (c *ScenarioCfg) BuildTopology() *Topology {
	t := NewTopology()
	for _, r := range c.Routers {
		t.AddNode(r)
	}
	for _, l := range c.Links {
		m, ok := MetricFromCost(l.Cost)
		if !ok {
			continue
		}
		t.AddEdge(l.A, l.B, m)
	}
	return t
}

// ApplyUpdates applies the update phase to t and returns the number of updates that changed it.
func (c *ScenarioCfg) ApplyUpdates(t *Topology) int {
	changed := 0
	for _, u := range c.Updates {
		if t.UpdateEdge(u.A, u.B, u.Cost) {
			changed++
		}
	}
	return changed
}

func (c *ScenarioCfg) GetMaxRounds() int {
	if c.Sim.MaxRounds > 0 {
		return c.Sim.MaxRounds
	}
	return MaxRounds
}
