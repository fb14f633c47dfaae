package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/encodeous/dvsim/state"
)

// Phase sentinels of the line protocol
const (
	StartToken  = "START"
	UpdateToken = "UPDATE"
	EndToken    = "END"
)

type Phase int

const (
	PhaseRouters Phase = iota
	PhaseTopology
	PhaseUpdates
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseRouters:
		return "routers"
	case PhaseTopology:
		return "topology"
	case PhaseUpdates:
		return "updates"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Script is a scenario read from the line protocol
type Script struct {
	state.ScenarioCfg
	// Phase is the phase the input ended in
	Phase Phase
}

func parseLinkLine(line string) (state.LinkCfg, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return state.LinkCfg{}, false
	}
	cost, err := strconv.Atoi(fields[2])
	if err != nil {
		return state.LinkCfg{}, false
	}
	if fields[0] == fields[1] {
		return state.LinkCfg{}, false
	}
	return state.LinkCfg{
		A:    state.RouterId(fields[0]),
		B:    state.RouterId(fields[1]),
		Cost: cost,
	}, true
}

// ReadScript reads the three phases of the line protocol: router names until
// START, links until UPDATE, and link updates until END. End of input or a
// blank line stops reading, keeping whatever was read. Input that stops before
// UPDATE is marked truncated. Malformed lines are skipped and counted, so only
// read errors are returned.
func ReadScript(r io.Reader) (*Script, error) {
	script := &Script{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for script.Phase != PhaseDone && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			break
		}
		switch script.Phase {
		case PhaseRouters:
			if line == StartToken {
				script.Phase = PhaseTopology
				continue
			}
			if len(strings.Fields(line)) != 1 {
				script.Input.Skipped++
				continue
			}
			script.Routers = append(script.Routers, state.RouterId(line))
		case PhaseTopology:
			if line == UpdateToken {
				script.Phase = PhaseUpdates
				continue
			}
			link, ok := parseLinkLine(line)
			if _, valid := state.MetricFromCost(link.Cost); !ok || !valid {
				// RemoveCost has no meaning before the update phase
				script.Input.Skipped++
				continue
			}
			script.Links = append(script.Links, link)
		case PhaseUpdates:
			if line == EndToken {
				script.Phase = PhaseDone
				continue
			}
			link, ok := parseLinkLine(line)
			if _, valid := state.MetricFromCost(link.Cost); !ok || !valid && link.Cost != state.RemoveCost {
				script.Input.Skipped++
				continue
			}
			script.Updates = append(script.Updates, link)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	script.Input.Truncated = script.Phase < PhaseUpdates
	return script, nil
}

// WriteScript writes a scenario in the line protocol
func WriteScript(w io.Writer, cfg *state.ScenarioCfg) error {
	bw := bufio.NewWriter(w)
	for _, r := range cfg.Routers {
		fmt.Fprintln(bw, r)
	}
	fmt.Fprintln(bw, StartToken)
	for _, l := range cfg.Links {
		fmt.Fprintf(bw, "%s %s %d\n", l.A, l.B, l.Cost)
	}
	fmt.Fprintln(bw, UpdateToken)
	for _, l := range cfg.Updates {
		fmt.Fprintf(bw, "%s %s %d\n", l.A, l.B, l.Cost)
	}
	fmt.Fprintln(bw, EndToken)
	return bw.Flush()
}
