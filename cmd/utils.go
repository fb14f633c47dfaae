package cmd

import (
	"io"
	"os"

	"github.com/encodeous/dvsim/protocol"
	"github.com/encodeous/dvsim/state"
)

// readScript reads the line protocol from path, or from in when path is empty
func readScript(path string, in io.Reader) (*protocol.Script, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	return protocol.ReadScript(in)
}

// loadScenario reads a YAML scenario if scenarioPath is set, otherwise the line protocol
func loadScenario(inputPath, scenarioPath string, in io.Reader) (*state.ScenarioCfg, error) {
	if scenarioPath != "" {
		return state.ReadScenario(scenarioPath)
	}
	s, err := readScript(inputPath, in)
	if err != nil {
		return nil, err
	}
	return &s.ScenarioCfg, nil
}
