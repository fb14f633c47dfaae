package state

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// ParseScenario strictly decodes a YAML scenario and validates it.
func ParseScenario(data []byte) (*ScenarioCfg, error) {
	var cfg ScenarioCfg
	err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict())
	if err != nil {
		return nil, err
	}
	err = ScenarioValidator(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ReadScenario(scenarioPath string) (*ScenarioCfg, error) {
	file, err := os.ReadFile(scenarioPath)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseScenario(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %s: %w", scenarioPath, err)
	}
	return cfg, nil
}

func MarshalScenario(cfg *ScenarioCfg) ([]byte, error) {
	return yaml.Marshal(cfg)
}
