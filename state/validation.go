package state

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid router name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func linkValidator(l LinkCfg) error {
	if err := NameValidator(string(l.A)); err != nil {
		return err
	}
	if err := NameValidator(string(l.B)); err != nil {
		return err
	}
	if l.A == l.B {
		return fmt.Errorf("link %s, %s connects a router to itself", l.A, l.B)
	}
	return nil
}

func ScenarioValidator(cfg *ScenarioCfg) error {
	for _, r := range cfg.Routers {
		err := NameValidator(string(r))
		if err != nil {
			return err
		}
	}
	sorted := slices.Clone(cfg.Routers)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return fmt.Errorf("duplicate router found: %s", sorted[i])
		}
	}

	nodeRel := make([]Pair[RouterId, RouterId], 0, len(cfg.Links))
	for _, link := range cfg.Links {
		if err := linkValidator(link); err != nil {
			return err
		}
		if _, ok := MetricFromCost(link.Cost); !ok {
			return fmt.Errorf("link %s, %s has invalid cost %d", link.A, link.B, link.Cost)
		}
		nodeRel = append(nodeRel, MakeSortedPair(link.A, link.B))
	}
	SortPairs(nodeRel)
	for i := 1; i < len(nodeRel); i++ {
		if nodeRel[i] == nodeRel[i-1] {
			return fmt.Errorf("duplicate link found: %s, %s", nodeRel[i].V1, nodeRel[i].V2)
		}
	}

	for _, update := range cfg.Updates {
		if err := linkValidator(update); err != nil {
			return err
		}
		if _, ok := MetricFromCost(update.Cost); !ok && update.Cost != RemoveCost {
			return fmt.Errorf("update %s, %s has invalid cost %d, expected a positive cost or %d", update.A, update.B, update.Cost, RemoveCost)
		}
	}

	if cfg.Sim.MaxRounds < 0 {
		return fmt.Errorf("sim.max_rounds must not be negative, got %d", cfg.Sim.MaxRounds)
	}
	if cfg.Sim.LogPath != "" {
		if err := PathValidator(cfg.Sim.LogPath); err != nil {
			return fmt.Errorf("invalid sim.log_path: %w", err)
		}
	}
	return nil
}
