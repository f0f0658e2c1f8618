package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gpem17-evo/pkg/confkit"
)

var (
	// ErrInvalidSeed reports a missing or non-integer master seed.
	ErrInvalidSeed = errors.New("config: master seed must be defined as an integer")
	// ErrUnknownScenarios reports a scenario selector absent from the catalog.
	ErrUnknownScenarios = errors.New("config: unexpected scenario selector")
)

// ScenarioCatalog maps the scenario-selection regex used by the evaluator to
// the short tag embedded in run directory names.
type ScenarioCatalog struct {
	Scenarios map[string]string `yaml:"scenarios"`
}

// DefaultScenarioCatalog is used when no catalog file is configured.
func DefaultScenarioCatalog() ScenarioCatalog {
	return ScenarioCatalog{Scenarios: map[string]string{
		".*":                    "all",
		".*0\\.50-20-1\\.00-.*": "dyn50-urg20",
		".*0\\.80-5-1\\.00-.*":  "dyn80-urg5",
		".*0\\.20-35-1\\.00-.*": "dyn20-urg35",
	}}
}

// LoadScenarioCatalog reads and validates a catalog file.
func LoadScenarioCatalog(path string) (*ScenarioCatalog, error) {
	cat, err := confkit.LoadYAML[ScenarioCatalog](path)
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Validate rejects empty catalogs and tags unusable in a directory name.
func (c ScenarioCatalog) Validate() error {
	if len(c.Scenarios) == 0 {
		return errors.New("config: scenario catalog is empty")
	}
	for regex, tag := range c.Scenarios {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("config: scenario %q has an empty tag", regex)
		}
		if strings.ContainsAny(tag, "/\\:, ") {
			return fmt.Errorf("config: scenario tag %q must be filesystem safe", tag)
		}
	}
	return nil
}

// Selectors returns the known selectors, sorted.
func (c ScenarioCatalog) Selectors() []string {
	out := make([]string, 0, len(c.Scenarios))
	for regex := range c.Scenarios {
		out = append(out, regex)
	}
	sort.Strings(out)
	return out
}

// RunParams are supplied by the evolutionary driver at run start.
type RunParams struct {
	Seed          string
	ScenarioRegex string
}

// RunIdentity is the validated form of RunParams.
type RunIdentity struct {
	Seed          int64
	ScenarioRegex string
	Tag           string
}

// Suffix is the human-readable part of the run directory name.
func (r RunIdentity) Suffix() string {
	return r.Tag + "-s" + strconv.FormatInt(r.Seed, 10)
}

// ResolveRun validates run parameters against the catalog. It has no side
// effects so configuration errors surface before anything is created.
func (c ScenarioCatalog) ResolveRun(p RunParams) (RunIdentity, error) {
	seedText := strings.TrimSpace(p.Seed)
	seed, err := strconv.ParseInt(seedText, 10, 32)
	if seedText == "" || err != nil {
		return RunIdentity{}, fmt.Errorf("%w: %q", ErrInvalidSeed, p.Seed)
	}
	tag, ok := c.Scenarios[p.ScenarioRegex]
	if !ok {
		return RunIdentity{}, fmt.Errorf("%w: %q, expected one of %v", ErrUnknownScenarios, p.ScenarioRegex, c.Selectors())
	}
	return RunIdentity{Seed: seed, ScenarioRegex: p.ScenarioRegex, Tag: tag}, nil
}
