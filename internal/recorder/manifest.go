package recorder

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gpem17-evo/pkg/statslog"
)

// Manifest is written to run.yaml at setup and rewritten when the run finishes.
type Manifest struct {
	RunID           string     `yaml:"run_id"`
	Name            string     `yaml:"name"`
	Seed            int64      `yaml:"seed"`
	ScenarioRegex   string     `yaml:"scenario_regex"`
	Tag             string     `yaml:"tag"`
	ConfigSource    string     `yaml:"config_source,omitempty"`
	Columns         []string   `yaml:"columns"`
	StartedAt       time.Time  `yaml:"started_at"`
	FinishedAt      *time.Time `yaml:"finished_at,omitempty"`
	FinalGeneration *int       `yaml:"final_generation,omitempty"`
}

func schemaColumns() []string {
	fields := statslog.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.String()
	}
	return out
}

// WriteManifest replaces the manifest file at path.
func WriteManifest(path string, m Manifest) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("recorder: encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("recorder: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("recorder: write manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a run.yaml file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("recorder: decode manifest %s: %w", path, err)
	}
	return &m, nil
}
