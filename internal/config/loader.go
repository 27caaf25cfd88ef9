package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a harness configuration from the given YAML file
// path, applying defaults for unset optional values.
func Load(path string) (*HarnessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg HarnessConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a harness config in standard locations and loads
// the first one found. Search order: ./harness.yaml, ~/.ivyharness/config.yaml
func LoadDefault() (*HarnessConfig, error) {
	candidates := []string{"harness.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".ivyharness", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no harness config found (searched: %v)", candidates)
}

// applyDefaults fills unset optional values.
func applyDefaults(cfg *HarnessConfig) {
	h := &cfg.Harness

	if h.Timeout == 0 {
		h.Timeout = 120
	}
	if h.InternalIterations == 0 {
		h.InternalIterations = 100
	}
	if h.LogsRoot == "" {
		h.LogsRoot = "/app/logs"
	}
	if h.Role == "" {
		h.Role = "client"
	}
}
