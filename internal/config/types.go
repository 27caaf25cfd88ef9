package config

import "ivyharness/internal/params"

// HarnessConfig is the top-level configuration structure parsed from harness YAML.
type HarnessConfig struct {
	Harness Harness `yaml:"harness"`
}

// Harness defines one test run: identity, topology, build selection, and the
// layered parameter hierarchy.
type Harness struct {
	Protocol           string          `yaml:"protocol"`
	Role               string          `yaml:"role"`
	ServiceName        string          `yaml:"service_name"`
	Targets            []string        `yaml:"targets"`
	TestName           string          `yaml:"test_name"`
	BuildMode          string          `yaml:"build_mode"`
	UseSystemModels    bool            `yaml:"use_system_models"`
	Timeout            int             `yaml:"timeout"`
	InternalIterations int             `yaml:"internal_iterations"`
	LogsRoot           string          `yaml:"logs_root"`
	Parameters         ParameterLayers `yaml:"parameters"`
}

// ParameterLayers is the four-layer parameter hierarchy. Later layers
// override earlier ones on merge.
type ParameterLayers struct {
	Global         map[string]interface{} `yaml:"global"`
	Protocol       map[string]interface{} `yaml:"protocol"`
	Implementation map[string]interface{} `yaml:"implementation"`
	Role           map[string]interface{} `yaml:"role"`
}

// Layers returns the hierarchy in merge order: global first, role last.
func (p ParameterLayers) Layers() []params.Layer {
	return []params.Layer{
		params.Layer(p.Global),
		params.Layer(p.Protocol),
		params.Layer(p.Implementation),
		params.Layer(p.Role),
	}
}
