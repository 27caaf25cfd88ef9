package params

import (
	"fmt"
	"sort"

	"ivyharness/internal/roles"
)

// Layer is one precedence level of configuration parameters. Values may be
// raw scalars or nested objects carrying a "value" field; both forms are
// normalized to scalars during assembly so downstream code only sees strings.
type Layer map[string]any

// Set is the flat, merged parameter set handed to template rendering.
// Immutable by convention once assembled.
type Set map[string]string

// RequiredKeys must be present and non-empty after all layers are merged.
var RequiredKeys = []string{"service_name", "target", "role", "test_name", "timeout_cmd"}

// sentinels are string values treated as empty for required-key validation.
var sentinels = map[string]bool{"": true, "None": true, "null": true, "undefined": true}

// ConfigError is a fatal configuration defect found during assembly.
// It always names the offending key.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Key, e.Message)
}

// Assemble merges layers left to right, later layers winning key by key.
// Network addressing parameters are computed from the actor's role, and the
// required keys are validated before the set is released to rendering.
// Catching a missing key here is strictly cheaper than post-render.
func Assemble(currentRole roles.Role, layers ...Layer) (Set, error) {
	merged := make(Set)
	for _, layer := range layers {
		for key, raw := range layer {
			merged[key] = normalize(raw)
		}
	}

	merged["role"] = string(currentRole)

	// Addresses stay symbolic: the executor environment resolves them at
	// shell-execution time. Which side is "local" depends on who we oppose.
	if roles.Opposite(currentRole) == roles.Server {
		merged["server_addr"] = "target_resolved_address"
		merged["client_addr"] = "local_resolved_address"
	} else {
		merged["server_addr"] = "local_resolved_address"
		merged["client_addr"] = "target_resolved_address"
	}

	if err := validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// normalize unwraps nested parameter objects to their scalar value and
// stringifies everything else. A nested object is any map carrying a "value"
// entry; all other shapes stringify via fmt.
func normalize(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if inner, ok := v["value"]; ok {
			return normalize(inner)
		}
		return fmt.Sprintf("%v", v)
	case map[any]any:
		// yaml.v3 can produce this shape for untyped nested mappings.
		if inner, ok := v["value"]; ok {
			return normalize(inner)
		}
		return fmt.Sprintf("%v", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func validate(s Set) error {
	var missing []string
	for _, key := range RequiredKeys {
		val, ok := s[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		if sentinels[val] {
			return &ConfigError{Key: key, Message: fmt.Sprintf("has empty sentinel value %q", val)}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ConfigError{Key: missing[0], Message: fmt.Sprintf("required keys missing after merge: %v", missing)}
	}
	return nil
}

// TimeoutCommand builds the textual timeout wrapper for the run phase.
// The executor enforces the timeout; this only computes the wrapper.
func TimeoutCommand(seconds int) string {
	return fmt.Sprintf("timeout %d ", seconds)
}
