package run

import (
	"path/filepath"

	"ivyharness/internal/analysis"
)

// collectKeys maps output pattern names to the artifact types the classifier
// understands. Patterns without an entry are collected for archival only.
var collectKeys = map[string]string{
	"stdout":             analysis.ArtifactStdout,
	"stderr":             analysis.ArtifactStderr,
	"compilation_status": analysis.ArtifactCompileStatus,
	"test_results":       analysis.ArtifactTestResults,
	"ivy_log":            analysis.ArtifactIvyLog,
}

// Collect gathers captured artifacts for the running service and its peers,
// following the fixed per-phase naming convention. The running service
// writes its artifacts directly under logsRoot; peer services are
// volume-mapped one directory deeper, at logsRoot/<peer>. Missing artifacts
// are skipped; a service with no artifacts at all gets no entry, so an
// absent service never contributes an empty result to classification.
func Collect(logsRoot, protocol, self string, peers []string) map[string]analysis.Outputs {
	collected := make(map[string]analysis.Outputs)

	collectService(collected, logsRoot, protocol, self)
	for _, peer := range peers {
		collectService(collected, filepath.Join(logsRoot, peer), protocol, peer)
	}
	return collected
}

// ServiceRoot returns the directory a service's artifacts live under: the
// logs root itself for the running service, a per-service subdirectory for
// peers.
func ServiceRoot(logsRoot, self, service string) string {
	if service == self {
		return logsRoot
	}
	return filepath.Join(logsRoot, service)
}

func collectService(collected map[string]analysis.Outputs, serviceRoot, protocol, service string) {
	outputs := analysis.Outputs{}
	for _, pattern := range OutputPatterns(protocol, service) {
		key, wanted := collectKeys[pattern.Name]
		if !wanted {
			continue
		}
		path := filepath.Join(serviceRoot, pattern.Path)
		if content, ok := analysis.ReadArtifact(path); ok {
			outputs[key] = content
		}
	}
	if len(outputs) > 0 {
		collected[service] = outputs
	}
}

// CollectTraces resolves protocol-specific trace globs (qlog and TLS key
// files for QUIC) under a service's artifact root.
func CollectTraces(serviceRoot, protocol, service string) []string {
	var traces []string
	for _, pattern := range OutputPatterns(protocol, service) {
		if pattern.Name != "qlog" && pattern.Name != "keys" && pattern.Name != "pcap" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(serviceRoot, pattern.Path))
		if err != nil {
			continue
		}
		traces = append(traces, matches...)
	}
	return traces
}
