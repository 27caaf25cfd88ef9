package run

import "strings"

// OutputPattern names one captured artifact and its path relative to the
// service log root. Paths may contain a {service_name} marker and shell-style
// globs.
type OutputPattern struct {
	Name string
	Path string
}

// basePatterns is the phase-organized capture layout shared by every
// protocol.
var basePatterns = []OutputPattern{
	{"pre_compile_stdout", "pre_compile/stdout.log"},
	{"pre_compile_stderr", "pre_compile/stderr.log"},
	{"pre_compile_env", "pre_compile/setup.log"},

	{"compile_stdout", "compile/stdout.log"},
	{"compile_stderr", "compile/stderr.log"},
	{"compilation_status", "compile/compilation_status.txt"},
	{"compile_log", "compile/compile.log"},

	{"stdout", "run/stdout.log"},
	{"stderr", "run/stderr.log"},

	{"test_results", "test/test_results.json"},

	{"ivy_log", "artifacts/ivy_{service_name}.log"},
	{"pcap", "artifacts/{service_name}.pcap"},
	{"sslkeylog", "artifacts/sslkeylogfile.txt"},
}

// quicPatterns capture the trace files QUIC implementations emit.
var quicPatterns = []OutputPattern{
	{"qlog", "artifacts/*.qlog"},
	{"keys", "artifacts/*keys.log"},
}

// OutputPatterns returns the artifact capture patterns for a protocol,
// expanded for the given service name.
func OutputPatterns(protocol, serviceName string) []OutputPattern {
	patterns := make([]OutputPattern, 0, len(basePatterns)+len(quicPatterns))
	patterns = append(patterns, basePatterns...)
	if protocol == "quic" || protocol == "apt" {
		patterns = append(patterns, quicPatterns...)
	}
	for i := range patterns {
		patterns[i].Path = strings.ReplaceAll(patterns[i].Path, "{service_name}", serviceName)
	}
	return patterns
}
