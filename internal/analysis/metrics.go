package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Metrics are performance counters extracted from verifier output.
type Metrics struct {
	ExecutionTime      float64 `json:"execution_time,omitempty"` // seconds
	VerifiedAssertions int     `json:"verified_assertions,omitempty"`
	ProofObligations   int     `json:"proof_obligations,omitempty"`
	SolverCalls        int     `json:"solver_calls,omitempty"`
}

var (
	execTimeRe    = regexp.MustCompile(`(?i)total\s+time:\s*([0-9.]+)\s*(s|seconds|ms|milliseconds)`)
	assertionsRe  = regexp.MustCompile(`(?i)verified\s+(\d+)\s+assertion`)
	obligationsRe = regexp.MustCompile(`(?i)(\d+)\s+proof\s+obligation`)
	solverCallsRe = regexp.MustCompile(`(?i)z3\s+calls:\s*(\d+)`)
)

// ExtractMetrics pulls performance counters out of log content. Absent
// counters stay at their zero value.
func ExtractMetrics(content string) Metrics {
	var m Metrics

	if match := execTimeRe.FindStringSubmatch(content); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			if strings.HasPrefix(strings.ToLower(match[2]), "ms") || strings.HasPrefix(strings.ToLower(match[2]), "milli") {
				v /= 1000
			}
			m.ExecutionTime = v
		}
	}
	if match := assertionsRe.FindStringSubmatch(content); match != nil {
		m.VerifiedAssertions, _ = strconv.Atoi(match[1])
	}
	if match := obligationsRe.FindStringSubmatch(content); match != nil {
		m.ProofObligations, _ = strconv.Atoi(match[1])
	}
	if match := solverCallsRe.FindStringSubmatch(content); match != nil {
		m.SolverCalls, _ = strconv.Atoi(match[1])
	}
	return m
}

// Merge folds other into m. Every field keeps its first-set value: stdout
// and the ivy log often carry the same run's counters, so summing would
// double-count them.
func (m *Metrics) Merge(other Metrics) {
	if m.ExecutionTime == 0 {
		m.ExecutionTime = other.ExecutionTime
	}
	if m.VerifiedAssertions == 0 {
		m.VerifiedAssertions = other.VerifiedAssertions
	}
	if m.ProofObligations == 0 {
		m.ProofObligations = other.ProofObligations
	}
	if m.SolverCalls == 0 {
		m.SolverCalls = other.SolverCalls
	}
}
