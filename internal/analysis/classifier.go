package analysis

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Status is the per-service classification outcome.
type Status string

const (
	StatusUnknown           Status = "unknown"
	StatusCompleted         Status = "completed_successfully"
	StatusCompilationFailed Status = "compilation_failed"
	StatusExecutionFailed   Status = "execution_failed"
	StatusErrorDetected     Status = "error_detected"
)

// ServiceResult is the verdict for one monitored service. Constructed fresh
// per analysis run and never mutated after aggregation.
type ServiceResult struct {
	ExecutionSuccessful  bool     `json:"execution_successful"`
	Status               Status   `json:"service_status"`
	ErrorMessages        []string `json:"error_messages"`
	Warnings             []string `json:"warnings,omitempty"`
	Events               []Event  `json:"events,omitempty"`
	Metrics              Metrics  `json:"metrics"`
	HasStderr            bool     `json:"has_stderr"`
	CompilationSucceeded bool     `json:"compilation_succeeded"`
	TestExecuted         bool     `json:"test_executed"`
}

// Verdict is the aggregate result across all monitored services.
type Verdict struct {
	Passed   bool                     `json:"passed"`
	Summary  string                   `json:"analysis_summary"`
	Detailed map[string]ServiceResult `json:"detailed_results"`
	Failures []string                 `json:"failures"`
}

// Classifier turns captured service outputs into a verdict. It is stateless
// across runs; one instance can classify any number of runs sequentially.
type Classifier struct {
	log *zap.Logger
}

// NewClassifier creates a classifier. A nil logger is replaced with a no-op
// logger.
func NewClassifier(log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{log: log}
}

// Analyze classifies every service's outputs and aggregates. A run passes
// when at least one monitored service reports success. That policy is
// deliberate: in a differential setup the implementation under test often
// produces no logs of its own, so requiring all services to pass would fail
// every run.
func (c *Classifier) Analyze(services map[string]Outputs) Verdict {
	if len(services) == 0 {
		c.log.Warn("no collected outputs available for analysis")
		return Verdict{
			Passed:   false,
			Summary:  "No outputs to analyze",
			Detailed: map[string]ServiceResult{},
			Failures: []string{"No collected outputs available"},
		}
	}

	detailed := make(map[string]ServiceResult, len(services))
	var failures []string
	passed := false

	for name, outputs := range services {
		result := c.AnalyzeService(name, outputs)
		detailed[name] = result
		if result.ExecutionSuccessful {
			passed = true
		} else {
			failures = append(failures, result.ErrorMessages...)
		}
	}

	verdict := Verdict{
		Passed:   passed,
		Summary:  summarize(passed, failures),
		Detailed: detailed,
	}
	if !passed {
		verdict.Failures = failures
	}
	return verdict
}

// AnalyzeService classifies a single service's artifacts.
func (c *Classifier) AnalyzeService(name string, outputs Outputs) ServiceResult {
	result := ServiceResult{Status: StatusUnknown}

	if stderr := outputs[ArtifactStderr]; stderr != "" {
		result.HasStderr = true
		result.ErrorMessages = StderrErrorLines(stderr)
		result.Events = ExtractEvents(stderr)
	}
	// The verifier log gets the full error pattern family; stderr only the
	// literal markers above.
	if ivyLog := outputs[ArtifactIvyLog]; ivyLog != "" {
		result.ErrorMessages = append(result.ErrorMessages, ExtractErrors(ivyLog)...)
	}
	for i, msg := range result.ErrorMessages {
		result.ErrorMessages[i] = AnnotateQUICError(msg)
	}
	hasErrors := len(result.ErrorMessages) > 0

	for _, key := range []string{ArtifactStdout, ArtifactIvyLog} {
		if content := outputs[key]; content != "" {
			result.Warnings = append(result.Warnings, ExtractWarnings(content)...)
			result.Metrics.Merge(ExtractMetrics(content))
		}
	}

	if !hasErrors {
		confirmed, failed := compilationConfirmed(outputs)
		result.TestExecuted = testExecutionConfirmed(outputs)
		// A test that ran must have compiled; only an explicit failure
		// marker in the status artifact overrides the inference.
		result.CompilationSucceeded = confirmed || (result.TestExecuted && !failed)
		if result.CompilationSucceeded && result.TestExecuted {
			result.ExecutionSuccessful = true
		} else {
			if !result.CompilationSucceeded {
				result.ErrorMessages = append(result.ErrorMessages, "No confirmation of successful compilation")
			}
			if !result.TestExecuted {
				result.ErrorMessages = append(result.ErrorMessages, "No confirmation of test execution")
			}
		}
	}

	result.Status = classifyStatus(hasErrors, result.CompilationSucceeded, result.TestExecuted)

	c.log.Debug("service classified",
		zap.String("service", name),
		zap.String("status", string(result.Status)),
		zap.Bool("successful", result.ExecutionSuccessful),
		zap.Int("errors", len(result.ErrorMessages)))
	return result
}

// classifyStatus assigns the service status by priority: detected errors
// dominate, then full confirmation, then whichever confirmation is missing.
func classifyStatus(hasErrors, compiled, executed bool) Status {
	switch {
	case hasErrors:
		return StatusErrorDetected
	case compiled && executed:
		return StatusCompleted
	case !compiled && executed:
		return StatusCompilationFailed
	case compiled && !executed:
		return StatusExecutionFailed
	default:
		return StatusUnknown
	}
}

// compilationConfirmed checks the explicit status artifact first, then falls
// back to stdout success phrases. failed reports an explicit failure marker
// in the status artifact.
func compilationConfirmed(outputs Outputs) (confirmed, failed bool) {
	if status := outputs[ArtifactCompileStatus]; status != "" {
		lower := strings.ToLower(strings.TrimSpace(status))
		if strings.Contains(lower, "compilation succeeded") {
			return true, false
		}
		if strings.Contains(lower, "compilation failed") {
			return false, true
		}
	}
	if stdout := outputs[ArtifactStdout]; stdout != "" {
		lower := strings.ToLower(stdout)
		for _, phrase := range []string{
			"compilation succeeded",
			"compilation complete",
			"successfully built",
			"test executable created",
		} {
			if strings.Contains(lower, phrase) {
				return true, false
			}
		}
	}
	return false, false
}

// testExecutionConfirmed checks for a test_results artifact, then stdout
// execution phrases, then the success pattern family over stdout and the
// verifier log.
func testExecutionConfirmed(outputs Outputs) bool {
	if _, ok := outputs[ArtifactTestResults]; ok {
		return true
	}
	if stdout := outputs[ArtifactStdout]; stdout != "" {
		lower := strings.ToLower(stdout)
		for _, phrase := range []string{
			"test started",
			"running test",
			"test complete",
			"test finished",
			"test passed",
			"all tests passed",
		} {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	for _, key := range []string{ArtifactStdout, ArtifactIvyLog} {
		if content := outputs[key]; content != "" && MatchesSuccess(content) {
			return true
		}
	}
	return false
}

// summarize renders the human-readable verdict line, naming at most the
// first three failures.
func summarize(passed bool, failures []string) string {
	if passed {
		return "All tests passed successfully"
	}
	if len(failures) == 0 {
		return "Tests failed: No positive confirmation of test success"
	}
	if len(failures) > 3 {
		failures = failures[:3]
	}
	return fmt.Sprintf("Tests failed: %s", strings.Join(failures, "; "))
}
