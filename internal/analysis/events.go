package analysis

import (
	"regexp"
	"strings"
	"time"
)

// Severity ranks an error event. Ordering is by keyword precedence, not by
// downstream impact: a line matching a critical keyword is critical even if
// it also mentions a warning.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Event category tags for stderr lifecycle lines.
const (
	EventClientBinding = "client_binding"
	EventSocketEvent   = "socket_event"
)

// Event is one tagged stderr line.
type Event struct {
	Category  string    `json:"category"`
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Severity  Severity  `json:"severity"`
}

var timestampRe = regexp.MustCompile(`\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`)

var criticalKeywords = []string{
	"segmentation fault",
	"segfault",
	"core dumped",
	"addresssanitizer",
	"fatal",
	"panic",
	"assertion failed",
}

var highKeywords = []string{"error", "failure", "failed", "timeout"}

// ExtractEvents scans stderr line by line and tags connection lifecycle
// events. Lines matching neither category are skipped.
func ExtractEvents(stderr string) []Event {
	var events []Event
	for _, line := range strings.Split(stderr, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		category := classifyLine(trimmed)
		if category == "" {
			continue
		}
		events = append(events, Event{
			Category:  category,
			Line:      trimmed,
			Timestamp: extractTimestamp(trimmed),
			Severity:  ClassifySeverity(trimmed),
		})
	}
	return events
}

func classifyLine(line string) string {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "bind"):
		return EventClientBinding
	case strings.Contains(lower, "socket"), strings.Contains(lower, "connect"):
		return EventSocketEvent
	default:
		return ""
	}
}

// extractTimestamp parses a bracketed [YYYY-MM-DD HH:MM:SS] stamp. Lines
// without one get the zero time.
func extractTimestamp(line string) time.Time {
	m := timestampRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}
	}
	ts, err := time.Parse("2006-01-02 15:04:05", m[1])
	if err != nil {
		return time.Time{}
	}
	return ts
}

// ClassifySeverity assigns a severity by ordered keyword precedence:
// critical keywords first, then error/failure/timeout, then warning.
func ClassifySeverity(line string) Severity {
	lower := strings.ToLower(line)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return SeverityCritical
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return SeverityHigh
		}
	}
	if strings.Contains(lower, "warning") {
		return SeverityMedium
	}
	return SeverityLow
}
