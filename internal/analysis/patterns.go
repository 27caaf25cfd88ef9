package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Success markers in verifier logs.
var successPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)OK\s*$`),
	regexp.MustCompile(`(?im)PASS\s*$`),
	regexp.MustCompile(`(?i)verification\s+succeeded`),
	regexp.MustCompile(`(?i)proof\s+complete`),
	regexp.MustCompile(`(?i)all\s+checks\s+passed`),
	regexp.MustCompile(`(?i)specification\s+verified`),
}

// Error markers. The capture group, when matched, is the message body.
var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)error:\s*(.+)`),
	regexp.MustCompile(`(?im)failed:\s*(.+)`),
	regexp.MustCompile(`(?im)assertion\s+failed:\s*(.+)`),
	regexp.MustCompile(`(?im)verification\s+failed:\s*(.+)`),
}

// Warning markers.
var warningPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)warning:\s*(.+)`),
	regexp.MustCompile(`(?im)deprecated:\s*(.+)`),
}

// stderrErrorMarkers are literal substrings that flag a stderr line as an
// error. The first line containing each marker is reported verbatim.
var stderrErrorMarkers = []string{
	"No such file or directory",
	"timeout: failed to run command",
	"error:",
	"Error:",
	"ERROR:",
	"failed:",
	"Failed:",
	"FAILED:",
}

// quicErrorCodes maps QUIC transport error codes (RFC 9000 section 20.1) to
// their names.
var quicErrorCodes = map[int64]string{
	0x0:  "NO_ERROR",
	0x1:  "INTERNAL_ERROR",
	0x2:  "CONNECTION_REFUSED",
	0x3:  "FLOW_CONTROL_ERROR",
	0x4:  "STREAM_LIMIT_ERROR",
	0x5:  "STREAM_STATE_ERROR",
	0x6:  "FINAL_SIZE_ERROR",
	0x7:  "FRAME_ENCODING_ERROR",
	0x8:  "TRANSPORT_PARAMETER_ERROR",
	0x9:  "CONNECTION_ID_LIMIT_ERROR",
	0xA:  "PROTOCOL_VIOLATION",
	0xB:  "INVALID_TOKEN",
	0xC:  "APPLICATION_ERROR",
	0xD:  "CRYPTO_BUFFER_EXCEEDED",
	0xE:  "KEY_UPDATE_ERROR",
	0xF:  "AEAD_LIMIT_REACHED",
	0x10: "NO_VIABLE_PATH",
}

// QUICErrorName returns the symbolic name for a QUIC transport error code.
func QUICErrorName(code int64) string {
	if name, ok := quicErrorCodes[code]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_ERROR_%d", code)
}

var quicCodeRe = regexp.MustCompile(`(?i)error\s+code[:=\s]+(0x[0-9a-fA-F]+|\d+)`)

// AnnotateQUICError appends the symbolic transport error name when msg
// mentions a numeric QUIC error code. Messages without a code pass through
// unchanged.
func AnnotateQUICError(msg string) string {
	m := quicCodeRe.FindStringSubmatch(msg)
	if m == nil {
		return msg
	}
	code, err := strconv.ParseInt(m[1], 0, 64)
	if err != nil {
		return msg
	}
	return fmt.Sprintf("%s (%s)", msg, QUICErrorName(code))
}

// MatchesSuccess reports whether content contains any success marker.
func MatchesSuccess(content string) bool {
	for _, re := range successPatterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// ExtractErrors collects error messages from content, deduplicated in
// first-seen order.
func ExtractErrors(content string) []string {
	return extractMatches(content, errorPatterns)
}

// ExtractWarnings collects warning messages from content, deduplicated in
// first-seen order.
func ExtractWarnings(content string) []string {
	return extractMatches(content, warningPatterns)
}

func extractMatches(content string, patterns []*regexp.Regexp) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			msg := strings.TrimSpace(m[0])
			if len(m) > 1 && m[1] != "" {
				msg = strings.TrimSpace(m[1])
			}
			if msg != "" && !seen[msg] {
				seen[msg] = true
				out = append(out, msg)
			}
		}
	}
	return out
}

// StderrErrorLines reports the stderr lines matching each literal error
// marker. For each marker only the first matching line is kept.
func StderrErrorLines(stderr string) []string {
	lines := strings.Split(stderr, "\n")
	var out []string
	seen := make(map[string]bool)
	for _, marker := range stderrErrorMarkers {
		if !strings.Contains(stderr, marker) {
			continue
		}
		for _, line := range lines {
			if strings.Contains(line, marker) {
				trimmed := strings.TrimSpace(line)
				if !seen[trimmed] {
					seen[trimmed] = true
					out = append(out, trimmed)
				}
				break
			}
		}
	}
	return out
}
