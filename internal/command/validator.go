package command

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Placeholder grammar: @{identifier:identifier:identifier}. Anything else
// inside @{...} is malformed.
var (
	anyPlaceholderRe = regexp.MustCompile(`@\{[^}]+\}`)
	wellFormedRe     = regexp.MustCompile(`^@\{[a-zA-Z_][a-zA-Z0-9_]*:[a-zA-Z_][a-zA-Z0-9_]*:[a-zA-Z_][a-zA-Z0-9_]*\}$`)
	emptyParamRe     = regexp.MustCompile(`(\w+)=(\s|\}|$)`)
)

// ValidationError describes why a rendered command was rejected.
type ValidationError struct {
	Command string
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("command validation failed: %s", strings.Join(e.Reasons, ", "))
}

// Validate is the lexical gate between rendering and execution. It decodes
// renderer escaping and rejects commands with unresolved placeholders,
// unbalanced braces, or empty parameter assignments. It never executes or
// repairs the command beyond entity decoding: a rejected command must not
// reach the executor.
func Validate(rendered string) (bool, string, error) {
	decoded := html.UnescapeString(rendered)

	var reasons []string

	if strings.Contains(decoded, "@None") {
		reasons = append(reasons, "contains @None placeholder (failed substitution)")
	}

	if strings.Count(decoded, "{") != strings.Count(decoded, "}") {
		reasons = append(reasons, "unbalanced braces")
	}

	if empty := emptyParams(decoded); len(empty) > 0 {
		reasons = append(reasons, fmt.Sprintf("empty parameters: %v", empty))
	}

	if malformed := malformedPlaceholders(decoded); len(malformed) > 0 {
		reasons = append(reasons, fmt.Sprintf("malformed placeholders: %v", malformed))
	}

	if len(reasons) > 0 {
		return false, rendered, &ValidationError{Command: rendered, Reasons: reasons}
	}
	return true, decoded, nil
}

// emptyParams finds key= assignments immediately followed by whitespace,
// end of string, or a closing brace.
func emptyParams(text string) []string {
	var keys []string
	for _, m := range emptyParamRe.FindAllStringSubmatch(text, -1) {
		keys = append(keys, m[1])
	}
	return keys
}

// malformedPlaceholders returns @{...} sequences that do not match the
// three-segment placeholder grammar.
func malformedPlaceholders(text string) []string {
	var bad []string
	for _, ph := range anyPlaceholderRe.FindAllString(text, -1) {
		if !wellFormedRe.MatchString(ph) {
			bad = append(bad, ph)
		}
	}
	return bad
}
