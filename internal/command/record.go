package command

import (
	"regexp"
	"strings"
	"time"
)

var (
	funcDefRe   = regexp.MustCompile(`^(?:function\s+)?([a-zA-Z_][a-zA-Z0-9_]*)\s*\(\)\s*\{`)
	varAssignRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=\S`)
)

// Phase is one stage of the test lifecycle. Phases are fixed and ordered;
// a later phase may assume all prior phases completed.
type Phase string

const (
	PreCompile  Phase = "pre_compile"
	Compile     Phase = "compile"
	PostCompile Phase = "post_compile"
	PreRun      Phase = "pre_run"
	Run         Phase = "run"
	PostRun     Phase = "post_run"
)

// Phases lists all phases in lifecycle order.
var Phases = []Phase{PreCompile, Compile, PostCompile, PreRun, Run, PostRun}

// Valid reports whether p is one of the six lifecycle phases.
func (p Phase) Valid() bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

// Index returns the position of p in lifecycle order, or -1 for unknown
// phases.
func (p Phase) Index() int {
	for i, known := range Phases {
		if p == known {
			return i
		}
	}
	return -1
}

// Kind classifies the semantic role of a command record.
type Kind string

const (
	KindPlain              Kind = "plain"
	KindFunctionDefinition Kind = "function_definition"
	KindFunctionCall       Kind = "function_call"
	KindVariableAssignment Kind = "variable_assignment"
)

// Record is a single shell command plus execution metadata. Records are
// immutable once appended to a pipeline and consumed exactly once by the
// executor.
type Record struct {
	Text        string            `json:"command"`
	Description string            `json:"description,omitempty"`
	Critical    bool              `json:"is_critical"`
	Multiline   bool              `json:"is_multiline,omitempty"`
	Kind        Kind              `json:"kind"`
	WorkingDir  string            `json:"working_dir,omitempty"`
	Env         map[string]string `json:"environment,omitempty"`
	Timeout     time.Duration     `json:"timeout,omitempty"`
	FuncName    string            `json:"func_name,omitempty"` // set for function kinds
}

// NewRecord builds a record from raw command text, classifying its kind and
// applying the phase criticality heuristic.
func NewRecord(text string, phase Phase) Record {
	text = strings.TrimSpace(text)
	return Record{
		Text:      text,
		Critical:  defaultCritical(text, phase),
		Multiline: strings.Contains(text, "\n"),
		Kind:      classifyKind(text),
		FuncName:  functionName(text),
	}
}

// defaultCritical applies the criticality heuristic: echo/ls commands are
// diagnostic only; everything else is critical during compilation phases and
// non-critical elsewhere unless explicitly marked.
func defaultCritical(text string, phase Phase) bool {
	first := text
	if i := strings.IndexAny(text, " \t\n"); i >= 0 {
		first = text[:i]
	}
	if first == "echo" || first == "ls" {
		return false
	}
	return phase == Compile || phase == PreCompile
}

// classifyKind tags the record by its syntactic shape.
func classifyKind(text string) Kind {
	switch {
	case funcDefRe.MatchString(text):
		return KindFunctionDefinition
	case varAssignRe.MatchString(text):
		return KindVariableAssignment
	default:
		return KindPlain
	}
}

// functionName extracts the defined function name, or "" for non-definitions.
func functionName(text string) string {
	if m := funcDefRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
