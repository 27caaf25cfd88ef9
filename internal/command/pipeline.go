package command

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Pipeline holds an insertion-ordered command sequence per phase. Phases are
// never merged or reordered.
type Pipeline struct {
	phases  map[Phase][]Record
	defined map[string]int // function name -> phase index of its definition
	log     *zap.Logger
}

// NewPipeline creates an empty pipeline. A nil logger is replaced with a
// no-op logger.
func NewPipeline(log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		phases:  make(map[Phase][]Record),
		defined: make(map[string]int),
		log:     log,
	}
}

// Add appends a record to the named phase. Records for unknown phases are
// logged and dropped, never raised: a misconfigured phase name must not
// abort unrelated phases.
func (p *Pipeline) Add(phase Phase, rec Record) {
	if !phase.Valid() {
		p.log.Warn("dropping command for unknown phase",
			zap.String("phase", string(phase)),
			zap.String("command", rec.Text))
		return
	}

	if rec.Kind == KindFunctionDefinition && rec.FuncName != "" {
		if _, seen := p.defined[rec.FuncName]; !seen {
			p.defined[rec.FuncName] = phase.Index()
		}
	}

	// A plain record invoking a previously defined function is a call.
	if rec.Kind == KindPlain {
		if name := firstWord(rec.Text); name != "" {
			if _, ok := p.defined[name]; ok {
				rec.Kind = KindFunctionCall
				rec.FuncName = name
			}
		}
	}

	p.phases[phase] = append(p.phases[phase], rec)
}

// AddText is a convenience wrapper that builds a record from raw text with
// default classification and appends it.
func (p *Pipeline) AddText(phase Phase, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.Add(phase, NewRecord(text, phase))
}

// Phase returns the insertion-ordered records for a phase. Unknown phases
// return nil.
func (p *Pipeline) Phase(phase Phase) []Record {
	return p.phases[phase]
}

// Len returns the total number of records across all phases.
func (p *Pipeline) Len() int {
	n := 0
	for _, recs := range p.phases {
		n += len(recs)
	}
	return n
}

// CheckCallOrder verifies that every function_call record is preceded, in the
// same or an earlier phase, by a definition of the called name.
func (p *Pipeline) CheckCallOrder() error {
	for _, phase := range Phases {
		seen := make(map[string]bool, len(p.defined))
		for name, defPhase := range p.defined {
			if defPhase < phase.Index() {
				seen[name] = true
			}
		}
		for _, rec := range p.phases[phase] {
			if rec.Kind == KindFunctionDefinition && rec.FuncName != "" {
				seen[rec.FuncName] = true
			}
			if rec.Kind == KindFunctionCall && !seen[rec.FuncName] {
				return fmt.Errorf("phase %s: function %q called before its definition", phase, rec.FuncName)
			}
		}
	}
	return nil
}

func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
