package orchestrator

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"ivyharness/internal/analysis"
	"ivyharness/internal/buildmode"
	"ivyharness/internal/command"
	"ivyharness/internal/config"
	"ivyharness/internal/db"
	"ivyharness/internal/params"
	"ivyharness/internal/roles"
	"ivyharness/internal/run"
)

// Orchestrator drives one harness run through its lifecycle: resolve,
// generate, execute, collect, classify. The database is optional; a nil DB
// skips event logging.
type Orchestrator struct {
	cfg        *config.HarnessConfig
	store      *run.Store
	database   *db.DB
	runner     CommandRunner
	classifier *analysis.Classifier
	log        *zap.Logger
	progress   io.Writer
}

// New creates an Orchestrator.
func New(cfg *config.HarnessConfig, store *run.Store, database *db.DB, runner CommandRunner, log *zap.Logger, progress io.Writer) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &Orchestrator{
		cfg:        cfg,
		store:      store,
		database:   database,
		runner:     runner,
		classifier: analysis.NewClassifier(log),
		log:        log,
		progress:   progress,
	}
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.progress != nil {
		fmt.Fprintf(o.progress, format+"\n", args...)
	}
}

func (o *Orchestrator) logEvent(runID, phase, event, detail string) {
	if o.database == nil {
		return
	}
	if err := o.database.LogRunEvent(runID, phase, event, detail); err != nil {
		o.log.Warn("log run event", zap.Error(err))
	}
}

// Prepared holds everything generated for a run before execution.
type Prepared struct {
	State      *run.State
	Context    command.Context
	Pipeline   *command.Pipeline
	Deployment string
}

// Prepare resolves roles and parameters, generates every phase's commands,
// renders and validates the deployment command, and persists the lot.
func (o *Orchestrator) Prepare() (*Prepared, error) {
	h := o.cfg.Harness

	mode, err := buildmode.FromEnv(buildmode.Mode(h.BuildMode))
	if err != nil {
		return nil, fmt.Errorf("resolve build mode: %w", err)
	}

	ctx, err := command.NewContext(h.Protocol, roles.Role(h.Role), h.ServiceName, h.Targets, h.TestName, mode)
	if err != nil {
		return nil, fmt.Errorf("build resolution context: %w", err)
	}
	ctx.UseSystemModels = h.UseSystemModels
	ctx.InternalIters = h.InternalIterations
	ctx.TimeoutSec = h.Timeout

	set, err := o.assembleParams(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Params = set

	gen := command.NewGenerator(ctx, o.log)
	p := command.NewPipeline(o.log)
	gen.Populate(p)
	if err := p.CheckCallOrder(); err != nil {
		return nil, fmt.Errorf("generated pipeline: %w", err)
	}

	deployment, err := gen.Deployment()
	if err != nil {
		return nil, err
	}

	state, err := o.store.Create(h.Protocol, h.Role, h.TestName)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	o.logEvent(state.ID, "", "created", h.TestName)

	for _, phase := range command.Phases {
		records := p.Phase(phase)
		if len(records) == 0 {
			continue
		}
		if err := o.store.SaveCommands(state.ID, phase, records); err != nil {
			return nil, fmt.Errorf("save %s commands: %w", phase, err)
		}
		if o.database != nil {
			if err := o.database.SaveCommands(state.ID, phase, records); err != nil {
				o.log.Warn("record phase commands", zap.Error(err))
			}
		}
	}
	if err := o.store.SaveDeployment(state.ID, deployment); err != nil {
		return nil, fmt.Errorf("save deployment command: %w", err)
	}

	o.logf("run %s prepared: %d commands, deployment validated", state.ID, p.Len())
	return &Prepared{State: state, Context: ctx, Pipeline: p, Deployment: deployment}, nil
}

// assembleParams merges the configured layers beneath the derived values the
// generators depend on. Derived values sit in the lowest layer so explicit
// configuration can still override them.
func (o *Orchestrator) assembleParams(ctx command.Context) (params.Set, error) {
	h := o.cfg.Harness

	derived := params.Layer{
		"service_name": h.ServiceName,
		"target":       ctx.PrimaryTarget(),
		"test_name":    h.TestName,
		"timeout_cmd":  params.TimeoutCommand(h.Timeout),
	}
	if ctx.PrimaryTarget() == "" {
		derived["target"] = "target_service"
	}

	layers := append([]params.Layer{derived}, h.Parameters.Layers()...)
	set, err := params.Assemble(ctx.Role, layers...)
	if err != nil {
		return nil, fmt.Errorf("assemble parameters: %w", err)
	}
	return set, nil
}

// Execute runs every phase's commands in lifecycle order. A failing critical
// command makes its phase fatal but later phases still run: their captured
// output is what the classifier needs to explain the failure.
func (o *Orchestrator) Execute(ctx context.Context, prep *Prepared) ([]PhaseResult, error) {
	if err := o.store.Update(prep.State.ID, func(st *run.State) { st.Status = "running" }); err != nil {
		return nil, err
	}

	var results []PhaseResult
	for _, phase := range command.Phases {
		records := prep.Pipeline.Phase(phase)
		if phase == command.Run {
			rec := command.NewRecord(prep.Deployment, command.Run)
			rec.Critical = true
			rec.Timeout = time.Duration(prep.Context.TimeoutSec) * time.Second
			records = append(records, rec)
		}
		if len(records) == 0 {
			continue
		}

		result := o.executePhase(ctx, prep.State.ID, phase, records)
		results = append(results, result)
	}
	return results, nil
}

func (o *Orchestrator) executePhase(ctx context.Context, runID string, phase command.Phase, records []command.Record) PhaseResult {
	start := time.Now()
	result := PhaseResult{Phase: phase, Commands: len(records)}
	o.logEvent(runID, string(phase), "phase_started", "")
	o.logf("phase %s: %d commands", phase, len(records))

	for _, rec := range records {
		if result.Fatal {
			break
		}
		_, stderr, exitCode, err := o.runner.Run(ctx, rec)
		if err == nil && exitCode == 0 {
			continue
		}

		result.Failed++
		detail := fmt.Sprintf("exit %d", exitCode)
		if err != nil {
			detail = err.Error()
		}
		if result.FirstFail == "" {
			result.FirstFail = fmt.Sprintf("%s (%s)", rec.Text, detail)
		}
		o.log.Warn("command failed",
			zap.String("phase", string(phase)),
			zap.String("command", rec.Text),
			zap.Int("exit_code", exitCode),
			zap.String("stderr", stderr),
			zap.Bool("critical", rec.Critical))
		if rec.Critical {
			result.Fatal = true
		}
	}

	result.Duration = time.Since(start)
	if result.Fatal {
		o.logEvent(runID, string(phase), "phase_failed", result.FirstFail)
		o.logf("phase %s failed: %s", phase, result.FirstFail)
	} else {
		o.logEvent(runID, string(phase), "phase_completed", fmt.Sprintf("%d commands", result.Commands))
	}
	return result
}

// Analyze collects the captured artifacts for every monitored service and
// classifies them into the run's verdict.
func (o *Orchestrator) Analyze(runID string) (*analysis.Verdict, error) {
	h := o.cfg.Harness

	collected := run.Collect(h.LogsRoot, h.Protocol, h.ServiceName, h.Targets)

	verdict := o.classifier.Analyze(collected)
	if err := o.store.SaveVerdict(runID, &verdict); err != nil {
		return nil, fmt.Errorf("save verdict: %w", err)
	}
	if o.database != nil {
		if err := o.database.SaveVerdict(runID, verdict.Passed, verdict.Summary, len(verdict.Detailed), verdict.Failures); err != nil {
			o.log.Warn("record verdict", zap.Error(err))
		}
	}
	o.logEvent(runID, "", "analyzed", verdict.Summary)
	o.logf("%s", verdict.Summary)
	return &verdict, nil
}

// Run drives a complete lifecycle: prepare, execute, analyze.
func (o *Orchestrator) Run(ctx context.Context) (*analysis.Verdict, error) {
	prep, err := o.Prepare()
	if err != nil {
		return nil, err
	}
	if _, err := o.Execute(ctx, prep); err != nil {
		return nil, err
	}
	return o.Analyze(prep.State.ID)
}
