package orchestrator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"ivyharness/internal/command"
)

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, rec command.Record) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner by shelling out.
type ExecRunner struct{}

func (e *ExecRunner) Run(ctx context.Context, rec command.Record) (string, string, int, error) {
	if rec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", rec.Text)
	cmd.Dir = rec.WorkingDir
	if len(rec.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range rec.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec: %w", err)
		}
	}
	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// PhaseResult records the outcome of executing one phase's command sequence.
type PhaseResult struct {
	Phase     command.Phase `json:"phase"`
	Commands  int           `json:"commands"`
	Failed    int           `json:"failed"`
	Fatal     bool          `json:"fatal"` // a critical command failed
	Duration  time.Duration `json:"duration"`
	FirstFail string        `json:"first_fail,omitempty"`
}
