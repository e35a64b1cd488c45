// Package trainer drives the ultralytics YOLO command line for training and
// exporting models. Nothing is trained in-process; every run is an external
// `yolo` invocation.
package trainer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Command is a process to run.
type Command struct {
	Binary           string
	Arguments        []string
	WorkingDirectory string
}

// CommandString returns the full command as a string (for display/logging).
func (c Command) CommandString() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands on the host, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *zap.Logger
}

// NewExecRunner returns a runner attached to the process's stdout/stderr.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, Logger: logger}
}

// Run executes cmd and waits for it. Cancelling ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if cmd.Binary == "" {
		return fmt.Errorf("binary is required")
	}

	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("Executing command", zap.String("command", cmd.CommandString()))

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Arguments...)
	c.Dir = cmd.WorkingDirectory
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", cmd.Binary, ctxErr)
		}
		return fmt.Errorf("%s failed: %w", cmd.CommandString(), err)
	}
	return nil
}
