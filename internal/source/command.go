package source

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kriansa/check-mount/internal/log"
	"github.com/kriansa/check-mount/internal/mounttable"
)

// Runner runs a program and returns its standard output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecError is returned when the mount command could not be run or failed
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("run %s: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Command lists mounts by running mount(8) without arguments
type Command struct {
	path    string
	timeout time.Duration
	run     Runner
}

// CommandOption is a functional option for Command
type CommandOption func(*Command)

// WithRunner replaces the process runner (for testing)
func WithRunner(run Runner) CommandOption {
	return func(c *Command) {
		c.run = run
	}
}

// NewCommand creates a command source running the binary at path
func NewCommand(path string, timeout time.Duration, opts ...CommandOption) *Command {
	c := &Command{
		path:    path,
		timeout: timeout,
		run:     execRunner,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Mounts runs the mount command and parses its output
func (c *Command) Mounts(ctx context.Context) (mounttable.Table, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	log.Debug("obtaining mount list", "command", c.path, "timeout", c.timeout)

	output, err := c.run(ctx, c.path)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return mounttable.Table{}, fmt.Errorf("run %s: %w after %s", c.path, ErrTimeout, c.timeout)
	}
	if err != nil {
		log.Error("mount execution failed", "command", c.path, "error", err)
		return mounttable.Table{}, &ExecError{Path: c.path, Err: err}
	}

	table, err := mounttable.ParseMountOutput(string(output))
	if err != nil {
		return mounttable.Table{}, fmt.Errorf("parse %s output: %w", c.path, err)
	}

	log.Debug("mount list obtained", "command", c.path, "mounts", len(table.Records))
	return table, nil
}

// execRunner runs a process and returns its stdout; stderr is folded into
// the error when the process exits non-zero
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = time.Second

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return output, fmt.Errorf("%w (stderr: %q)", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return output, err
	}

	return output, nil
}
