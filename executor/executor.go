// Package executor runs privileged shell commands one at a time.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mobile-next/droidinput/utils"
)

// ExitFailure is the exit code reported when a command could not run to
// completion, and when it was rejected.
const ExitFailure = -1

var (
	// ErrBusy is returned when another command is still running. The
	// command is dropped, not queued.
	ErrBusy = errors.New("command already running")

	// ErrCommandFailed wraps start, wait and timeout failures.
	ErrCommandFailed = errors.New("command failed")
)

// Runner starts a command and waits for it. A non-zero exit status is not an
// error; err is reserved for commands that could not be started or waited on.
type Runner interface {
	Run(ctx context.Context, argv []string) (exitCode int, output []byte, err error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, argv []string) (int, []byte, error)

func (f RunnerFunc) Run(ctx context.Context, argv []string) (int, []byte, error) {
	return f(ctx, argv)
}

// Result is the outcome of an accepted command.
type Result struct {
	ExitCode int    `json:"exitCode"`
	Output   []byte `json:"output,omitempty"`
}

// Executor admits at most one command at a time.
type Executor struct {
	runner  Runner
	timeout time.Duration
	idle    atomic.Bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds each command. Zero, the default, waits forever.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// New creates an idle executor around runner.
func New(runner Runner, opts ...Option) *Executor {
	e := &Executor{runner: runner}
	e.idle.Store(true)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Busy reports whether a command is in flight.
func (e *Executor) Busy() bool {
	return !e.idle.Load()
}

// TryRun runs argv if no other command is running and blocks until it
// finishes. While busy it returns ErrBusy immediately.
func (e *Executor) TryRun(ctx context.Context, argv ...string) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: ExitFailure}, fmt.Errorf("%w: empty command", ErrCommandFailed)
	}

	if !e.idle.CompareAndSwap(true, false) {
		utils.Verbose("Rejected command, executor busy: %s", strings.Join(argv, " "))
		return Result{ExitCode: ExitFailure}, ErrBusy
	}
	defer e.idle.Store(true)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	started := time.Now()
	exitCode, output, err := e.runner.Run(ctx, argv)
	if err != nil {
		utils.Verbose("Command %q failed after %s: %v", strings.Join(argv, " "), time.Since(started), err)
		return Result{ExitCode: ExitFailure, Output: output}, fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	if len(output) > 0 {
		utils.Verbose("Command output: %s", strings.TrimSpace(string(output)))
	}
	utils.Verbose("Command %q exited with %d after %s", strings.Join(argv, " "), exitCode, time.Since(started))

	return Result{ExitCode: exitCode, Output: output}, nil
}
