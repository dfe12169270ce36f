package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Invocation is a fully resolved command line for one editor run.
type Invocation struct {
	// Path is the executable name or path. Bare names are resolved on PATH.
	Path string
	// Args are the arguments, passed to the child verbatim without a shell.
	Args []string
	// Env, when non-nil, replaces the child's environment.
	Env []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// String renders the invocation the way a shell user would type it.
// It is meant for logs only.
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Path)
	for _, a := range inv.Args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\|$`;&<>()*?!{}[]#~") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result is the captured outcome of one run.
type Result struct {
	ExitCode int
	// Killed is set when a signal ended the child; ExitCode is then -1.
	Killed   bool
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner executes invocations as supervised child processes.
type Runner struct {
	supervisor *Supervisor
	lookPath   func(string) (string, error)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSupervisor sets the supervisor children are registered with.
func WithSupervisor(s *Supervisor) RunnerOption {
	return func(r *Runner) {
		r.supervisor = s
	}
}

// WithLookPath overrides executable resolution.
func WithLookPath(fn func(string) (string, error)) RunnerOption {
	return func(r *Runner) {
		r.lookPath = fn
	}
}

// NewRunner creates a Runner with its own supervisor unless one is given.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.supervisor == nil {
		r.supervisor = NewSupervisor()
	}
	return r
}

// Supervisor returns the supervisor tracking this runner's children.
func (r *Runner) Supervisor() *Supervisor {
	return r.supervisor
}

// Run starts inv, waits for it to exit and returns what it printed.
//
// Launch failures are reported as *SpawnError. A non-zero exit status is
// not an error here; use Classify on the result. If ctx ends first the
// child is killed, reaped, and ctx.Err() is returned wrapped.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s: %w", inv.Path, err)
	}

	path, err := r.lookPath(inv.Path)
	if err != nil {
		return nil, &SpawnError{Executable: inv.Path, Err: err}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, inv.Args...)
	cmd.Env = inv.Env
	cmd.Dir = inv.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)

	proc, err := r.supervisor.Start(inv.Path, cmd)
	if err != nil {
		if errors.Is(err, ErrSupervisorShutdown) {
			return nil, err
		}
		return nil, &SpawnError{Executable: inv.Path, Err: err}
	}
	defer r.supervisor.release(proc.ID)

	select {
	case <-proc.Done():
	case <-ctx.Done():
		_ = proc.Kill()
		<-proc.Done()
		return nil, fmt.Errorf("run %s: %w", inv.Path, ctx.Err())
	}

	return &Result{
		ExitCode: proc.ExitCode(),
		Killed:   proc.State() == StateKilled,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: proc.Runtime(),
	}, nil
}
