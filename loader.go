package vimvar

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/dshills/vimvar/internal/command"
	"github.com/dshills/vimvar/internal/locate"
	"github.com/dshills/vimvar/internal/process"
	"github.com/dshills/vimvar/logging"
	"github.com/dshills/vimvar/value"
)

// DefaultShutdownTimeout is how long Close waits for editors to exit after
// asking them to terminate.
const DefaultShutdownTimeout = 2 * time.Second

// Locator finds the default config file of a dialect.
type Locator interface {
	Find(d Dialect) (string, bool)
}

// Loader runs editors to read variables. Its configuration is fixed at
// construction and it is safe for concurrent use.
type Loader struct {
	runner          *process.Runner
	locator         Locator
	logger          *logging.Logger
	executables     map[Dialect]string
	shutdownTimeout time.Duration
	maxEditors      int
}

// Option configures a Loader.
type Option func(*Loader)

// WithExecutable runs path instead of the dialect's default executable.
func WithExecutable(d Dialect, path string) Option {
	return func(l *Loader) {
		l.executables[d] = path
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLocator replaces the search for default config files.
func WithLocator(loc Locator) Option {
	return func(l *Loader) {
		if loc != nil {
			l.locator = loc
		}
	}
}

// WithShutdownTimeout sets how long Close waits before killing editors.
func WithShutdownTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.shutdownTimeout = d
	}
}

// WithMaxEditors caps how many editors the loader runs at once. A load
// that would exceed it fails immediately with KindSpawn and an error
// matching ErrEditorLimit; callers that fan out should bound their own
// concurrency to n. 0 means unlimited.
func WithMaxEditors(n int) Option {
	return func(l *Loader) {
		l.maxEditors = n
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		locator:         locate.Default(),
		logger:          logging.Null(),
		executables:     make(map[Dialect]string),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithComponent("loader")

	log := l.logger
	supervisor := process.NewSupervisor(
		process.WithMaxProcesses(l.maxEditors),
		process.WithProcessExitCallback(func(p *process.Process) {
			log.Debug("%s %s after %s (code %d)", p.Name, p.State(), p.Runtime(), p.ExitCode())
		}),
	)
	l.runner = process.NewRunner(process.WithSupervisor(supervisor))
	return l
}

// Running returns the number of editor processes currently running.
func (l *Loader) Running() int {
	return l.runner.Supervisor().Count()
}

// Close stops any editors still running. Loads started after Close fail
// with KindSpawn.
func (l *Loader) Close() error {
	l.runner.Supervisor().Shutdown(l.shutdownTimeout)
	return nil
}

// Load reads v using the dialect's default config file. When none exists
// the editor runs without a config.
func (l *Loader) Load(ctx context.Context, v Var) (value.Value, bool, error) {
	path, found := l.locator.Find(v.dialect)
	if found {
		l.logger.WithField("var", v.String()).Debug("using config %s", path)
	} else {
		l.logger.WithField("var", v.String()).Debug("no %s config found, running without one", v.dialect)
	}
	return l.load(ctx, v, path)
}

// LoadWithConfig reads v using the config file at path.
//
// If mustExist is set and path does not exist, a KindConfigNotFound error
// is returned and no editor is started. Otherwise the editor decides what a
// missing file means. An empty path runs the editor without a config.
func (l *Loader) LoadWithConfig(ctx context.Context, v Var, path string, mustExist bool) (value.Value, bool, error) {
	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return value.Value{}, false, &LoadError{
				Kind: KindConfigNotFound,
				Var:  v,
				Err:  &ConfigNotFoundError{Path: path, Err: err},
			}
		}
	}
	return l.load(ctx, v, path)
}

func (l *Loader) load(ctx context.Context, v Var, path string) (value.Value, bool, error) {
	log := l.logger.WithField("var", v.String())

	inv, err := command.Build(v.dialect, v.scope, v.name, path, l.executables[v.dialect])
	if err != nil {
		kind := KindInvalidVar
		if errors.Is(err, command.ErrUnsupportedPlatform) {
			kind = KindSpawn
		}
		return value.Value{}, false, &LoadError{Kind: kind, Var: v, Err: err}
	}
	log.Debug("running %s", inv)

	res, err := l.runner.Run(ctx, inv)
	if err != nil {
		kind := KindSpawn
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = KindCanceled
		}
		return value.Value{}, false, &LoadError{Kind: kind, Var: v, Err: err}
	}

	outcome, err := process.Classify(res, value.Valid)
	if err != nil {
		return value.Value{}, false, &LoadError{Kind: KindProcess, Var: v, Err: err}
	}
	if outcome == process.OutcomeTolerated {
		log.Warn("%s exited with code 1 but printed a value; accepting it", inv.Path)
	}

	val, ok, err := value.Decode(res.Stdout)
	if err != nil {
		return value.Value{}, false, &LoadError{Kind: KindDecode, Var: v, Err: err}
	}
	log.Debug("loaded in %s (set=%t)", res.Duration, ok)
	return val, ok, nil
}

// LoadTyped loads v and casts it to T. An unset variable yields the zero T
// and ok == false.
func LoadTyped[T any](ctx context.Context, l *Loader, v Var) (T, bool, error) {
	val, ok, err := l.Load(ctx, v)
	return castLoaded[T](v, val, ok, err)
}

// LoadTypedWithConfig is LoadWithConfig followed by a cast to T.
func LoadTypedWithConfig[T any](ctx context.Context, l *Loader, v Var, path string, mustExist bool) (T, bool, error) {
	val, ok, err := l.LoadWithConfig(ctx, v, path, mustExist)
	return castLoaded[T](v, val, ok, err)
}

func castLoaded[T any](v Var, val value.Value, ok bool, err error) (T, bool, error) {
	var zero T
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := value.Cast[T](val)
	if err != nil {
		return zero, false, &LoadError{Kind: KindCast, Var: v, Err: err}
	}
	return out, true, nil
}
