// Package main is the entry point for the vimvar command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/vimvar"
	"github.com/dshills/vimvar/internal/config"
	"github.com/dshills/vimvar/internal/editor"
	"github.com/dshills/vimvar/internal/locate"
	"github.com/dshills/vimvar/internal/output"
	"github.com/dshills/vimvar/internal/watcher"
	"github.com/dshills/vimvar/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitLoad  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.LookupEnv, os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	settingsPath string
	showVersion  bool
	showPaths    bool
	watch        bool
	names        []string
}

// app is one run of the command.
type app struct {
	settings config.Settings
	dialect  editor.Dialect
	scope    editor.Scope
	format   output.Format
	timeout  time.Duration
	locator  *locate.Locator
	logger   *logging.Logger
	stdout   io.Writer
	stderr   io.Writer
}

func run(ctx context.Context, args []string, lookup func(string) (string, bool), stdout, stderr io.Writer) int {
	opts, overrides, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "vimvar %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	settings, settingsFile, err := config.Load(config.Options{Path: opts.settingsPath, Lookup: lookup})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	overrides(&settings)
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	a := &app{
		settings: settings,
		locator:  locate.New(locate.WithEnv(lookupEnv(lookup))),
		stdout:   stdout,
		stderr:   stderr,
	}
	level, _ := logging.ParseLevel(settings.LogLevel)
	a.logger = logging.New(logging.Config{Level: level, Output: stderr, Prefix: "vimvar"})
	if settingsFile != "" {
		a.logger.Debug("settings loaded from %s", settingsFile)
	}
	a.scope, _ = editor.ParseScope(settings.Scope)
	a.timeout, _ = settings.TimeoutDuration()
	a.format, _ = output.ParseFormat(settings.Format)

	if opts.showPaths {
		a.printPaths()
		return exitOK
	}

	if len(opts.names) == 0 {
		fmt.Fprintln(stderr, "Error: no variable names given")
		return exitUsage
	}
	vars, err := a.parseNames(opts.names)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if settings.Dialect == config.DialectAuto {
		a.dialect, err = editor.Detect()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitLoad
		}
	} else {
		a.dialect, _ = editor.ParseDialect(settings.Dialect)
	}
	for i := range vars {
		vars[i] = vimvar.New(a.dialect, vars[i].Scope(), vars[i].Name())
	}

	loader := vimvar.NewLoader(
		vimvar.WithLogger(a.logger),
		vimvar.WithLocator(a.locator),
		vimvar.WithExecutable(editor.Vim, settings.Executables.Vim),
		vimvar.WithExecutable(editor.NeoVim, settings.Executables.NeoVim),
		vimvar.WithMaxEditors(settings.MaxEditors),
	)
	defer loader.Close()

	if !opts.watch {
		if err := a.loadAndPrint(ctx, loader, vars); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitLoad
		}
		return exitOK
	}
	return a.watch(ctx, loader, vars)
}

// parseFlags parses args. The returned function applies the flags that were
// set explicitly on top of file and environment settings.
func parseFlags(args []string, stderr io.Writer) (options, func(*config.Settings), error) {
	var opts options
	var flagSettings config.Settings

	fs := flag.NewFlagSet("vimvar", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&flagSettings.Dialect, "dialect", "", "Editor dialect (auto, vim, nvim)")
	fs.StringVar(&flagSettings.Scope, "scope", "", "Default variable scope (g, b, w, t, v)")
	fs.StringVar(&flagSettings.EditorConfig, "config", "", "Editor config file to source instead of the default one")
	fs.BoolVar(&flagSettings.MustExist, "must-exist", false, "Fail if the -config file does not exist")
	fs.StringVar(&flagSettings.Format, "format", "", "Output format (json, pretty, yaml, text)")
	fs.StringVar(&flagSettings.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&flagSettings.Timeout, "timeout", "", "Time limit for each load, e.g. 10s")
	fs.IntVar(&flagSettings.MaxEditors, "max-editors", config.DefaultMaxEditors, "Maximum editors run at once (0 for no limit)")
	fs.StringVar(&flagSettings.Executables.Vim, "vim", "", "Path to the vim executable")
	fs.StringVar(&flagSettings.Executables.NeoVim, "nvim", "", "Path to the nvim executable")
	fs.StringVar(&opts.settingsPath, "settings", "", "Path to the vimvar settings file")
	fs.BoolVar(&opts.watch, "watch", false, "Print again whenever the editor config changes")
	fs.BoolVar(&opts.showPaths, "paths", false, "Show the editor config search paths and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "vimvar - read vim and neovim variables\n\n")
		fmt.Fprintf(stderr, "Usage: vimvar [options] name...\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  vimvar mapleader              Print g:mapleader as JSON\n")
		fmt.Fprintf(stderr, "  vimvar -dialect vim b:did_ftplugin\n")
		fmt.Fprintf(stderr, "  vimvar -format yaml -watch colors_name background\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	opts.names = fs.Args()

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(s *config.Settings) {
		if set["dialect"] {
			s.Dialect = flagSettings.Dialect
		}
		if set["scope"] {
			s.Scope = flagSettings.Scope
		}
		if set["config"] {
			s.EditorConfig = flagSettings.EditorConfig
		}
		if set["must-exist"] {
			s.MustExist = flagSettings.MustExist
		}
		if set["format"] {
			s.Format = flagSettings.Format
		}
		if set["log-level"] {
			s.LogLevel = flagSettings.LogLevel
		}
		if set["timeout"] {
			s.Timeout = flagSettings.Timeout
		}
		if set["max-editors"] {
			s.MaxEditors = flagSettings.MaxEditors
		}
		if set["vim"] {
			s.Executables.Vim = flagSettings.Executables.Vim
		}
		if set["nvim"] {
			s.Executables.NeoVim = flagSettings.Executables.NeoVim
		}
	}
	return opts, apply, nil
}

// parseNames turns arguments like "mapleader" or "b:did_ftplugin" into
// variables. The dialect is filled in later.
func (a *app) parseNames(names []string) ([]vimvar.Var, error) {
	vars := make([]vimvar.Var, 0, len(names))
	for _, n := range names {
		scope := a.scope
		if len(n) > 2 && n[1] == ':' {
			s, err := editor.ParseScope(n[:1])
			if err != nil {
				return nil, fmt.Errorf("variable %q: %w", n, err)
			}
			scope, n = s, n[2:]
		}
		vars = append(vars, vimvar.New(editor.Vim, scope, n))
	}
	return vars, nil
}

func (a *app) printPaths() {
	dialects := []editor.Dialect{editor.NeoVim, editor.Vim}
	if a.settings.Dialect != config.DialectAuto {
		d, _ := editor.ParseDialect(a.settings.Dialect)
		dialects = []editor.Dialect{d}
	}

	for _, d := range dialects {
		fmt.Fprintf(a.stdout, "%s:\n", d)
		for _, p := range a.locator.Candidates(d) {
			mark := " "
			if a.locator.Exists(p) {
				mark = "*"
			}
			fmt.Fprintf(a.stdout, "  %s %s\n", mark, p)
		}
	}
}

// loadAll loads every variable concurrently, at most MaxEditors at a time.
// The first failure cancels the remaining loads.
func (a *app) loadAll(ctx context.Context, loader *vimvar.Loader, vars []vimvar.Var) ([]output.Result, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	results := make([]output.Result, len(vars))
	g, ctx := errgroup.WithContext(ctx)
	if a.settings.MaxEditors > 0 {
		g.SetLimit(a.settings.MaxEditors)
	}
	for i, v := range vars {
		i, v := i, v
		g.Go(func() error {
			var err error
			res := output.Result{Name: v.String()}
			if a.settings.EditorConfig != "" {
				res.Value, res.Set, err = loader.LoadWithConfig(ctx, v, a.settings.EditorConfig, a.settings.MustExist)
			} else {
				res.Value, res.Set, err = loader.Load(ctx, v)
			}
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *app) loadAndPrint(ctx context.Context, loader *vimvar.Loader, vars []vimvar.Var) error {
	results, err := a.loadAll(ctx, loader, vars)
	if err != nil {
		return err
	}

	r := output.NewRenderer(a.format, output.IsTerminal(a.stdout))
	var out []byte
	if len(results) == 1 {
		out, err = r.Render(results[0])
	} else {
		out, err = r.RenderAll(results)
	}
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(out)
	return err
}

// watch prints the variables, then prints them again after every change to
// the editor config until ctx ends.
func (a *app) watch(ctx context.Context, loader *vimvar.Loader, vars []vimvar.Var) int {
	path := a.settings.EditorConfig
	if path == "" {
		found, ok := a.locator.Find(a.dialect)
		if !ok {
			fmt.Fprintf(a.stderr, "Error: no %s config found to watch\n", a.dialect)
			return exitUsage
		}
		path = found
	}

	w, err := watcher.New(watcher.DefaultDelay)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitLoad
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitLoad
	}

	log := a.logger.WithComponent("watch")
	log.Info("watching %s", path)

	show := func() {
		if err := a.loadAndPrint(ctx, loader, vars); err != nil && ctx.Err() == nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}
	show()

	errs := w.Errors()
	for {
		select {
		case <-ctx.Done():
			return exitOK
		case c, ok := <-w.Changes():
			if !ok {
				return exitOK
			}
			log.Debug("changed: %s", strings.Join(c.Paths, ", "))
			show()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn("watch error: %v", err)
		}
	}
}

// lookupEnv adapts an environment lookup function to locate.Env.
type lookupEnv func(string) (string, bool)

func (l lookupEnv) XDGConfigHome() (string, bool) { return l.nonEmpty("XDG_CONFIG_HOME") }

func (l lookupEnv) VimEnv() (string, bool) { return l.nonEmpty("VIM") }

func (l lookupEnv) Home() string {
	if home, ok := l.nonEmpty("HOME"); ok {
		return home
	}
	home, _ := l.nonEmpty("USERPROFILE")
	return home
}

func (l lookupEnv) GOOS() string { return locate.OSEnv{}.GOOS() }

func (l lookupEnv) nonEmpty(key string) (string, bool) {
	v, ok := l(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
