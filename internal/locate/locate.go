// Package locate finds the conventional startup file of vim and neovim.
//
// Candidates are checked in a fixed priority order and the first one that
// exists wins. Not finding a config is a normal outcome: callers fall back to
// running the editor without one.
//
// # Unix
//
//   - $XDG_CONFIG_HOME/nvim/init.lua, $XDG_CONFIG_HOME/nvim/init.vim (neovim)
//   - ~/.config/nvim/init.lua, ~/.config/nvim/init.vim (neovim)
//   - ~/.vimrc, ~/.vim/vimrc (vim)
//
// # Windows
//
//   - $XDG_CONFIG_HOME/nvim/init.lua, $XDG_CONFIG_HOME/nvim/init.vim (neovim)
//   - ~/AppData/Local/nvim/init.lua, ~/AppData/Local/nvim/init.vim (neovim)
//   - ~/_vimrc, ~/vimfiles/vimrc, $VIM/_vimrc (vim)
//
// The vim entries are reported for listing only. Loading through vim needs
// /dev/stdout, so on windows only neovim can read variables.
//
// # Other
//
//   - $XDG_CONFIG_HOME/nvim/init.lua, $XDG_CONFIG_HOME/nvim/init.vim (neovim)
package locate

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dshills/vimvar/internal/editor"
)

// FileSystem is the subset of file system operations the locator needs.
type FileSystem interface {
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Env supplies the environment the search depends on.
type Env interface {
	// XDGConfigHome returns $XDG_CONFIG_HOME if set.
	XDGConfigHome() (string, bool)
	// Home returns the user's home directory, or "" if unknown.
	Home() string
	// VimEnv returns $VIM if set.
	VimEnv() (string, bool)
	// GOOS returns the target platform name.
	GOOS() string
}

// OSEnv reads the environment of the current process.
type OSEnv struct{}

// XDGConfigHome returns $XDG_CONFIG_HOME if set and non-empty.
func (OSEnv) XDGConfigHome() (string, bool) {
	return lookupNonEmpty("XDG_CONFIG_HOME")
}

// Home returns the user's home directory.
func (OSEnv) Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// VimEnv returns $VIM if set and non-empty.
func (OSEnv) VimEnv() (string, bool) {
	return lookupNonEmpty("VIM")
}

// GOOS returns runtime.GOOS.
func (OSEnv) GOOS() string {
	return runtime.GOOS
}

func lookupNonEmpty(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Locator searches for editor configuration files.
// A Locator holds no mutable state and is safe for concurrent use.
type Locator struct {
	fs  FileSystem
	env Env
}

// Option configures a Locator.
type Option func(*Locator)

// WithFS sets the file system used for existence checks.
func WithFS(fsys FileSystem) Option {
	return func(l *Locator) {
		l.fs = fsys
	}
}

// WithEnv sets the environment the search paths are derived from.
func WithEnv(env Env) Option {
	return func(l *Locator) {
		l.env = env
	}
}

// New creates a Locator backed by the OS unless overridden.
func New(opts ...Option) *Locator {
	l := &Locator{
		fs:  OSFS{},
		env: OSEnv{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Default returns a Locator for the current process environment.
func Default() *Locator {
	return New()
}

// Candidates returns the search paths for the dialect in priority order,
// whether or not they exist.
func (l *Locator) Candidates(d editor.Dialect) []string {
	switch d {
	case editor.NeoVim:
		return l.neovimCandidates()
	case editor.Vim:
		return l.vimCandidates()
	default:
		return nil
	}
}

// Find returns the first existing config file for the dialect.
func (l *Locator) Find(d editor.Dialect) (string, bool) {
	return l.first(l.Candidates(d))
}

// FindAny searches the neovim locations and then the vim ones.
func (l *Locator) FindAny() (string, bool) {
	paths := append(l.neovimCandidates(), l.vimCandidates()...)
	return l.first(paths)
}

// Exists reports whether path exists on the locator's file system.
func (l *Locator) Exists(path string) bool {
	_, err := l.fs.Stat(path)
	return err == nil
}

func (l *Locator) first(paths []string) (string, bool) {
	for _, p := range paths {
		if l.Exists(p) {
			return p, true
		}
	}
	return "", false
}

func (l *Locator) neovimCandidates() []string {
	var paths []string

	if xdg, ok := l.env.XDGConfigHome(); ok {
		paths = append(paths,
			filepath.Join(xdg, "nvim", "init.lua"),
			filepath.Join(xdg, "nvim", "init.vim"),
		)
	}

	home := l.env.Home()
	if home == "" {
		return paths
	}

	switch l.platform() {
	case platformUnix:
		paths = append(paths,
			filepath.Join(home, ".config", "nvim", "init.lua"),
			filepath.Join(home, ".config", "nvim", "init.vim"),
		)
	case platformWindows:
		paths = append(paths,
			filepath.Join(home, "AppData", "Local", "nvim", "init.lua"),
			filepath.Join(home, "AppData", "Local", "nvim", "init.vim"),
		)
	}

	return paths
}

func (l *Locator) vimCandidates() []string {
	var paths []string
	home := l.env.Home()

	switch l.platform() {
	case platformUnix:
		if home != "" {
			paths = append(paths,
				filepath.Join(home, ".vimrc"),
				filepath.Join(home, ".vim", "vimrc"),
			)
		}
	case platformWindows:
		if home != "" {
			paths = append(paths,
				filepath.Join(home, "_vimrc"),
				filepath.Join(home, "vimfiles", "vimrc"),
			)
		}
		if vim, ok := l.env.VimEnv(); ok {
			paths = append(paths, filepath.Join(vim, "_vimrc"))
		}
	}

	return paths
}

type platform int

const (
	platformOther platform = iota
	platformUnix
	platformWindows
)

func (l *Locator) platform() platform {
	switch l.env.GOOS() {
	case "windows":
		return platformWindows
	case "linux", "darwin", "freebsd", "openbsd", "netbsd", "dragonfly",
		"solaris", "illumos", "aix", "android", "ios", "hurd":
		return platformUnix
	default:
		return platformOther
	}
}
