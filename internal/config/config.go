package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/vimvar/internal/editor"
	"github.com/dshills/vimvar/logging"
)

// Output formats understood by the tool.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
	FormatYAML   = "yaml"
	FormatText   = "text"
)

// DialectAuto selects neovim if installed, else vim.
const DialectAuto = "auto"

// Settings are the resolved tool settings.
type Settings struct {
	// Dialect is "auto", "vim" or "nvim".
	Dialect string `toml:"dialect"`
	// Scope is the default variable scope, such as "g" or "buffer".
	Scope string `toml:"scope"`
	// Format is the output format.
	Format string `toml:"format"`
	// LogLevel is the minimum level logged to stderr.
	LogLevel string `toml:"log_level"`
	// EditorConfig is the vim or neovim startup file to source. Empty means
	// search the default locations.
	EditorConfig string `toml:"editor_config"`
	// MustExist fails loads whose EditorConfig does not exist.
	MustExist bool `toml:"must_exist"`
	// Timeout bounds each load, e.g. "10s". Empty or "0" means no limit.
	Timeout string `toml:"timeout"`
	// MaxEditors caps how many editors run at once. 0 means no limit.
	MaxEditors int `toml:"max_editors"`
	// Executables override the editor binaries.
	Executables Executables `toml:"executables"`
}

// Executables holds per-dialect executable overrides.
type Executables struct {
	Vim    string `toml:"vim"`
	NeoVim string `toml:"nvim"`
}

// DefaultMaxEditors is the default cap on concurrent editors.
const DefaultMaxEditors = 8

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Dialect:    DialectAuto,
		Scope:      "g",
		Format:     FormatJSON,
		LogLevel:   "warn",
		MaxEditors: DefaultMaxEditors,
	}
}

// Validate checks every setting and returns the first problem found.
func (s Settings) Validate() error {
	if s.Dialect != DialectAuto {
		if _, err := editor.ParseDialect(s.Dialect); err != nil {
			return &ValidationError{Key: "dialect", Message: "must be auto, vim or nvim", Value: s.Dialect}
		}
	}
	if _, err := editor.ParseScope(s.Scope); err != nil {
		return &ValidationError{Key: "scope", Message: "must be one of g, b, w, t, v", Value: s.Scope}
	}
	switch s.Format {
	case FormatJSON, FormatPretty, FormatYAML, FormatText:
	default:
		return &ValidationError{Key: "format", Message: "must be json, pretty, yaml or text", Value: s.Format}
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return &ValidationError{Key: "log_level", Message: "must be debug, info, warn or error", Value: s.LogLevel}
	}
	if _, err := s.TimeoutDuration(); err != nil {
		return &ValidationError{Key: "timeout", Message: err.Error(), Value: s.Timeout}
	}
	if s.MaxEditors < 0 {
		return &ValidationError{Key: "max_editors", Message: "must not be negative", Value: s.MaxEditors}
	}
	return nil
}

// TimeoutDuration parses Timeout. Zero means no limit.
func (s Settings) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" || s.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s.Timeout)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s.Timeout)
	}
	return d, nil
}

// DefaultPath returns the default settings file location, or "" if neither
// $XDG_CONFIG_HOME nor the home directory is known.
func DefaultPath(lookup func(string) (string, bool)) string {
	if xdg, ok := lookup("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "vimvar", "config.toml")
	}
	if home, ok := lookup("HOME"); ok && home != "" {
		return filepath.Join(home, ".config", "vimvar", "config.toml")
	}
	return ""
}

// Options controls Load.
type Options struct {
	// Path is an explicit settings file. It must exist.
	Path string
	// FS reads settings files. Defaults to the OS.
	FS FileSystem
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load resolves settings from defaults, the settings file and the
// environment. It returns the settings file that was applied, if any.
func Load(opts Options) (Settings, string, error) {
	if opts.FS == nil {
		opts.FS = OSFS{}
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}

	s := Defaults()

	path := opts.Path
	if path == "" {
		path = DefaultPath(opts.Lookup)
	}

	var applied string
	if path != "" {
		found, err := NewTOMLLoader(opts.FS).Apply(path, &s)
		switch {
		case err != nil:
			return s, "", err
		case found:
			applied = path
		case opts.Path != "":
			return s, "", fmt.Errorf("%w: %s", ErrFileNotFound, opts.Path)
		}
	}

	if err := NewEnvLoader(EnvPrefix, opts.Lookup).Apply(&s); err != nil {
		return s, applied, err
	}

	if err := s.Validate(); err != nil {
		return s, applied, err
	}
	return s, applied, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
