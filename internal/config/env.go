package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of the environment variables read by EnvLoader.
const EnvPrefix = "VIMVAR_"

// EnvLoader applies settings from environment variables.
type EnvLoader struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvLoader creates an environment loader. The prefix should include the
// trailing underscore.
func NewEnvLoader(prefix string, lookup func(string) (string, bool)) *EnvLoader {
	return &EnvLoader{prefix: prefix, lookup: lookup}
}

// setters maps variable names, without prefix, to the setting they change.
var setters = map[string]func(s *Settings, v string) error{
	"DIALECT":       func(s *Settings, v string) error { s.Dialect = v; return nil },
	"SCOPE":         func(s *Settings, v string) error { s.Scope = v; return nil },
	"FORMAT":        func(s *Settings, v string) error { s.Format = v; return nil },
	"LOG_LEVEL":     func(s *Settings, v string) error { s.LogLevel = v; return nil },
	"EDITOR_CONFIG": func(s *Settings, v string) error { s.EditorConfig = v; return nil },
	"TIMEOUT":       func(s *Settings, v string) error { s.Timeout = v; return nil },
	"VIM":           func(s *Settings, v string) error { s.Executables.Vim = v; return nil },
	"NVIM":          func(s *Settings, v string) error { s.Executables.NeoVim = v; return nil },
	"MUST_EXIST": func(s *Settings, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		s.MustExist = b
		return nil
	},
	"MAX_EDITORS": func(s *Settings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
		s.MaxEditors = n
		return nil
	},
}

// Names returns the environment variables the loader reads, sorted.
func (l *EnvLoader) Names() []string {
	names := make([]string, 0, len(setters))
	for k := range setters {
		names = append(names, l.prefix+k)
	}
	sort.Strings(names)
	return names
}

// Apply overlays every set variable onto s.
// Note: Empty values are treated as set.
func (l *EnvLoader) Apply(s *Settings) error {
	for _, name := range l.Names() {
		val, ok := l.lookup(name)
		if !ok {
			continue
		}
		if err := setters[strings.TrimPrefix(name, l.prefix)](s, val); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
