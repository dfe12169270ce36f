// Package editor defines the editor dialects and variable scopes understood
// by vimvar.
package editor

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoEditor is returned by Detect when neither nvim nor vim is on PATH.
var ErrNoEditor = errors.New("no vim or neovim executable found in PATH")

// Dialect identifies an editor family.
type Dialect int

const (
	// Vim is the classic vim editor, driven with vimscript.
	Vim Dialect = iota
	// NeoVim is neovim, which also accepts Lua commands and init.lua configs.
	NeoVim
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case Vim:
		return "vim"
	case NeoVim:
		return "nvim"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// Executable returns the default executable name for the dialect.
func (d Dialect) Executable() string {
	switch d {
	case NeoVim:
		return "nvim"
	default:
		return "vim"
	}
}

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	return d == Vim || d == NeoVim
}

// ParseDialect parses a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vim":
		return Vim, nil
	case "nvim", "neovim":
		return NeoVim, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", s)
	}
}

// Detect returns the dialect of the first editor found on PATH.
// Neovim is preferred over vim.
func Detect() (Dialect, error) {
	return detect(exec.LookPath)
}

func detect(lookPath func(string) (string, error)) (Dialect, error) {
	for _, d := range []Dialect{NeoVim, Vim} {
		if _, err := lookPath(d.Executable()); err == nil {
			return d, nil
		}
	}
	return 0, ErrNoEditor
}

// Scope is the binding level of a variable.
type Scope int

const (
	// Global is the g: scope.
	Global Scope = iota
	// Buffer is the b: scope.
	Buffer
	// Window is the w: scope.
	Window
	// Tab is the t: scope.
	Tab
	// VimScope is the read-mostly v: scope of predefined vim variables.
	VimScope
)

// Prefix returns the vimscript prefix for the scope, including the colon.
func (s Scope) Prefix() string {
	return s.Letter() + ":"
}

// Letter returns the single letter naming the scope.
func (s Scope) Letter() string {
	switch s {
	case Global:
		return "g"
	case Buffer:
		return "b"
	case Window:
		return "w"
	case Tab:
		return "t"
	case VimScope:
		return "v"
	default:
		return ""
	}
}

// String returns a human-readable scope name.
func (s Scope) String() string {
	switch s {
	case Global:
		return "global"
	case Buffer:
		return "buffer"
	case Window:
		return "window"
	case Tab:
		return "tab"
	case VimScope:
		return "vim"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s >= Global && s <= VimScope
}

// ParseScope parses either a scope name ("global") or its letter ("g", "g:").
func ParseScope(s string) (Scope, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ":") {
	case "g", "global":
		return Global, nil
	case "b", "buffer":
		return Buffer, nil
	case "w", "window":
		return Window, nil
	case "t", "tab", "tabpage":
		return Tab, nil
	case "v", "vim":
		return VimScope, nil
	default:
		return 0, fmt.Errorf("unknown scope %q", s)
	}
}
