// Package vimvar reads the value of a vim or neovim variable.
//
// The editor is run headlessly against a configuration file, asked to print
// one variable as JSON, and the output is decoded into a value.Value. A
// variable that is not set is not an error: loads report it with ok ==
// false.
//
//	v := vimvar.New(vimvar.NeoVim, vimvar.Global, "mapleader")
//	leader, ok, err := vimvar.LoadTyped[string](ctx, loader, v)
//
// Every load starts exactly one editor process and waits for it. Loads are
// independent and may run concurrently.
package vimvar

import (
	"context"
	"sync"

	"github.com/dshills/vimvar/internal/editor"
	"github.com/dshills/vimvar/value"
)

// Dialect identifies an editor family.
type Dialect = editor.Dialect

// Supported dialects.
const (
	Vim    = editor.Vim
	NeoVim = editor.NeoVim
)

// Scope is the binding level of a variable.
type Scope = editor.Scope

// Supported scopes.
const (
	Global   = editor.Global
	Buffer   = editor.Buffer
	Window   = editor.Window
	Tab      = editor.Tab
	VimScope = editor.VimScope
)

// ErrNoEditor is returned when neither nvim nor vim can be found on PATH.
var ErrNoEditor = editor.ErrNoEditor

// ParseDialect parses "vim", "nvim" or "neovim".
func ParseDialect(s string) (Dialect, error) {
	return editor.ParseDialect(s)
}

// ParseScope parses a scope name such as "global" or a prefix such as "g:".
func ParseScope(s string) (Scope, error) {
	return editor.ParseScope(s)
}

// DetectDialect returns NeoVim if nvim is on PATH, else Vim if vim is.
func DetectDialect() (Dialect, error) {
	return editor.Detect()
}

// Var names one editor variable. It is an immutable value.
type Var struct {
	dialect Dialect
	scope   Scope
	name    string
}

// New returns a handle for the variable scope:name in the dialect. The name
// is validated when it is loaded.
func New(d Dialect, s Scope, name string) Var {
	return Var{dialect: d, scope: s, name: name}
}

// Dialect returns the editor family the variable is read from.
func (v Var) Dialect() Dialect { return v.dialect }

// Scope returns the variable's scope.
func (v Var) Scope() Scope { return v.scope }

// Name returns the variable name without its scope prefix.
func (v Var) Name() string { return v.name }

// String renders the variable as vimscript would, e.g. "g:mapleader".
func (v Var) String() string {
	return v.scope.Prefix() + v.name
}

var defaultLoader = sync.OnceValue(func() *Loader {
	return NewLoader()
})

// Load reads the variable with a shared default Loader.
func (v Var) Load(ctx context.Context) (value.Value, bool, error) {
	return defaultLoader().Load(ctx, v)
}

// LoadWithConfig reads the variable with a shared default Loader using an
// explicit config file.
func (v Var) LoadWithConfig(ctx context.Context, path string, mustExist bool) (value.Value, bool, error) {
	return defaultLoader().LoadWithConfig(ctx, v, path, mustExist)
}

// LoadGlobal reads g:name from the editor found on PATH.
func LoadGlobal(ctx context.Context, name string) (value.Value, bool, error) {
	return loadDetected(ctx, Global, name)
}

// LoadBuffer reads b:name from the editor found on PATH.
func LoadBuffer(ctx context.Context, name string) (value.Value, bool, error) {
	return loadDetected(ctx, Buffer, name)
}

// LoadWindow reads w:name from the editor found on PATH.
func LoadWindow(ctx context.Context, name string) (value.Value, bool, error) {
	return loadDetected(ctx, Window, name)
}

// LoadTab reads t:name from the editor found on PATH.
func LoadTab(ctx context.Context, name string) (value.Value, bool, error) {
	return loadDetected(ctx, Tab, name)
}

// LoadVim reads v:name from the editor found on PATH.
func LoadVim(ctx context.Context, name string) (value.Value, bool, error) {
	return loadDetected(ctx, VimScope, name)
}

func loadDetected(ctx context.Context, s Scope, name string) (value.Value, bool, error) {
	d, err := editor.Detect()
	if err != nil {
		return value.Value{}, false, &LoadError{Kind: KindSpawn, Var: New(NeoVim, s, name), Err: err}
	}
	return New(d, s, name).Load(ctx)
}
