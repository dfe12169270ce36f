// Package command synthesizes the editor command lines that print one
// variable as JSON on standard output and exit.
//
// The variable name only ever appears inside a quoted string literal of the
// target language, so no name can terminate the expression it sits in.
//
// A variable that exists but has no JSON form, such as a Funcref or a Job,
// makes the editor exit with EncodeFailedExitCode and the encoder's message
// on standard error. It is never printed as null.
//
// The vim dialect writes to /dev/stdout and is only supported on unix-like
// systems.
package command

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/vimvar/internal/editor"
	"github.com/dshills/vimvar/internal/process"
)

// NoConfig is passed to -u when no configuration file should be sourced.
const NoConfig = "NONE"

// EncodeFailedExitCode is the exit status of an editor that found the
// variable but could not encode it as JSON.
const EncodeFailedExitCode = 3

// Errors returned by Build for inputs it cannot express.
var (
	ErrUnknownDialect = errors.New("unknown editor dialect")
	ErrUnknownScope   = errors.New("unknown variable scope")

	// ErrUnsupportedPlatform is returned for vim on windows, which has no
	// /dev/stdout to write the value to.
	ErrUnsupportedPlatform = errors.New("vim dialect requires /dev/stdout and is not supported on windows")
)

var goos = runtime.GOOS

// InvalidNameError reports a variable name that cannot be embedded safely.
type InvalidNameError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid variable name %q: %s", e.Name, e.Reason)
}

// ValidateName checks that name is non-empty UTF-8 without control
// characters.
func ValidateName(name string) error {
	if name == "" {
		return &InvalidNameError{Name: name, Reason: "empty"}
	}
	if !utf8.ValidString(name) {
		return &InvalidNameError{Name: name, Reason: "not valid UTF-8"}
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return &InvalidNameError{Name: name, Reason: "contains a control character"}
		}
	}
	return nil
}

// Build returns the invocation that prints scope:name for the dialect.
//
// An empty configPath runs the editor with "-u NONE". An empty executable
// selects the dialect's default. Identical inputs always produce identical
// invocations. Vim is unix-only; on windows Build returns
// ErrUnsupportedPlatform for it.
func Build(d editor.Dialect, s editor.Scope, name, configPath, executable string) (process.Invocation, error) {
	if !d.Valid() {
		return process.Invocation{}, fmt.Errorf("%w: %d", ErrUnknownDialect, int(d))
	}
	if !s.Valid() {
		return process.Invocation{}, fmt.Errorf("%w: %d", ErrUnknownScope, int(s))
	}
	if err := ValidateName(name); err != nil {
		return process.Invocation{}, err
	}

	if executable == "" {
		executable = d.Executable()
	}
	cfg := configPath
	if cfg == "" {
		cfg = NoConfig
	}

	var args []string
	switch d {
	case editor.Vim:
		if goos == "windows" {
			return process.Invocation{}, ErrUnsupportedPlatform
		}
		args = []string{
			"-u", cfg,
			"-i", "NONE",
			"-N",
			"-n",
			"--not-a-term",
			"-es",
			"-c", "set nonumber",
			"-c", VimExpr(s, name),
			"-c", "qa!",
		}
	case editor.NeoVim:
		chunk := LuaChunk(s, name)
		if err := checkLua(chunk); err != nil {
			return process.Invocation{}, err
		}
		args = []string{
			"--headless",
			"-u", cfg,
			"-i", "NONE",
			"-n",
			"-c", "lua " + chunk,
			"-c", "qa!",
		}
	}

	return process.Invocation{Path: executable, Args: args}, nil
}

// VimExpr returns the ex command that writes the variable, or null when it
// is unset, to standard output. If encoding fails the exception goes to
// standard error and vim exits with EncodeFailedExitCode.
func VimExpr(s editor.Scope, name string) string {
	return fmt.Sprintf("try | call writefile([json_encode(get(%s, %s, v:null))], '/dev/stdout')"+
		" | catch | call writefile([v:exception], '/dev/stderr') | cquit %d | endtry",
		s.Prefix(), vimQuote(name), EncodeFailedExitCode)
}

// LuaChunk returns the Lua code that writes the variable, or null when it
// is unset, to standard output. If encoding fails the error goes to
// standard error and nvim exits with EncodeFailedExitCode.
//
// nvim hands vimscript Funcrefs to Lua as nil, so a nil value is checked
// against the variable's vimscript type before it is printed as null.
func LuaChunk(s editor.Scope, name string) string {
	isFunc := fmt.Sprintf("type(get(%s, %s, 0)) == v:t_func", s.Prefix(), vimQuote(name))
	return fmt.Sprintf("local v = vim.%s[%s] local ok, out"+
		" if v == nil and vim.fn.eval(%s) == 1 then ok, out = false, \"Funcref has no JSON form\""+
		" else if v == nil then v = vim.NIL end ok, out = pcall(vim.json.encode, v) end"+
		" if ok then io.stdout:write(out) else io.stderr:write(tostring(out)) vim.cmd(\"cquit %d\") end",
		s.Letter(), luaQuote(name), luaQuote(isFunc), EncodeFailedExitCode)
}

// checkLua catches builder bugs that would hand nvim a chunk it cannot
// load; luaQuote alone keeps every name inside its literal.
func checkLua(chunk string) error {
	if _, err := parse.Parse(strings.NewReader(chunk), "vimvar"); err != nil {
		return fmt.Errorf("generated lua does not parse: %w", err)
	}
	return nil
}

// vimQuote renders s as a single-quoted vimscript literal.
func vimQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// luaQuote renders s as a double-quoted Lua literal. Bytes outside
// printable ASCII use three-digit decimal escapes, which every Lua version
// accepts and which cannot absorb a following digit.
func luaQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, "\\%03d", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
