package vimvar

import (
	"errors"
	"fmt"

	"github.com/dshills/vimvar/internal/command"
	"github.com/dshills/vimvar/internal/process"
	"github.com/dshills/vimvar/value"
)

// ErrorKind classifies a failed load.
type ErrorKind int

const (
	// KindUnknown is returned by KindOf for errors that are not a *LoadError.
	KindUnknown ErrorKind = iota
	// KindSpawn means the editor could not be started, including when the
	// dialect is not supported on this platform.
	KindSpawn
	// KindProcess means the editor exited with a status that was not
	// accepted. This includes a variable that exists but has no JSON form.
	KindProcess
	// KindDecode means the editor printed something that is not JSON.
	KindDecode
	// KindCast means the value does not fit the requested Go type.
	KindCast
	// KindConfigNotFound means a required config file does not exist.
	KindConfigNotFound
	// KindInvalidVar means the variable cannot be expressed as an editor
	// command, such as an empty name.
	KindInvalidVar
	// KindCanceled means the context ended before the editor exited.
	KindCanceled
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindProcess:
		return "process"
	case KindDecode:
		return "decode"
	case KindCast:
		return "cast"
	case KindConfigNotFound:
		return "config not found"
	case KindInvalidVar:
		return "invalid variable"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error types a LoadError may wrap. Use errors.As to reach them.
type (
	// SpawnError reports an editor executable that could not be launched.
	SpawnError = process.SpawnError
	// ProcessError reports an editor exit status that was not accepted.
	ProcessError = process.ExitError
	// DecodeError reports output that is not a JSON value.
	DecodeError = value.DecodeError
	// CastError reports a value that does not fit the requested type.
	CastError = value.CastError
	// InvalidNameError reports a variable name that cannot be embedded in a
	// command.
	InvalidNameError = command.InvalidNameError
)

// ErrConfigNotFound matches every *ConfigNotFoundError with errors.Is.
var ErrConfigNotFound = errors.New("config file not found")

// ErrEditorLimit is wrapped by KindSpawn errors of loads refused because
// the loader already runs as many editors as WithMaxEditors allows.
var ErrEditorLimit = process.ErrProcessLimit

// ConfigNotFoundError reports a required config file that does not exist.
type ConfigNotFoundError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// Is reports whether target is ErrConfigNotFound.
func (e *ConfigNotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}

// Unwrap returns the underlying stat error.
func (e *ConfigNotFoundError) Unwrap() error {
	return e.Err
}

// LoadError is the error returned by every failed load.
type LoadError struct {
	Kind ErrorKind
	Var  Var
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Var, e.Var.Dialect(), e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the *LoadError in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}
