package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TOMLLoader applies TOML settings files.
type TOMLLoader struct {
	fs FileSystem
}

// NewTOMLLoader creates a TOML loader reading through fsys.
func NewTOMLLoader(fsys FileSystem) *TOMLLoader {
	if fsys == nil {
		fsys = OSFS{}
	}
	return &TOMLLoader{fs: fsys}
}

// Apply overlays the file at path onto s. Keys absent from the file keep
// their current values; unknown keys are an error. found is false if the
// file does not exist.
func (l *TOMLLoader) Apply(path string, s *Settings) (found bool, err error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	next := *s
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return true, parseError(path, err)
	}
	*s = next
	return true, nil
}

func parseError(path string, err error) error {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}

	var decErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decErr):
		pe.Line, pe.Column = decErr.Position()
	case errors.As(err, &strictErr) && len(strictErr.Errors) > 0:
		first := strictErr.Errors[0]
		pe.Line, pe.Column = first.Position()
		pe.Message = fmt.Sprintf("unknown key %q", strings.Join(first.Key(), "."))
	}
	return pe
}
