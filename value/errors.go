package value

import (
	"fmt"
	"strings"
)

// CastError reports a value whose shape does not fit the requested type.
type CastError struct {
	// Expected is the Go type that was requested.
	Expected string
	// Path locates the offending value inside the casted one, such as
	// ".servers[2].port". It is empty for the top-level value.
	Path string
	// Actual is the value that could not be converted.
	Actual Value
}

// Error implements the error interface.
func (e *CastError) Error() string {
	actual := e.Actual.String()
	if len(actual) > 64 {
		actual = actual[:61] + "..."
	}
	if e.Path == "" {
		return fmt.Sprintf("cannot cast %s %s to %s", e.Actual.Kind(), actual, e.Expected)
	}
	return fmt.Sprintf("cannot cast %s %s to %s at %s", e.Actual.Kind(), actual, e.Expected, e.Path)
}

// DecodeError reports editor output that is not a JSON value.
type DecodeError struct {
	// Raw is the untrimmed text that failed to parse.
	Raw string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	raw := strings.TrimSpace(e.Raw)
	if len(raw) > 80 {
		raw = raw[:77] + "..."
	}
	return fmt.Sprintf("invalid structured value: %q", raw)
}
