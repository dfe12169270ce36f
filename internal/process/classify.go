package process

import "bytes"

// Outcome is the accepted form of a run.
type Outcome int

const (
	// OutcomeOK means the editor exited with code 0.
	OutcomeOK Outcome = iota
	// OutcomeTolerated means the editor exited with code 1 but still printed
	// a decodable value. This is a compatibility shim for vim builds that
	// report failure after a successful dump, not a guarantee of any editor
	// version; callers should log when it happens.
	OutcomeTolerated
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTolerated:
		return "tolerated"
	default:
		return "unknown"
	}
}

// Classify decides whether res may be decoded.
//
// decodable reports whether stdout holds a value the caller can decode; it
// is consulted only for exit code 1. Any rejected result yields *ExitError.
func Classify(res *Result, decodable func([]byte) bool) (Outcome, error) {
	switch {
	case res.Killed:
		return 0, &ExitError{ExitCode: res.ExitCode, Killed: true, Stderr: res.Stderr}
	case res.ExitCode == 0:
		return OutcomeOK, nil
	case res.ExitCode == 1 && len(bytes.TrimSpace(res.Stdout)) > 0 && decodable(res.Stdout):
		return OutcomeTolerated, nil
	default:
		return 0, &ExitError{ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
}
