package unitgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLine is matched by every *LineError.
	ErrMalformedLine = errors.New("unitgraph: malformed table line")

	// ErrUnresolvedUnit is matched by every *UnresolvedError.
	ErrUnresolvedUnit = errors.New("unitgraph: unresolved unit")
)

// LineError reports a table line that could not be turned into an edge.
type LineError struct {
	Line int    // 1-based line number
	Text string // the raw line
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("unitgraph: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedLine) true for any LineError.
func (e *LineError) Is(err error) bool { return err == ErrMalformedLine }

// Reasons carried by UnresolvedError.
const (
	ReasonUnknown   = "unknown"
	ReasonAmbiguous = "ambiguous"
)

// UnresolvedError reports a query token that matched no unit, or more than
// one unit exactly.
type UnresolvedError struct {
	Query  string
	Reason string

	// Candidates lists the exact hits for an ambiguous query.
	Candidates []string
}

func (e *UnresolvedError) Error() string {
	if e.Reason == ReasonAmbiguous {
		return fmt.Sprintf("unitgraph: %q is ambiguous (%d units match)", e.Query, len(e.Candidates))
	}
	return fmt.Sprintf("unitgraph: %q is not a valid unit", e.Query)
}

// Is makes errors.Is(err, ErrUnresolvedUnit) true for any UnresolvedError.
func (e *UnresolvedError) Is(err error) bool { return err == ErrUnresolvedUnit }
