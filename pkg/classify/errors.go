package classify

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeometry is returned when a polygon cannot be classified against
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrUnknownMethod is returned for a Method value outside the known set
	ErrUnknownMethod = errors.New("unknown classification method")
)

// GeometryError describes the malformed polygon that rejected a call
type GeometryError struct {
	Index  int    // position in the input polygon slice
	ID     string // polygon ID, may be empty
	Ring   int    // offending ring, -1 when the polygon has no rings
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Ring < 0 {
		return fmt.Sprintf("invalid geometry: polygon %d (%q): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("invalid geometry: polygon %d (%q) ring %d: %s", e.Index, e.ID, e.Ring, e.Reason)
}

func (e *GeometryError) Unwrap() error {
	return ErrInvalidGeometry
}

// WorkerError wraps the failure of a single per-polygon evaluation
type WorkerError struct {
	Index int
	ID    string
	Err   error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("failed to classify polygon %d (%q): %v", e.Index, e.ID, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}
