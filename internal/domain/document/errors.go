package document

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID is unknown, expired,
// or already destroyed.
var ErrSessionNotFound = errors.New("session not found")

// LoadError indicates the engine could not parse uploaded bytes
// (corrupt, encrypted without password, or not actually a PDF).
type LoadError struct {
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load %q as PDF: %v", e.Filename, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError wraps an engine parse failure for an uploaded file.
func NewLoadError(filename string, err error) *LoadError {
	return &LoadError{Filename: filename, Err: err}
}

// InvalidOperationError indicates a request that cannot be applied to the
// document in its current state: an out-of-range page, annotation, image
// or bookmark index, malformed geometry, or a missing input file. The
// message always names the offending value and the valid bound.
type InvalidOperationError struct {
	Op  string
	Msg string
	Err error
}

func (e *InvalidOperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *InvalidOperationError) Unwrap() error { return e.Err }

// Invalidf builds an InvalidOperationError with a formatted message.
func Invalidf(op, format string, args ...any) *InvalidOperationError {
	return &InvalidOperationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// InvalidIndex reports an out-of-range index together with the current
// bound, e.g. "page 7 out of range [0, 5)".
func InvalidIndex(op, what string, index, bound int) *InvalidOperationError {
	return &InvalidOperationError{
		Op:  op,
		Msg: fmt.Sprintf("%s %d out of range [0, %d)", what, index, bound),
	}
}

// WrapEngine converts an unclassified engine failure into an
// InvalidOperationError at the editor boundary, keeping the original
// message attached. Engine errors must never surface as opaque 500s.
func WrapEngine(op string, err error) error {
	if err == nil {
		return nil
	}
	var inv *InvalidOperationError
	if errors.As(err, &inv) {
		return err
	}
	return &InvalidOperationError{Op: op, Msg: "engine operation failed", Err: err}
}

// DependencyUnavailableError indicates an external tool needed for a
// delegated operation is not installed. Core operations never depend on
// such tools; this exists to acknowledge the collaborator boundary.
type DependencyUnavailableError struct {
	Dependency string
}

func (e *DependencyUnavailableError) Error() string {
	return fmt.Sprintf("required dependency %q is not available", e.Dependency)
}
