package hierarchy

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrInstrumentationNotFound = errors.New("instrumentation not found")
	ErrInvalidID               = errors.New("id must be a non-negative integer")
	ErrDuplicateID             = errors.New("duplicate id")
	ErrCycleDetected           = errors.New("cycle in parent chain")
	ErrUnknownValueKey         = errors.New("value key not declared for instrumentation")
)

// LinkError provides structured information about a failed link step
// during hierarchy construction.
type LinkError struct {
	Op     string // link step that failed (e.g. "LinkInstrumentations")
	Entity string // entity type being resolved
	ID     int    // unresolvable id
	Ref    string // entity holding the dangling reference
	Cause  error
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s: %s %d referenced by %s: %v", e.Op, e.Entity, e.ID, e.Ref, e.Cause)
	}
	return fmt.Sprintf("%s: %s %d: %v", e.Op, e.Entity, e.ID, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LinkError) Unwrap() error {
	return e.Cause
}

// CycleError reports a self-referential or cyclic parent chain found
// while linking. Path holds the node ids along the cycle, first id
// repeated at the end.
type CycleError struct {
	Path []int
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: node path %v", ErrCycleDetected, e.Path)
}

// Unwrap ties the error into the ErrCycleDetected chain.
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}
