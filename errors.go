package main

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed or rejected caller input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a required record does not exist.
	// Missing optional attribute records are NOT errors; they degrade to
	// an absent sub-record on the candidate view.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an optimistic update loses its race
	// after the bounded retry budget is spent.
	ErrConflict = errors.New("conflict")

	// ErrDependency is returned when an attribute store lookup fails.
	// The engine does not retry store calls; that is the caller's policy.
	ErrDependency = errors.New("dependency failure")
)

// CapExceededError rejects a comparison-set mutation that would grow the
// stored set past its cap. The stored set is left untouched.
//
// The error matches ErrValidation via errors.Is.
type CapExceededError struct {
	Cap       int
	Requested int
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("comparison set cap exceeded: %d requested, cap is %d", e.Requested, e.Cap)
}

func (e *CapExceededError) Unwrap() error { return ErrValidation }

func dependencyError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependency, op, err)
}
