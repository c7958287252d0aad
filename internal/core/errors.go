package core

import (
	"errors"
	"fmt"
)

// Validation errors are rejected at the intake boundary before the store is
// touched. They all match ErrValidation through errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrValidation)
	ErrEmptySource      = fmt.Errorf("%w: empty source", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidMood      = fmt.Errorf("%w: unknown mood", ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrEmptyGoalName    = fmt.Errorf("%w: empty goal name", ErrValidation)
	ErrNegativeAmount   = fmt.Errorf("%w: amount must not be negative", ErrValidation)
)

// Boundary errors. These propagate unretried to the caller.
var (
	ErrClassification  = errors.New("classification failed")
	ErrExtraction      = errors.New("text extraction failed")
	ErrPersistence     = errors.New("ledger store failed")
	ErrDegenerateGoal  = errors.New("goal target must be positive")
	ErrNothingToExport = errors.New("no shared goals to export")
)

type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }
func (e *kindError) Is(target error) bool {
	return errors.Is(e.kind, target)
}

// WrapKind tags err with one of the error kinds above while keeping the
// original chain reachable through errors.Is and errors.As.
func WrapKind(kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}
