package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrImmutable         = errors.New("record is no longer editable")
	ErrStockValidation   = errors.New("stock validation failed")
)

// ErrInactive marks a record that exists but is deactivated. It is reported as not found.
var ErrInactive = fmt.Errorf("inactive: %w", ErrNotFound)

// TransitionError reports a lifecycle move that is not allowed.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StockError lists every offending line item of an order request.
type StockError struct {
	Violations []string
}

func (e *StockError) Error() string {
	return "stock errors:\n" + strings.Join(e.Violations, "\n")
}

func (e *StockError) Is(target error) bool {
	return target == ErrStockValidation
}

// BatchFailure is a single failed unit of a batch operation.
type BatchFailure struct {
	Key int64
	Err error
}

// BatchError collects failures of a best effort batch.
type BatchError struct {
	Failures []BatchFailure
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%d: %v", f.Key, f.Err))
	}
	return fmt.Sprintf("%d of batch failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Invalid wraps ErrInvalidInput with a field specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
