package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid input", ErrInvalidInput},
		{"invalid transition", ErrInvalidTransition},
		{"immutable", ErrImmutable},
		{"stock", ErrStockValidation},
		{"inactive", ErrInactive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestInactiveIsReportedAsNotFound(t *testing.T) {
	err := fmt.Errorf("customer 2: %w", ErrInactive)
	if !stdErrors.Is(err, ErrInactive) || !stdErrors.Is(err, ErrNotFound) {
		t.Fatalf("expected inactive error to match both sentinels: %v", err)
	}
	if stdErrors.Is(ErrNotFound, ErrInactive) {
		t.Fatal("plain not found must not read as inactive")
	}
}

func TestTransitionErrorNamesBothStates(t *testing.T) {
	err := error(&TransitionError{Entity: "order", From: "PENDING", To: "SHIPPED"})
	if !stdErrors.Is(err, ErrInvalidTransition) {
		t.Fatal("expected transition error to match sentinel")
	}
	msg := err.Error()
	if !strings.Contains(msg, "PENDING") || !strings.Contains(msg, "SHIPPED") {
		t.Fatalf("expected both states in message, got %q", msg)
	}
}

func TestStockErrorListsEveryViolation(t *testing.T) {
	err := error(&StockError{Violations: []string{"product 1 not found", "product 2: insufficient stock"}})
	if !stdErrors.Is(err, ErrStockValidation) {
		t.Fatal("expected stock error to match sentinel")
	}
	if got := strings.Count(err.Error(), "\n"); got != 2 {
		t.Fatalf("expected one line per violation, got %q", err.Error())
	}
}

func TestBatchErrorUnwrapsFailures(t *testing.T) {
	err := error(&BatchError{Failures: []BatchFailure{
		{Key: 1, Err: ErrAlreadyExists},
		{Key: 2, Err: stdErrors.New("boom")},
	}})
	if !stdErrors.Is(err, ErrAlreadyExists) {
		t.Fatal("expected batch error to expose member failures")
	}
	if !strings.Contains(err.Error(), "2 of batch failed") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestInvalidWrapsSentinel(t *testing.T) {
	err := Invalid("period %q", "2024-13")
	if !stdErrors.Is(err, ErrInvalidInput) {
		t.Fatal("expected invalid input sentinel")
	}
	if !strings.Contains(err.Error(), `"2024-13"`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
