/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.

ERROR CATEGORIES:
  1. Business errors  - recoverable, returned to callers
       ErrEmptyPeriod, ErrInsufficientBalance, ErrInvalidTransition,
       ErrValidation
  2. Not-found errors - missing referenced records
  3. Consistency errors - internal invariant violations. These are
       programming errors, not user-facing validation failures: they abort
       the enclosing transaction instead of being clamped or swallowed.

USAGE:
  if errors.Is(err, leave.ErrInsufficientBalance) {
      var ibe *leave.InsufficientBalanceError
      errors.As(err, &ibe) // carries Requested and Available for display
  }
*/
package leave

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyPeriod is returned when a requested period contains no
	// chargeable working days.
	ErrEmptyPeriod = errors.New("period contains no working days")

	// ErrInsufficientBalance is returned when a request exceeds the
	// available balance at submission time.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidTransition is returned when a lifecycle transition is
	// attempted from a state that does not permit it.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation is returned when a transition is missing a required
	// field (e.g. a rejection without a reason).
	ErrValidation = errors.New("validation failed")

	// ErrConsistency signals an internal ledger invariant violation
	// (negative pending/taken after subtraction). Fatal, never clamped.
	ErrConsistency = errors.New("ledger consistency violation")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrLeaveTypeNotFound is returned when a referenced leave type doesn't exist.
	ErrLeaveTypeNotFound = errors.New("leave type not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// EmptyPeriodError reports a request whose computed day count is zero.
type EmptyPeriodError struct {
	Start time.Time
	End   time.Time
}

func (e *EmptyPeriodError) Error() string {
	return fmt.Sprintf("no working days between %s and %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

func (e *EmptyPeriodError) Unwrap() error { return ErrEmptyPeriod }

// InsufficientBalanceError provides the amounts needed for display.
// No partial state change accompanies this error.
type InsufficientBalanceError struct {
	EmployeeID  EmployeeID
	LeaveTypeID LeaveTypeID
	Year        int
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s, available %s",
		e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InvalidTransitionError reports a lifecycle operation attempted from a
// state that does not permit it. Never partially applied.
type InvalidTransitionError struct {
	RequestID RequestID
	From      RequestStatus
	Action    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s request %s in status %s", e.Action, e.RequestID, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConsistencyError reports an operation that would drive a ledger amount
// negative. It aborts the enclosing transaction; operators should be
// alerted, because it means request state and ledger state disagree.
type ConsistencyError struct {
	Field   string // "pending", "taken" or "acquired"
	Current decimal.Decimal
	Delta   decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("ledger %s would go negative: current %s, delta %s",
		e.Field, e.Current, e.Delta)
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is a recoverable business error
// caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyPeriod) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrLeaveTypeNotFound)
}
