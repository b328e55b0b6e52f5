/*
Package leave implements the time-off balance and request engine.

PURPOSE:
  This package contains the domain model and algorithms for tracking how
  many days off an employee has earned, reserving and releasing days across
  the approval workflow, and computing calendar-aware day counts.

KEY CONCEPTS IN THIS FILE (types.go):
  - Policy:  Immutable per-leave-type configuration (paid, approval, cap, accrual)
  - Balance: Per (employee, leave type, year) ledger entry
  - Request: A leave request moving through the approval state machine
  - Employee: Minimal directory record (identity + manager relationship)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all day quantities (half-day granularity)
  2. Type Safety: Strong typing for IDs prevents mixing employee/type/org IDs
  3. Explicit scope: Organization ID is always an explicit field, never ambient
  4. Auditability: Requests are never deleted; cancellation is a terminal state

SEE ALSO:
  - calendar.go: Working-day computation
  - balance.go:  Ledger entry arithmetic and invariants
  - service.go:  Request lifecycle orchestration
*/
package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OrgID string
type EmployeeID string
type LeaveTypeID string
type RequestID string

// NewRequestID mints a unique request identifier.
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// =============================================================================
// POLICY - Immutable per-leave-type configuration
// =============================================================================

// Policy describes one leave type. It is supplied by the leave-policy
// provider and treated as an immutable value object during any balance
// computation.
type Policy struct {
	ID               LeaveTypeID
	Code             string
	Name             string
	IsPaid           bool
	RequiresApproval bool

	// MaxDaysPerYear caps the acquired amount for a year. Nil means uncapped.
	MaxDaysPerYear *decimal.Decimal

	// AccrualRate is the number of days acquired per accrual period (month).
	AccrualRate decimal.Decimal

	// Color is used by calendar projections. Cosmetic only.
	Color string
}

// =============================================================================
// BALANCE - Ledger entry per (employee, leave type, year)
// =============================================================================

// Balance is the ledger entry holding acquired, carried-over, taken and
// pending day amounts for one employee, leave type and year.
//
// Entries are created lazily on first access and never deleted, only
// amended. All mutation goes through the Reserve*/Release* operations in
// balance.go so the non-negativity invariants are enforced in one place.
type Balance struct {
	ID          string
	OrgID       OrgID
	EmployeeID  EmployeeID
	LeaveTypeID LeaveTypeID
	Year        int

	Acquired    decimal.Decimal
	CarriedOver decimal.Decimal
	Taken       decimal.Decimal
	Pending     decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available returns acquired + carriedOver - taken - pending.
func (b *Balance) Available() decimal.Decimal {
	return b.Acquired.Add(b.CarriedOver).Sub(b.Taken).Sub(b.Pending)
}

// TotalAcquired returns acquired + carriedOver.
func (b *Balance) TotalAcquired() decimal.Decimal {
	return b.Acquired.Add(b.CarriedOver)
}

// Snapshot is the read-only balance view returned to callers.
type Snapshot struct {
	Acquired    decimal.Decimal
	CarriedOver decimal.Decimal
	Taken       decimal.Decimal
	Pending     decimal.Decimal
	Available   decimal.Decimal
}

// Snapshot captures the entry's current amounts.
func (b *Balance) Snapshot() Snapshot {
	return Snapshot{
		Acquired:    b.Acquired,
		CarriedOver: b.CarriedOver,
		Taken:       b.Taken,
		Pending:     b.Pending,
		Available:   b.Available(),
	}
}

// =============================================================================
// REQUEST - A leave request moving through the approval workflow
// =============================================================================

type RequestStatus string

const (
	StatusDraft     RequestStatus = "DRAFT"
	StatusPending   RequestStatus = "PENDING"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCancelled RequestStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed from s.
// APPROVED is not terminal: an approved request may still be cancelled,
// which reverses its taken days.
func (s RequestStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// Request is a single leave request. DaysCount is computed once at creation
// and immutable thereafter; editing a request means creating a new one.
type Request struct {
	ID          RequestID
	OrgID       OrgID
	EmployeeID  EmployeeID
	LeaveTypeID LeaveTypeID

	StartDate    time.Time
	EndDate      time.Time
	StartHalfDay bool
	EndHalfDay   bool

	DaysCount decimal.Decimal
	Reason    string
	Status    RequestStatus

	ApproverID      string
	ApprovedAt      *time.Time
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BalanceYear returns the ledger year this request charges against.
func (r *Request) BalanceYear() int {
	return r.StartDate.Year()
}

// =============================================================================
// EMPLOYEE - Minimal directory record
// =============================================================================

// Employee is the slice of the employee directory this engine needs:
// identity, tenant scope and the manager relationship used by the team
// calendar projector.
type Employee struct {
	ID        EmployeeID
	OrgID     OrgID
	Name      string
	Email     string
	ManagerID EmployeeID
	Active    bool
	CreatedAt time.Time
}
