/*
store.go - Persistence interface for the leave engine

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory
  storage; store/sqlite is the shipped implementation.

TRANSACTIONAL CONTRACT:
  WithTx executes fn against a store view bound to one database
  transaction, serialized against other writers. Every lifecycle
  transition runs its whole read-validate-write sequence inside WithTx so
  a request-status change and its paired balance adjustment commit or roll
  back together. A nested WithTx joins the enclosing transaction.

LAZY BALANCE CREATION:
  GetOrCreateBalance inserts a zeroed entry on first access. The
  implementation must make this race-safe: a unique constraint on
  (org, employee, leave type, year) with insert-or-ignore + re-read, never
  two writers both inserting.
*/
package leave

import (
	"context"
	"time"
)

// Store is the persistence boundary for the leave engine.
type Store interface {
	// WithTx executes fn within a transaction serialized against other
	// writers. If fn returns an error the transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error

	BalanceStore
	RequestStore
	DirectoryStore
}

// BalanceStore persists ledger entries.
type BalanceStore interface {
	// GetOrCreateBalance lazily creates a zeroed entry if absent.
	GetOrCreateBalance(ctx context.Context, org OrgID, employee EmployeeID, leaveType LeaveTypeID, year int) (*Balance, error)

	// UpdateBalance writes back a mutated entry.
	UpdateBalance(ctx context.Context, b *Balance) error

	// MarkAccrual records that an accrual period was credited for the
	// entry. Returns false without error when the period was already
	// marked, so schedulers can sweep idempotently.
	MarkAccrual(ctx context.Context, org OrgID, employee EmployeeID, leaveType LeaveTypeID, year int, month time.Month) (bool, error)
}

// RequestStore persists leave requests. Requests are never deleted.
type RequestStore interface {
	SaveRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, id RequestID) (*Request, error)
	ListRequestsByEmployee(ctx context.Context, org OrgID, employee EmployeeID) ([]Request, error)
	ListPendingRequests(ctx context.Context, org OrgID) ([]Request, error)

	// ListRequestsOverlapping returns requests for the given employees in
	// the given statuses whose [StartDate, EndDate] overlaps [from, to],
	// ordered by start date.
	ListRequestsOverlapping(ctx context.Context, org OrgID, employees []EmployeeID, from, to time.Time, statuses []RequestStatus) ([]Request, error)
}

// DirectoryStore is the slice of the employee directory and the policy
// provider this engine consumes. Both are externally owned; the engine
// only reads them (plus seed/admin writes).
type DirectoryStore interface {
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, org OrgID, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context, org OrgID) ([]Employee, error)
	ListDirectReports(ctx context.Context, org OrgID, manager EmployeeID) ([]Employee, error)

	SaveLeaveType(ctx context.Context, org OrgID, p Policy) error
	GetLeaveType(ctx context.Context, org OrgID, id LeaveTypeID) (*Policy, error)
	ListLeaveTypes(ctx context.Context, org OrgID) ([]Policy, error)
}
