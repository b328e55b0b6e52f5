/*
service.go - Request lifecycle orchestration

PURPOSE:
  The state machine governing a leave request from creation through
  approval, rejection or cancellation, driving the balance ledger as a
  side effect of each transition.

STATE MACHINE:
  DRAFT ──submit──▶ PENDING ──approve──▶ APPROVED ──cancel──▶ CANCELLED
    │                  │    └──reject──▶ REJECTED
    └──────cancel──────┴────────cancel─▶ CANCELLED

  REJECTED and CANCELLED are terminal. APPROVED is terminal for the
  approval question but still cancellable; cancelling an approved request
  reverses its taken days.

BALANCE EFFECTS (one per transition, always paired with the status write):
  create → PENDING    reserve pending
  create → APPROVED   book taken directly (auto-approval, no approval gate)
  create → DRAFT      none
  approve             pending → taken
  reject              release pending
  cancel from PENDING release pending
  cancel from APPROVED release taken
  cancel from DRAFT   none

ATOMICITY:
  Every transition runs inside Store.WithTx: the availability check, the
  ledger adjustment and the request's status write are one unit. Two
  concurrent creates against the same balance serialize; the second sees
  the first's reservation, never a stale pre-reservation value. No balance
  mutation happens outside this file.

SEE ALSO:
  - balance.go:  The four ledger adjustments and their invariants
  - calendar.go: Day-count computation at creation time
*/
package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service orchestrates the request lifecycle. All mutations flow through
// the store's transactional boundary.
type Service struct {
	store Store

	// Clock supplies "now" for approval timestamps. Overridable in tests.
	Clock func() time.Time
}

// NewService creates a lifecycle service on the given store.
func NewService(store Store) *Service {
	return &Service{store: store, Clock: time.Now}
}

// CreateParams carries the inputs for CreateRequest. The organization id
// is always explicit; the engine never reads ambient tenant state.
type CreateParams struct {
	OrgID        OrgID
	EmployeeID   EmployeeID
	LeaveTypeID  LeaveTypeID
	StartDate    time.Time
	EndDate      time.Time
	StartHalfDay bool
	EndHalfDay   bool
	Reason       string

	// AutoSubmit enters the approval workflow immediately. When false the
	// request is persisted as DRAFT with no balance effect, regardless of
	// whether the leave type requires approval.
	AutoSubmit bool
}

// CreateRequest creates a leave request.
//
// The day count is computed once here and is immutable afterwards. For a
// PENDING or APPROVED outcome the availability check and the reservation
// happen inside one transaction; on InsufficientBalanceError no request is
// persisted and the ledger is untouched.
func (s *Service) CreateRequest(ctx context.Context, p CreateParams) (*Request, error) {
	days := CalculateWorkingDays(p.StartDate, p.EndDate, p.StartHalfDay, p.EndHalfDay, true)
	if days.IsZero() {
		return nil, &EmptyPeriodError{Start: p.StartDate, End: p.EndDate}
	}

	now := s.Clock()
	req := &Request{
		ID:           NewRequestID(),
		OrgID:        p.OrgID,
		EmployeeID:   p.EmployeeID,
		LeaveTypeID:  p.LeaveTypeID,
		StartDate:    dateOnly(p.StartDate),
		EndDate:      dateOnly(p.EndDate),
		StartHalfDay: p.StartHalfDay,
		EndHalfDay:   p.EndHalfDay,
		DaysCount:    days,
		Reason:       p.Reason,
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.store.WithTx(ctx, func(tx Store) error {
		policy, err := tx.GetLeaveType(ctx, p.OrgID, p.LeaveTypeID)
		if err != nil {
			return err
		}

		if !p.AutoSubmit {
			// Drafts never touch the ledger.
			return tx.SaveRequest(ctx, req)
		}

		return s.enterWorkflow(ctx, tx, req, *policy)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// SubmitDraft moves a DRAFT request into the approval workflow, applying
// the same validation and balance effects as an auto-submitted create.
func (s *Service) SubmitDraft(ctx context.Context, id RequestID) (*Request, error) {
	var req *Request
	err := s.store.WithTx(ctx, func(tx Store) error {
		var err error
		req, err = tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != StatusDraft {
			return &InvalidTransitionError{RequestID: id, From: req.Status, Action: "submit"}
		}

		policy, err := tx.GetLeaveType(ctx, req.OrgID, req.LeaveTypeID)
		if err != nil {
			return err
		}

		req.UpdatedAt = s.Clock()
		return s.enterWorkflow(ctx, tx, req, *policy)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// enterWorkflow validates availability and applies the PENDING or
// auto-APPROVED balance effect, then persists the request. Must run
// inside a transaction.
func (s *Service) enterWorkflow(ctx context.Context, tx Store, req *Request, policy Policy) error {
	bal, err := tx.GetOrCreateBalance(ctx, req.OrgID, req.EmployeeID, req.LeaveTypeID, req.BalanceYear())
	if err != nil {
		return err
	}

	if req.DaysCount.GreaterThan(bal.Available()) {
		return &InsufficientBalanceError{
			EmployeeID:  req.EmployeeID,
			LeaveTypeID: req.LeaveTypeID,
			Year:        req.BalanceYear(),
			Requested:   req.DaysCount,
			Available:   bal.Available(),
		}
	}

	if policy.RequiresApproval {
		req.Status = StatusPending
		if err := bal.ReservePending(req.DaysCount); err != nil {
			return err
		}
	} else {
		// Self-service leave type: no approval gate, book taken directly.
		req.Status = StatusApproved
		now := s.Clock()
		req.ApprovedAt = &now
		if err := bal.BookTaken(req.DaysCount); err != nil {
			return err
		}
	}

	if err := tx.SaveRequest(ctx, req); err != nil {
		return err
	}
	return tx.UpdateBalance(ctx, bal)
}

// Approve approves a PENDING request, converting its pending days to taken.
func (s *Service) Approve(ctx context.Context, id RequestID, approverID string) (*Request, error) {
	return s.transition(ctx, id, "approve", func(tx Store, req *Request, bal *Balance) error {
		if req.Status != StatusPending {
			return &InvalidTransitionError{RequestID: id, From: req.Status, Action: "approve"}
		}
		if err := bal.ReleasePendingToTaken(req.DaysCount); err != nil {
			return err
		}
		now := s.Clock()
		req.Status = StatusApproved
		req.ApproverID = approverID
		req.ApprovedAt = &now
		req.UpdatedAt = now
		return nil
	})
}

// Reject rejects a PENDING request, releasing its pending days. A
// non-empty reason is required.
func (s *Service) Reject(ctx context.Context, id RequestID, approverID, reason string) (*Request, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "rejection reason is required"}
	}
	return s.transition(ctx, id, "reject", func(tx Store, req *Request, bal *Balance) error {
		if req.Status != StatusPending {
			return &InvalidTransitionError{RequestID: id, From: req.Status, Action: "reject"}
		}
		if err := bal.ReleasePending(req.DaysCount); err != nil {
			return err
		}
		now := s.Clock()
		req.Status = StatusRejected
		req.ApproverID = approverID
		req.ApprovedAt = &now
		req.RejectionReason = reason
		req.UpdatedAt = now
		return nil
	})
}

// Cancel cancels a request from DRAFT, PENDING or APPROVED.
//
// Cancelling PENDING releases the pending days; cancelling APPROVED
// reverses the taken days; cancelling DRAFT has no balance effect because
// none was ever reserved. REJECTED and CANCELLED refuse the transition.
func (s *Service) Cancel(ctx context.Context, id RequestID) (*Request, error) {
	return s.transition(ctx, id, "cancel", func(tx Store, req *Request, bal *Balance) error {
		switch req.Status {
		case StatusPending:
			if err := bal.ReleasePending(req.DaysCount); err != nil {
				return err
			}
		case StatusApproved:
			if err := bal.ReleaseTaken(req.DaysCount); err != nil {
				return err
			}
		case StatusDraft:
			// Nothing reserved, nothing to release.
		default:
			return &InvalidTransitionError{RequestID: id, From: req.Status, Action: "cancel"}
		}
		req.Status = StatusCancelled
		req.UpdatedAt = s.Clock()
		return nil
	})
}

// transition runs one lifecycle step as a single atomic unit: load the
// request and its ledger entry, apply fn, write both back. fn mutates the
// request and balance in memory; any error rolls back everything.
func (s *Service) transition(ctx context.Context, id RequestID, action string, fn func(tx Store, req *Request, bal *Balance) error) (*Request, error) {
	var req *Request
	err := s.store.WithTx(ctx, func(tx Store) error {
		var err error
		req, err = tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}

		bal, err := tx.GetOrCreateBalance(ctx, req.OrgID, req.EmployeeID, req.LeaveTypeID, req.BalanceYear())
		if err != nil {
			return err
		}

		if err := fn(tx, req, bal); err != nil {
			return err
		}

		if err := tx.SaveRequest(ctx, req); err != nil {
			return err
		}
		return tx.UpdateBalance(ctx, bal)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// GetRequest fetches a request by id.
func (s *Service) GetRequest(ctx context.Context, id RequestID) (*Request, error) {
	return s.store.GetRequest(ctx, id)
}

// GetBalance returns the balance snapshot for (employee, leave type,
// year), lazily creating the zeroed entry on first access. Calling it
// twice without an intervening mutation returns identical values.
func (s *Service) GetBalance(ctx context.Context, org OrgID, employee EmployeeID, leaveType LeaveTypeID, year int) (Snapshot, error) {
	bal, err := s.store.GetOrCreateBalance(ctx, org, employee, leaveType, year)
	if err != nil {
		return Snapshot{}, err
	}
	return bal.Snapshot(), nil
}

// Accrue credits one accrual amount to the entry, capped by policy. When
// override is nil the policy's per-period rate is used. Returns the new
// acquired amount.
//
// Accrue does not itself prevent double-accrual; use AccruePeriod for
// schedulers that must credit at most once per month.
func (s *Service) Accrue(ctx context.Context, org OrgID, employee EmployeeID, leaveType LeaveTypeID, year int, override *decimal.Decimal) (decimal.Decimal, error) {
	var acquired decimal.Decimal
	err := s.store.WithTx(ctx, func(tx Store) error {
		policy, err := tx.GetLeaveType(ctx, org, leaveType)
		if err != nil {
			return err
		}
		bal, err := tx.GetOrCreateBalance(ctx, org, employee, leaveType, year)
		if err != nil {
			return err
		}
		acquired, err = Accrue(bal, *policy, AccrualAmount(*policy, override))
		if err != nil {
			return err
		}
		return tx.UpdateBalance(ctx, bal)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return acquired, nil
}

// AccruePeriod credits the policy rate for one (year, month) at most once:
// the period is marked inside the same transaction as the credit, so a
// second sweep for the same period is a no-op. Returns whether the credit
// was applied.
func (s *Service) AccruePeriod(ctx context.Context, org OrgID, employee EmployeeID, leaveType LeaveTypeID, year int, month time.Month) (bool, error) {
	credited := false
	err := s.store.WithTx(ctx, func(tx Store) error {
		fresh, err := tx.MarkAccrual(ctx, org, employee, leaveType, year, month)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		policy, err := tx.GetLeaveType(ctx, org, leaveType)
		if err != nil {
			return err
		}
		bal, err := tx.GetOrCreateBalance(ctx, org, employee, leaveType, year)
		if err != nil {
			return err
		}
		if _, err := Accrue(bal, *policy, policy.AccrualRate); err != nil {
			return err
		}
		credited = true
		return tx.UpdateBalance(ctx, bal)
	})
	return credited, err
}
