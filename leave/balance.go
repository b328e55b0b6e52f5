/*
balance.go - Ledger entry arithmetic and invariants

PURPOSE:
  The four atomic adjustments a lifecycle transition can apply to a
  Balance entry, with the non-negativity invariants enforced in one place:

    ReservePending        pending += amount        (create → PENDING)
    ReleasePendingToTaken pending -= n; taken += n (approve)
    ReleasePending        pending -= amount        (reject, cancel PENDING)
    ReleaseTaken          taken   -= amount        (cancel APPROVED)

INVARIANTS:
  - taken >= 0 and pending >= 0 at all times.
  - An attempt to subtract more than currently held is a ConsistencyError,
    not a user-facing validation failure, and is refused rather than
    silently clamped to zero. It aborts the enclosing transaction.
  - Amount arguments must be >= 0. Negative amounts are the same class of
    programming error.

  Availability checks (amount <= Available()) are NOT re-validated here.
  Validation and reservation happen inside one transactional unit in
  service.go; these operations only guard the ledger's own invariants.

SEE ALSO:
  - service.go: The only caller; pairs each adjustment with a status change
*/
package leave

import "github.com/shopspring/decimal"

// ReservePending holds amount days as pending approval.
func (b *Balance) ReservePending(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &ConsistencyError{Field: "pending", Current: b.Pending, Delta: amount}
	}
	b.Pending = b.Pending.Add(amount)
	return nil
}

// ReleasePendingToTaken converts amount days from pending to taken.
// Used on approval.
func (b *Balance) ReleasePendingToTaken(amount decimal.Decimal) error {
	if err := b.ReleasePending(amount); err != nil {
		return err
	}
	b.Taken = b.Taken.Add(amount)
	return nil
}

// ReleasePending frees amount days held as pending. Used on rejection and
// when cancelling a still-pending request.
func (b *Balance) ReleasePending(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.GreaterThan(b.Pending) {
		return &ConsistencyError{Field: "pending", Current: b.Pending, Delta: amount.Neg()}
	}
	b.Pending = b.Pending.Sub(amount)
	return nil
}

// ReleaseTaken reverses amount days already booked as taken. Used when
// cancelling an already-approved request.
func (b *Balance) ReleaseTaken(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.GreaterThan(b.Taken) {
		return &ConsistencyError{Field: "taken", Current: b.Taken, Delta: amount.Neg()}
	}
	b.Taken = b.Taken.Sub(amount)
	return nil
}

// BookTaken records amount days directly as taken, bypassing the pending
// stage. Used on the auto-approval path (reserve + release-to-taken in one
// step).
func (b *Balance) BookTaken(amount decimal.Decimal) error {
	if err := b.ReservePending(amount); err != nil {
		return err
	}
	return b.ReleasePendingToTaken(amount)
}
