/*
accrual.go - Balance accrual

PURPOSE:
  Increases the acquired amount of a ledger entry, capped by policy.

CAP BEHAVIOR:
  When the policy sets MaxDaysPerYear and an accrual would push acquired
  past it, acquired is clamped to the cap. The excess is simply not
  credited; it does not spill into a pool or carry anywhere.

IDEMPOTENCY:
  Accrue itself adds every time it is called. Calling it twice for the
  same period adds twice. Invoking it at most once per period per entry is
  the caller's job; the accrual scheduler in api/ dedupes via per-month
  marks in the store.
*/
package leave

import "github.com/shopspring/decimal"

// Accrue credits amount days of acquired balance, honoring the policy's
// yearly cap. Returns the new acquired amount.
//
// A zero amount is a no-op (apart from the cap check). A negative amount
// is refused: accrual only ever grows acquired.
func Accrue(b *Balance, policy Policy, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return b.Acquired, &ConsistencyError{Field: "acquired", Current: b.Acquired, Delta: amount}
	}

	b.Acquired = b.Acquired.Add(amount)

	if policy.MaxDaysPerYear != nil && b.Acquired.GreaterThan(*policy.MaxDaysPerYear) {
		b.Acquired = *policy.MaxDaysPerYear
	}

	return b.Acquired, nil
}

// AccrualAmount resolves the amount for one accrual period: the override
// when non-nil, the policy's per-period rate otherwise.
func AccrualAmount(policy Policy, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return policy.AccrualRate
}
