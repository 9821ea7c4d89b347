/*
types.go - Shared vocabulary of the rule-resolution engine

PURPOSE:
  Blocking, pricing and refunds all answer the same question: given a date and a
  set of candidate rules scoped to time windows, which single rule applies? This
  package holds the shared vocabulary for that question so the three domain
  packages (blocking, rates, refunds) stay small and consistent.

KEY CONCEPTS:
  - Date / DateRange: calendar days and half-open day windows (time.go, period.go)
  - Money: decimal amounts, never float64 (this file)
  - Cascade: an ordered list of sources, first defined value wins (cascade.go)
  - Priority selection: highest priority wins, definition order breaks ties (priority.go)
  - Errors: sentinels and structured "no match" errors (errors.go)

DESIGN PRINCIPLES:
  1. Purity: every function here is side-effect free over immutable inputs
  2. Precision: money uses decimal.Decimal to avoid floating-point drift
  3. Explicit inputs: no ambient "current property"; callers pass what they mean
  4. Determinism: ties are broken by definition order, never by map iteration

SEE ALSO:
  - blocking/: recurrence matching and block overlap
  - rates/: five-source nightly price cascade
  - refunds/: days-before-check-in refund rule selection
*/

// Package generic provides the domain-agnostic core of the rule-resolution engine.
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PropertyID string
type CategoryID string
type RoomID string
type PolicyID string
type ReservationID string

// =============================================================================
// MONEY - Decimal amounts
// =============================================================================

// MoneyPlaces is the number of decimal places money outputs are rounded to.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Percent returns pct percent of amount (amount × pct / 100).
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// RoundMoney rounds to MoneyPlaces, half away from zero.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyPlaces)
}

// DecimalPtr returns a pointer to a decimal built from an int.
func DecimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
