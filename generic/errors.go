/*
errors.go - Centralized error types for the rule-resolution engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these (or wrap them with context).

ERROR CATEGORIES:
  1. Input errors - invalid ranges, invalid occupancy, bad definitions
  2. Resolution errors - no price source, no refund rule (data/configuration gaps)
  3. Lookup errors - missing records in a repository

RESOLUTION ERRORS ARE NOT TRANSIENT:
  Nothing in the engine talks to a network or disk. A NoPriceAvailableError or
  NoApplicableRefundRuleError means property data is incomplete; retrying will
  not help, and callers must never substitute a price of zero or a default refund.

USAGE:
    quote, err := rates.ResolveNightlyPrice(card, date, occupancy)
    if errors.Is(err, generic.ErrNoPriceAvailable) {
        // reject the search: "pricing not configured"
    }

SEE ALSO:
  - rates/resolver.go: returns NoPriceAvailableError
  - refunds/refund.go: returns NoApplicableRefundRuleError
*/

package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a DateRange has end <= start.
	ErrInvalidRange = errors.New("invalid range: end must be after start")

	// ErrInvalidOccupancy is returned for occupancies without an adult or with negative counts.
	ErrInvalidOccupancy = errors.New("invalid occupancy")

	// ErrNoPriceAvailable is returned when no rate source, down to the property base
	// rate, defines a price for a room/date/occupancy.
	ErrNoPriceAvailable = errors.New("no price available")

	// ErrNoApplicableRefundRule is returned when a cancellation policy has no rule
	// whose window covers the computed days before check-in.
	ErrNoApplicableRefundRule = errors.New("no applicable refund rule")

	// ErrPolicyNotFound is returned when a property has no active cancellation policy.
	ErrPolicyNotFound = errors.New("cancellation policy not found")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidDefinition is returned when a block, rate or policy definition is malformed.
	ErrInvalidDefinition = errors.New("invalid definition")

	// ErrReservationCancelled is returned when previewing a refund for a reservation
	// that is already cancelled.
	ErrReservationCancelled = errors.New("reservation already cancelled")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoPriceAvailableError identifies the night that could not be priced.
type NoPriceAvailableError struct {
	RoomID   RoomID
	Date     Date
	Adults   int
	Children int
	Infants  int
}

func (e *NoPriceAvailableError) Error() string {
	return fmt.Sprintf("no price available for room %s on %s (adults=%d children=%d infants=%d)",
		e.RoomID, e.Date, e.Adults, e.Children, e.Infants)
}

func (e *NoPriceAvailableError) Unwrap() error {
	return ErrNoPriceAvailable
}

// NoApplicableRefundRuleError records which policy has a gap and where.
type NoApplicableRefundRuleError struct {
	PolicyID          PolicyID
	DaysBeforeCheckin int
}

func (e *NoApplicableRefundRuleError) Error() string {
	return fmt.Sprintf("no refund rule in policy %s covers %d days before check-in",
		e.PolicyID, e.DaysBeforeCheckin)
}

func (e *NoApplicableRefundRuleError) Unwrap() error {
	return ErrNoApplicableRefundRule
}

// DefinitionError names the offending field of a malformed definition.
type DefinitionError struct {
	Kind   string // "block", "rate_period", "policy", ...
	Field  string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *DefinitionError) Unwrap() error {
	return ErrInvalidDefinition
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidOccupancy) ||
		errors.Is(err, ErrInvalidDefinition) ||
		errors.Is(err, ErrReservationCancelled)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPolicyNotFound)
}

// IsConfigurationError returns true if property data is incomplete and a human
// has to fix it (missing prices, gaps in refund windows).
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNoPriceAvailable) ||
		errors.Is(err, ErrNoApplicableRefundRule)
}
