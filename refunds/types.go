// Package refunds selects the cancellation refund rule that applies to a
// reservation and computes the refund and retained amounts.
package refunds

import (
	"github.com/shopspring/decimal"

	"github.com/dcorazolla/reservas-sub002/generic"
)

// =============================================================================
// PENALTIES
// =============================================================================

// PenaltyType says how a rule's PenaltyAmount is interpreted.
// The empty value means the rule is percent-only.
type PenaltyType string

const (
	PenaltyNone       PenaltyType = ""
	PenaltyFixed      PenaltyType = "fixed"
	PenaltyPercentage PenaltyType = "percentage"
)

// Known reports whether p is a recognised penalty type.
func (p PenaltyType) Known() bool {
	switch p {
	case PenaltyNone, PenaltyFixed, PenaltyPercentage:
		return true
	}
	return false
}

// =============================================================================
// POLICY & RULES
// =============================================================================

// Rule maps a days-before-check-in window to a refund.
// Windows may overlap; Priority decides, definition order breaks ties.
type Rule struct {
	ID            string           `json:"id" yaml:"id"`
	DaysMin       int              `json:"days_before_checkin_min" yaml:"days_min"`
	DaysMax       int              `json:"days_before_checkin_max" yaml:"days_max"`
	RefundPercent decimal.Decimal  `json:"refund_percent" yaml:"refund_percent"`
	PenaltyType   PenaltyType      `json:"penalty_type,omitempty" yaml:"penalty_type,omitempty"`
	PenaltyAmount *decimal.Decimal `json:"penalty_amount,omitempty" yaml:"penalty_amount,omitempty"`
	Priority      int              `json:"priority" yaml:"priority"`
	Label         string           `json:"label,omitempty" yaml:"label,omitempty"`
}

// Covers reports whether days falls inside the rule's inclusive window.
func (r Rule) Covers(days int) bool {
	return r.DaysMin <= days && days <= r.DaysMax
}

// hasPenalty reports whether the penalty overrides the percent-derived refund.
func (r Rule) hasPenalty() bool {
	return r.PenaltyType != PenaltyNone && r.PenaltyAmount != nil
}

// Policy is a property's cancellation policy. Rules keep definition order.
type Policy struct {
	ID          generic.PolicyID   `json:"id"`
	PropertyID  generic.PropertyID `json:"property_id"`
	Type        string             `json:"type"`
	Active      bool               `json:"active"`
	AppliesFrom generic.Date       `json:"applies_from"`
	AppliesTo   *generic.Date      `json:"applies_to,omitempty"`
	Rules       []Rule             `json:"rules"`
}

// AppliesOn reports whether the policy is active and its validity covers day.
// Both AppliesFrom and AppliesTo are inclusive; a nil AppliesTo is open-ended.
func (p Policy) AppliesOn(day generic.Date) bool {
	if !p.Active {
		return false
	}
	if !p.AppliesFrom.IsZero() && day.Before(p.AppliesFrom) {
		return false
	}
	if p.AppliesTo != nil && day.After(*p.AppliesTo) {
		return false
	}
	return true
}

// =============================================================================
// RESERVATION & RESULT
// =============================================================================

// ReservationStatus is the booking state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCheckedIn ReservationStatus = "checked_in"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation is the read-only record a refund is computed for.
type Reservation struct {
	ID         generic.ReservationID `json:"id"`
	PropertyID generic.PropertyID    `json:"property_id"`
	RoomID     generic.RoomID        `json:"room_id"`
	Range      generic.DateRange     `json:"range"`
	Occupancy  generic.Occupancy     `json:"occupancy"`
	TotalValue decimal.Decimal       `json:"total_value"`
	Status     ReservationStatus     `json:"status"`
}

// Refund is the outcome of a cancellation preview.
type Refund struct {
	ReservationID     generic.ReservationID `json:"reservation_id"`
	PolicyID          generic.PolicyID      `json:"policy_id"`
	RuleID            string                `json:"rule_id"`
	DaysBeforeCheckin int                   `json:"days_before_checkin"`
	RefundAmount      decimal.Decimal       `json:"refund_amount"`
	RefundPercent     decimal.Decimal       `json:"refund_percent"`
	RetainedAmount    decimal.Decimal       `json:"retained_amount"`
	Reason            string                `json:"reason"`
}

// Window is an inclusive span of days before check-in.
type Window struct {
	Min int `json:"min"`
	Max int `json:"max"`
}
