package factory

import (
	"github.com/shopspring/decimal"

	"github.com/dcorazolla/reservas-sub002/booking"
	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
	"github.com/dcorazolla/reservas-sub002/refunds"
)

// =============================================================================
// CANCELLATION POLICIES
// =============================================================================

// PolicyJSON is the JSON representation of a cancellation policy.
//
//	{
//	  "property_id": "prop-1",
//	  "type": "moderate",
//	  "applies_from": "2026-01-01",
//	  "rules": [
//	    {"days_before_checkin_min": 7, "days_before_checkin_max": 999, "refund_percent": 100, "priority": 3},
//	    {"days_before_checkin_min": 0, "days_before_checkin_max": 6, "refund_percent": 0,
//	     "penalty_type": "fixed", "penalty_amount": 150, "priority": 1}
//	  ]
//	}
type PolicyJSON struct {
	ID          string     `json:"id,omitempty"`
	PropertyID  string     `json:"property_id" validate:"required"`
	Type        string     `json:"type,omitempty" validate:"max=50"`
	Active      *bool      `json:"active,omitempty"` // defaults to true
	AppliesFrom string     `json:"applies_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AppliesTo   string     `json:"applies_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Rules       []RuleJSON `json:"rules" validate:"required,min=1,dive"`
}

// RuleJSON is one days-before-check-in window.
type RuleJSON struct {
	ID            string           `json:"id,omitempty"`
	DaysMin       int              `json:"days_before_checkin_min" validate:"min=0"`
	DaysMax       int              `json:"days_before_checkin_max" validate:"gtefield=DaysMin"`
	RefundPercent decimal.Decimal  `json:"refund_percent"`
	PenaltyType   string           `json:"penalty_type,omitempty" validate:"omitempty,oneof=fixed percentage"`
	PenaltyAmount *decimal.Decimal `json:"penalty_amount,omitempty"`
	Priority      int              `json:"priority"`
	Label         string           `json:"label,omitempty" validate:"max=100"`
}

// ParsePolicy parses and validates a JSON cancellation policy.
func (f *Factory) ParsePolicy(data []byte) (refunds.Policy, error) {
	var pj PolicyJSON
	if err := decode("policy", data, &pj); err != nil {
		return refunds.Policy{}, err
	}
	return f.PolicyFromJSON(pj)
}

// PolicyFromJSON validates pj and converts it. Rules keep their JSON order,
// which is the tie-break order for equal priorities.
func (f *Factory) PolicyFromJSON(pj PolicyJSON) (refunds.Policy, error) {
	if err := f.check("policy", pj); err != nil {
		return refunds.Policy{}, err
	}

	policy := refunds.Policy{
		ID:         generic.PolicyID(f.idOr(pj.ID)),
		PropertyID: generic.PropertyID(pj.PropertyID),
		Type:       pj.Type,
		Active:     pj.Active == nil || *pj.Active,
	}
	if pj.AppliesFrom != "" {
		policy.AppliesFrom = generic.MustParseDate(pj.AppliesFrom)
	}
	if pj.AppliesTo != "" {
		to := generic.MustParseDate(pj.AppliesTo)
		policy.AppliesTo = &to
	}

	for _, rj := range pj.Rules {
		policy.Rules = append(policy.Rules, refunds.Rule{
			ID:            f.idOr(rj.ID),
			DaysMin:       rj.DaysMin,
			DaysMax:       rj.DaysMax,
			RefundPercent: rj.RefundPercent,
			PenaltyType:   refunds.PenaltyType(rj.PenaltyType),
			PenaltyAmount: rj.PenaltyAmount,
			Priority:      rj.Priority,
			Label:         rj.Label,
		})
	}

	if err := policy.Validate(); err != nil {
		return refunds.Policy{}, err
	}
	return policy, nil
}

// =============================================================================
// PROPERTIES, ROOMS & RESERVATIONS
// =============================================================================

type PropertyJSON struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type RoomJSON struct {
	ID         string `json:"id" validate:"required"`
	PropertyID string `json:"property_id" validate:"required"`
	CategoryID string `json:"category_id,omitempty"`
	Name       string `json:"name" validate:"required"`
}

// ReservationJSON is the read-only reservation record used for previews.
type ReservationJSON struct {
	ID         string          `json:"id" validate:"required"`
	PropertyID string          `json:"property_id" validate:"required"`
	RoomID     string          `json:"room_id" validate:"required"`
	CheckIn    string          `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string          `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults     int             `json:"adults" validate:"min=1"`
	Children   int             `json:"children" validate:"min=0"`
	Infants    int             `json:"infants" validate:"min=0"`
	ChildAges  []int           `json:"child_ages,omitempty" validate:"dive,min=0"`
	TotalValue decimal.Decimal `json:"total_value"`
	Status     string          `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed checked_in cancelled"`
}

func (f *Factory) PropertyFromJSON(pj PropertyJSON) (booking.Property, error) {
	if err := f.check("property", pj); err != nil {
		return booking.Property{}, err
	}
	return booking.Property{ID: generic.PropertyID(pj.ID), Name: pj.Name}, nil
}

func (f *Factory) RoomFromJSON(rj RoomJSON) (rates.Room, error) {
	if err := f.check("room", rj); err != nil {
		return rates.Room{}, err
	}
	return rates.Room{
		ID:         generic.RoomID(rj.ID),
		PropertyID: generic.PropertyID(rj.PropertyID),
		CategoryID: generic.CategoryID(rj.CategoryID),
		Name:       rj.Name,
	}, nil
}

func (f *Factory) ReservationFromJSON(rj ReservationJSON) (refunds.Reservation, error) {
	if err := f.check("reservation", rj); err != nil {
		return refunds.Reservation{}, err
	}
	r, err := dateRange("reservation", rj.CheckIn, rj.CheckOut)
	if err != nil {
		return refunds.Reservation{}, err
	}
	if rj.TotalValue.IsNegative() {
		return refunds.Reservation{}, &generic.DefinitionError{Kind: "reservation", Field: "total_value", Reason: "must be >= 0"}
	}

	status := refunds.ReservationStatus(rj.Status)
	if status == "" {
		status = refunds.StatusConfirmed
	}
	return refunds.Reservation{
		ID:         generic.ReservationID(rj.ID),
		PropertyID: generic.PropertyID(rj.PropertyID),
		RoomID:     generic.RoomID(rj.RoomID),
		Range:      r,
		Occupancy: generic.Occupancy{
			Adults:    rj.Adults,
			Children:  rj.Children,
			Infants:   rj.Infants,
			ChildAges: rj.ChildAges,
		},
		TotalValue: rj.TotalValue,
		Status:     status,
	}, nil
}
