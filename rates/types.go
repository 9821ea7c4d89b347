// Package rates resolves the nightly price of a room.
// It runs a fixed five-source cascade built on the generic engine.
package rates

import (
	"github.com/shopspring/decimal"

	"github.com/dcorazolla/reservas-sub002/generic"
)

// =============================================================================
// SOURCES - In cascade order
// =============================================================================

// Source names the rate record that supplied a price.
type Source string

const (
	SourceRoomPeriod     Source = "room_period"
	SourceCategoryPeriod Source = "category_period"
	SourceRoomBase       Source = "room_base"
	SourceCategoryBase   Source = "category_base"
	SourcePropertyBase   Source = "property_base"
)

// Scope is who a rate record belongs to.
type Scope string

const (
	ScopeRoom     Scope = "room"
	ScopeCategory Scope = "category"
	ScopeProperty Scope = "property"
)

// =============================================================================
// RECORDS
// =============================================================================

// Room is the unit being priced.
type Room struct {
	ID         generic.RoomID     `json:"id"`
	PropertyID generic.PropertyID `json:"property_id"`
	CategoryID generic.CategoryID `json:"category_id,omitempty"`
	Name       string             `json:"name"`
}

// PeoplePrice is a nightly price for an exact number of paying occupants.
type PeoplePrice struct {
	People int             `json:"people"`
	Price  decimal.Decimal `json:"price"`
}

// Tariff holds the price fields shared by periods and base rates.
//
// Room-scoped records price by occupant count (PeoplePrices, then PricePerDay).
// Category- and property-scoped records price by composition
// (BaseOneAdult, BaseTwoAdults, AdditionalAdult, ChildPrice, then PricePerDay).
type Tariff struct {
	PricePerDay     *decimal.Decimal `json:"price_per_day,omitempty"`
	PeoplePrices    []PeoplePrice    `json:"people_prices,omitempty"`
	BaseOneAdult    *decimal.Decimal `json:"base_one_adult,omitempty"`
	BaseTwoAdults   *decimal.Decimal `json:"base_two_adults,omitempty"`
	AdditionalAdult *decimal.Decimal `json:"additional_adult,omitempty"`
	ChildPrice      *decimal.Decimal `json:"child_price,omitempty"`
}

// RatePeriod is a date-bounded override. Periods of one owner must not overlap for
// the same occupancy; whoever creates them enforces that, the resolver only reads.
type RatePeriod struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Scope       Scope             `json:"scope"`
	Range       generic.DateRange `json:"range"`
	Tariff      Tariff            `json:"tariff"`
	Description string            `json:"description,omitempty"`
}

// BaseRate is the non-dated fallback for a room, category or property.
// Only the property-level base carries Ages.
type BaseRate struct {
	OwnerID string     `json:"owner_id"`
	Scope   Scope      `json:"scope"`
	Tariff  Tariff     `json:"tariff"`
	Ages    *AgePolicy `json:"ages,omitempty"`
}

// AgePolicy classifies occupants. It lives on the property-level base rate.
type AgePolicy struct {
	InfantMaxAge int              `json:"infant_max_age"`
	ChildMaxAge  int              `json:"child_max_age"`
	ChildFactor  *decimal.Decimal `json:"child_factor,omitempty"`
}

// DefaultAgePolicy is used when a property has not configured its own thresholds.
func DefaultAgePolicy() AgePolicy {
	return AgePolicy{InfantMaxAge: 2, ChildMaxAge: 12}
}

// AgesOf returns the age policy carried by a property base rate, or the default.
func AgesOf(propertyBase *BaseRate) AgePolicy {
	if propertyBase == nil || propertyBase.Ages == nil {
		return DefaultAgePolicy()
	}
	return *propertyBase.Ages
}

// RateCard is the read-only snapshot of every rate record that can price one room.
// It is passed explicitly; the resolver never looks up a "current property".
// Occupant ages are classified with the property base's AgePolicy.
type RateCard struct {
	Room            Room
	RoomPeriods     []RatePeriod
	CategoryPeriods []RatePeriod
	RoomBase        *BaseRate
	CategoryBase    *BaseRate
	PropertyBase    *BaseRate
}

// AgePolicy returns the thresholds this card prices with.
func (c RateCard) AgePolicy() AgePolicy { return AgesOf(c.PropertyBase) }

// =============================================================================
// OCCUPANCY
// =============================================================================

// Occupancy is the guest composition being priced.
type Occupancy = generic.Occupancy

// guests is an occupancy after age classification.
type guests struct {
	adults   int
	children int
	infants  int
}

// paying is the occupant count people-count tariffs key on. Infants stay free.
func (g guests) paying() int { return g.adults + g.children }

func classify(o Occupancy, ages AgePolicy) guests {
	if len(o.ChildAges) == 0 {
		return guests{adults: o.Adults, children: o.Children, infants: o.Infants}
	}

	g := guests{adults: o.Adults}
	for _, age := range o.ChildAges {
		switch {
		case age <= ages.InfantMaxAge:
			g.infants++
		case age <= ages.ChildMaxAge:
			g.children++
		default:
			g.adults++
		}
	}
	return g
}

// =============================================================================
// RESULTS
// =============================================================================

// NightPrice is the resolved price of one night.
type NightPrice struct {
	Date   generic.Date    `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Source Source          `json:"source"`
}

// StayQuote is the priced breakdown of a stay.
type StayQuote struct {
	Range         generic.DateRange `json:"range"`
	Total         decimal.Decimal   `json:"total"`
	Nights        []NightPrice      `json:"nights"`
	PricingSource Source            `json:"pricing_source"`
}
