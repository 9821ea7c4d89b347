package rates

import (
	"github.com/shopspring/decimal"
)

// peoplePrice prices by occupant count: an exact PeoplePrices entry first,
// then the flat PricePerDay.
func (t Tariff) peoplePrice(people int) (decimal.Decimal, bool) {
	for _, pp := range t.PeoplePrices {
		if pp.People == people {
			return pp.Price, true
		}
	}
	if t.PricePerDay != nil {
		return *t.PricePerDay, true
	}
	return decimal.Zero, false
}

// compositionPrice prices by adult/child composition:
//
//	f(1) = base_one_adult
//	f(2) = base_two_adults
//	f(n) = base_two_adults + (n-2) × additional_adult
//
// plus child_price per child (or base_one_adult × child_factor when child_price is
// unset). Infants are free. A missing field means the tariff does not price this
// occupancy; PricePerDay is then used as a flat fallback.
func (t Tariff) compositionPrice(g guests, ages AgePolicy) (decimal.Decimal, bool) {
	if price, ok := t.composition(g, ages); ok {
		return price, true
	}
	if t.PricePerDay != nil {
		return *t.PricePerDay, true
	}
	return decimal.Zero, false
}

func (t Tariff) composition(g guests, ages AgePolicy) (decimal.Decimal, bool) {
	var price decimal.Decimal

	switch {
	case g.adults < 1:
		return decimal.Zero, false
	case g.adults == 1:
		if t.BaseOneAdult == nil {
			return decimal.Zero, false
		}
		price = *t.BaseOneAdult
	default:
		if t.BaseTwoAdults == nil {
			return decimal.Zero, false
		}
		price = *t.BaseTwoAdults
		if extra := g.adults - 2; extra > 0 {
			if t.AdditionalAdult == nil {
				return decimal.Zero, false
			}
			price = price.Add(t.AdditionalAdult.Mul(decimal.NewFromInt(int64(extra))))
		}
	}

	if g.children > 0 {
		perChild, ok := t.childUnit(ages)
		if !ok {
			return decimal.Zero, false
		}
		price = price.Add(perChild.Mul(decimal.NewFromInt(int64(g.children))))
	}

	return price, true
}

func (t Tariff) childUnit(ages AgePolicy) (decimal.Decimal, bool) {
	if t.ChildPrice != nil {
		return *t.ChildPrice, true
	}
	if ages.ChildFactor != nil && t.BaseOneAdult != nil {
		return t.BaseOneAdult.Mul(*ages.ChildFactor), true
	}
	return decimal.Zero, false
}

// IsEmpty reports whether the tariff defines no price at all.
func (t Tariff) IsEmpty() bool {
	return t.PricePerDay == nil && len(t.PeoplePrices) == 0 &&
		t.BaseOneAdult == nil && t.BaseTwoAdults == nil &&
		t.AdditionalAdult == nil && t.ChildPrice == nil
}
