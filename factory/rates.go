package factory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TariffJSON holds price fields. Amounts accept JSON numbers or strings.
type TariffJSON struct {
	PricePerDay     *decimal.Decimal  `json:"price_per_day,omitempty"`
	PeoplePrices    []PeoplePriceJSON `json:"people_prices,omitempty" validate:"dive"`
	BaseOneAdult    *decimal.Decimal  `json:"base_one_adult,omitempty"`
	BaseTwoAdults   *decimal.Decimal  `json:"base_two_adults,omitempty"`
	AdditionalAdult *decimal.Decimal  `json:"additional_adult,omitempty"`
	ChildPrice      *decimal.Decimal  `json:"child_price,omitempty"`
}

type PeoplePriceJSON struct {
	People int             `json:"people" validate:"min=1"`
	Price  decimal.Decimal `json:"price"`
}

// RatePeriodJSON is a date-bounded override for a room or category.
type RatePeriodJSON struct {
	ID          string     `json:"id,omitempty"`
	Scope       string     `json:"scope" validate:"required,oneof=room category"`
	OwnerID     string     `json:"owner_id" validate:"required"`
	StartDate   string     `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string     `json:"end_date" validate:"required,datetime=2006-01-02"`
	Tariff      TariffJSON `json:"tariff"`
	Description string     `json:"description,omitempty" validate:"max=500"`
}

// BaseRateJSON is the non-dated fallback for a room, category or property.
type BaseRateJSON struct {
	Scope   string         `json:"scope" validate:"required,oneof=room category property"`
	OwnerID string         `json:"owner_id" validate:"required"`
	Tariff  TariffJSON     `json:"tariff"`
	Ages    *AgePolicyJSON `json:"ages,omitempty"`
}

type AgePolicyJSON struct {
	InfantMaxAge int              `json:"infant_max_age" validate:"min=0"`
	ChildMaxAge  int              `json:"child_max_age" validate:"gtefield=InfantMaxAge"`
	ChildFactor  *decimal.Decimal `json:"child_factor,omitempty"`
}

// =============================================================================
// PARSERS
// =============================================================================

// ParseRatePeriod parses and validates a JSON rate period.
func (f *Factory) ParseRatePeriod(data []byte) (rates.RatePeriod, error) {
	var pj RatePeriodJSON
	if err := decode("rate_period", data, &pj); err != nil {
		return rates.RatePeriod{}, err
	}
	return f.RatePeriodFromJSON(pj)
}

func (f *Factory) RatePeriodFromJSON(pj RatePeriodJSON) (rates.RatePeriod, error) {
	if err := f.check("rate_period", pj); err != nil {
		return rates.RatePeriod{}, err
	}
	r, err := dateRange("rate_period", pj.StartDate, pj.EndDate)
	if err != nil {
		return rates.RatePeriod{}, err
	}
	tariff, err := tariffFromJSON("rate_period", pj.Tariff)
	if err != nil {
		return rates.RatePeriod{}, err
	}

	return rates.RatePeriod{
		ID:          f.idOr(pj.ID),
		OwnerID:     pj.OwnerID,
		Scope:       rates.Scope(pj.Scope),
		Range:       r,
		Tariff:      tariff,
		Description: pj.Description,
	}, nil
}

// ParseBaseRate parses and validates a JSON base rate.
func (f *Factory) ParseBaseRate(data []byte) (rates.BaseRate, error) {
	var bj BaseRateJSON
	if err := decode("base_rate", data, &bj); err != nil {
		return rates.BaseRate{}, err
	}
	return f.BaseRateFromJSON(bj)
}

func (f *Factory) BaseRateFromJSON(bj BaseRateJSON) (rates.BaseRate, error) {
	if err := f.check("base_rate", bj); err != nil {
		return rates.BaseRate{}, err
	}
	tariff, err := tariffFromJSON("base_rate", bj.Tariff)
	if err != nil {
		return rates.BaseRate{}, err
	}

	base := rates.BaseRate{OwnerID: bj.OwnerID, Scope: rates.Scope(bj.Scope), Tariff: tariff}
	if bj.Ages != nil {
		if base.Scope != rates.ScopeProperty {
			return rates.BaseRate{}, &generic.DefinitionError{Kind: "base_rate", Field: "ages", Reason: "only allowed on property scope"}
		}
		if bj.Ages.ChildFactor != nil && bj.Ages.ChildFactor.IsNegative() {
			return rates.BaseRate{}, &generic.DefinitionError{Kind: "base_rate", Field: "ages.child_factor", Reason: "must be >= 0"}
		}
		base.Ages = &rates.AgePolicy{
			InfantMaxAge: bj.Ages.InfantMaxAge,
			ChildMaxAge:  bj.Ages.ChildMaxAge,
			ChildFactor:  bj.Ages.ChildFactor,
		}
	}
	return base, nil
}

func tariffFromJSON(kind string, tj TariffJSON) (rates.Tariff, error) {
	t := rates.Tariff{
		PricePerDay:     tj.PricePerDay,
		BaseOneAdult:    tj.BaseOneAdult,
		BaseTwoAdults:   tj.BaseTwoAdults,
		AdditionalAdult: tj.AdditionalAdult,
		ChildPrice:      tj.ChildPrice,
	}

	amounts := []struct {
		field string
		value *decimal.Decimal
	}{
		{"price_per_day", t.PricePerDay},
		{"base_one_adult", t.BaseOneAdult},
		{"base_two_adults", t.BaseTwoAdults},
		{"additional_adult", t.AdditionalAdult},
		{"child_price", t.ChildPrice},
	}
	for _, a := range amounts {
		if a.value != nil && a.value.IsNegative() {
			return rates.Tariff{}, &generic.DefinitionError{Kind: kind, Field: "tariff." + a.field, Reason: "must be >= 0"}
		}
	}

	seen := make(map[int]bool)
	for i, pp := range tj.PeoplePrices {
		if pp.Price.IsNegative() {
			return rates.Tariff{}, &generic.DefinitionError{Kind: kind, Field: fmt.Sprintf("tariff.people_prices[%d].price", i), Reason: "must be >= 0"}
		}
		if seen[pp.People] {
			return rates.Tariff{}, &generic.DefinitionError{Kind: kind, Field: fmt.Sprintf("tariff.people_prices[%d].people", i), Reason: "is duplicated"}
		}
		seen[pp.People] = true
		t.PeoplePrices = append(t.PeoplePrices, rates.PeoplePrice{People: pp.People, Price: pp.Price})
	}

	if t.IsEmpty() {
		return rates.Tariff{}, &generic.DefinitionError{Kind: kind, Field: "tariff", Reason: "defines no price"}
	}
	return t, nil
}
