/*
resolver.go - Nightly price cascade

PURPOSE:
  Picks the nightly price of one room for one date and occupancy from the first
  rate source, in fixed priority order, that defines one.

CASCADE ORDER:
  1. room_period      RatePeriod owned by the room, range contains the date   (people count)
  2. category_period  RatePeriod owned by the room's category                   (composition)
  3. room_base        the room's BaseRate                                       (people count)
  4. category_base    the category's BaseRate                                   (composition)
  5. property_base    the property's BaseRate, the guaranteed fallback          (composition)

  Within one scope, periods containing the date are tried in definition order.
  If no source defines a price the result is NoPriceAvailableError: a property
  data-completeness problem, never a price of zero.

STAY TOTALS:
  ResolveStayTotal prices every night of [check-in, check-out) independently and
  sums them. One unpriceable night fails the whole stay; there are no partial totals.
  PricingSource reports the source used by most nights. On a tie the first
  night's source wins when it is one of the leaders, otherwise the leader seen first.
*/

package rates

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dcorazolla/reservas-sub002/generic"
)

type nightInput struct {
	card   *RateCard
	ages   AgePolicy
	date   generic.Date
	guests guests
}

// cascade is the fixed source order. It is never reordered at runtime.
var cascade = generic.Cascade[nightInput, decimal.Decimal]{
	{Name: string(SourceRoomPeriod), Resolve: fromRoomPeriod},
	{Name: string(SourceCategoryPeriod), Resolve: fromCategoryPeriod},
	{Name: string(SourceRoomBase), Resolve: fromRoomBase},
	{Name: string(SourceCategoryBase), Resolve: fromCategoryBase},
	{Name: string(SourcePropertyBase), Resolve: fromPropertyBase},
}

// Sources returns the cascade order.
func Sources() []Source {
	names := cascade.Names()
	sources := make([]Source, len(names))
	for i, n := range names {
		sources[i] = Source(n)
	}
	return sources
}

// ResolveNightlyPrice returns the price of one night.
func ResolveNightlyPrice(card RateCard, date generic.Date, occupancy Occupancy) (NightPrice, error) {
	if err := occupancy.Validate(); err != nil {
		return NightPrice{}, err
	}
	ages := card.AgePolicy()
	return resolveNight(&card, ages, date, classify(occupancy, ages), occupancy)
}

// ResolveStayTotal prices every night of r and returns the breakdown.
func ResolveStayTotal(card RateCard, r generic.DateRange, occupancy Occupancy) (StayQuote, error) {
	if err := r.Validate(); err != nil {
		return StayQuote{}, err
	}
	if err := occupancy.Validate(); err != nil {
		return StayQuote{}, err
	}

	ages := card.AgePolicy()
	g := classify(occupancy, ages)
	quote := StayQuote{Range: r, Total: decimal.Zero}
	for day := range r.Days() {
		night, err := resolveNight(&card, ages, day, g, occupancy)
		if err != nil {
			return StayQuote{}, fmt.Errorf("pricing stay %s: %w", r, err)
		}
		quote.Nights = append(quote.Nights, night)
		quote.Total = quote.Total.Add(night.Amount)
	}
	quote.PricingSource = dominantSource(quote.Nights)
	return quote, nil
}

func resolveNight(card *RateCard, ages AgePolicy, date generic.Date, g guests, occupancy Occupancy) (NightPrice, error) {
	amount, source, ok := cascade.Run(nightInput{card: card, ages: ages, date: date, guests: g})
	if !ok {
		return NightPrice{}, &generic.NoPriceAvailableError{
			RoomID:   card.Room.ID,
			Date:     date,
			Adults:   occupancy.Adults,
			Children: occupancy.Children,
			Infants:  occupancy.Infants,
		}
	}
	return NightPrice{Date: date, Amount: amount, Source: Source(source)}, nil
}

// dominantSource returns the source used by most nights; on a tie the first
// night's source wins if it is among the leaders, otherwise the earliest leader.
func dominantSource(nights []NightPrice) Source {
	if len(nights) == 0 {
		return ""
	}

	counts := make(map[Source]int)
	best := 0
	for _, n := range nights {
		counts[n.Source]++
		if counts[n.Source] > best {
			best = counts[n.Source]
		}
	}

	if counts[nights[0].Source] == best {
		return nights[0].Source
	}
	for _, n := range nights {
		if counts[n.Source] == best {
			return n.Source
		}
	}
	return nights[0].Source
}

// =============================================================================
// SOURCES
// =============================================================================

func fromRoomPeriod(in nightInput) (decimal.Decimal, bool) {
	owner := string(in.card.Room.ID)
	for _, p := range in.card.RoomPeriods {
		if p.OwnerID != owner || !p.Range.Contains(in.date) {
			continue
		}
		if price, ok := p.Tariff.peoplePrice(in.guests.paying()); ok {
			return price, true
		}
	}
	return decimal.Zero, false
}

func fromCategoryPeriod(in nightInput) (decimal.Decimal, bool) {
	owner := string(in.card.Room.CategoryID)
	if owner == "" {
		return decimal.Zero, false
	}
	for _, p := range in.card.CategoryPeriods {
		if p.OwnerID != owner || !p.Range.Contains(in.date) {
			continue
		}
		if price, ok := p.Tariff.compositionPrice(in.guests, in.ages); ok {
			return price, true
		}
	}
	return decimal.Zero, false
}

func fromRoomBase(in nightInput) (decimal.Decimal, bool) {
	if in.card.RoomBase == nil {
		return decimal.Zero, false
	}
	return in.card.RoomBase.Tariff.peoplePrice(in.guests.paying())
}

func fromCategoryBase(in nightInput) (decimal.Decimal, bool) {
	if in.card.CategoryBase == nil {
		return decimal.Zero, false
	}
	return in.card.CategoryBase.Tariff.compositionPrice(in.guests, in.ages)
}

func fromPropertyBase(in nightInput) (decimal.Decimal, bool) {
	if in.card.PropertyBase == nil {
		return decimal.Zero, false
	}
	return in.card.PropertyBase.Tariff.compositionPrice(in.guests, in.ages)
}
