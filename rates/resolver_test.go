package rates_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.Date {
	return generic.NewDate(year, month, day)
}

func money(v int64) *decimal.Decimal {
	return generic.DecimalPtr(v)
}

func assertAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got), "expected %d, got %s", want, got)
}

func room() rates.Room {
	return rates.Room{ID: "room-101", PropertyID: "prop-1", CategoryID: "cat-double", Name: "101"}
}

func propertyBase() *rates.BaseRate {
	return &rates.BaseRate{
		OwnerID: "prop-1",
		Scope:   rates.ScopeProperty,
		Tariff: rates.Tariff{
			BaseOneAdult:    money(100),
			BaseTwoAdults:   money(180),
			AdditionalAdult: money(20),
			ChildPrice:      money(30),
		},
	}
}

func cardWithPropertyBase() rates.RateCard {
	return rates.RateCard{
		Room:         room(),
		PropertyBase: propertyBase(),
	}
}

func february() generic.DateRange {
	return generic.MustDateRange(date(2026, 2, 1), date(2026, 3, 1))
}

// =============================================================================
// OCCUPANCY PRICING TESTS
// =============================================================================

func TestResolveNightlyPrice_PropertyBase_ThreeAdultsOneChild(t *testing.T) {
	// GIVEN: Only a property base rate 100/180/+20/child 30
	// WHEN: Pricing 3 adults and 1 child
	// THEN: 180 + 1×20 + 30 = 230 from property_base
	card := cardWithPropertyBase()

	night, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 3, Children: 1})

	require.NoError(t, err)
	assertAmount(t, 230, night.Amount)
	assert.Equal(t, rates.SourcePropertyBase, night.Source)
}

func TestResolveNightlyPrice_CompositionTable(t *testing.T) {
	card := cardWithPropertyBase()
	factor := decimal.RequireFromString("0.5")

	tests := []struct {
		name      string
		occupancy rates.Occupancy
		ages      rates.AgePolicy
		childless bool // drop child_price from the tariff
		want      int64
	}{
		{name: "one adult", occupancy: rates.Occupancy{Adults: 1}, want: 100},
		{name: "two adults", occupancy: rates.Occupancy{Adults: 2}, want: 180},
		{name: "four adults", occupancy: rates.Occupancy{Adults: 4}, want: 220},
		{name: "infants are free", occupancy: rates.Occupancy{Adults: 2, Infants: 2}, want: 180},
		{name: "two children", occupancy: rates.Occupancy{Adults: 1, Children: 2}, want: 160},
		{
			name:      "ages classify infant, child and adult",
			occupancy: rates.Occupancy{Adults: 2, ChildAges: []int{1, 8, 15}},
			ages:      rates.AgePolicy{InfantMaxAge: 2, ChildMaxAge: 12},
			want:      180 + 20 + 30,
		},
		{
			name:      "child factor when child price unset",
			occupancy: rates.Occupancy{Adults: 2, Children: 1},
			ages:      rates.AgePolicy{InfantMaxAge: 2, ChildMaxAge: 12, ChildFactor: &factor},
			childless: true,
			want:      180 + 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := card
			c.PropertyBase = propertyBase()
			if tt.ages != (rates.AgePolicy{}) {
				ages := tt.ages
				c.PropertyBase.Ages = &ages
			}
			if tt.childless {
				c.PropertyBase.Tariff.ChildPrice = nil
			}

			night, err := rates.ResolveNightlyPrice(c, date(2026, 2, 10), tt.occupancy)

			require.NoError(t, err)
			assertAmount(t, tt.want, night.Amount)
		})
	}
}

// =============================================================================
// CASCADE PRECEDENCE TESTS
// =============================================================================

func TestResolveNightlyPrice_RoomPeriodBeatsPropertyBase(t *testing.T) {
	// GIVEN: A room period and a property base both price Feb 10
	card := cardWithPropertyBase()
	card.RoomPeriods = []rates.RatePeriod{{
		ID: "rp-1", OwnerID: "room-101", Scope: rates.ScopeRoom, Range: february(),
		Tariff: rates.Tariff{PeoplePrices: []rates.PeoplePrice{{People: 2, Price: decimal.NewFromInt(250)}}},
	}}

	// WHEN: Pricing two adults
	night, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 2})

	// THEN: room_period wins
	require.NoError(t, err)
	assert.Equal(t, rates.SourceRoomPeriod, night.Source)
	assertAmount(t, 250, night.Amount)
}

func TestResolveNightlyPrice_FullCascadeOrder(t *testing.T) {
	// GIVEN: All five sources, each with a distinct price
	full := rates.RateCard{
		Room: room(),
		RoomPeriods: []rates.RatePeriod{{
			ID: "rp", OwnerID: "room-101", Scope: rates.ScopeRoom, Range: february(),
			Tariff: rates.Tariff{PricePerDay: money(500)},
		}},
		CategoryPeriods: []rates.RatePeriod{{
			ID: "cp", OwnerID: "cat-double", Scope: rates.ScopeCategory, Range: february(),
			Tariff: rates.Tariff{BaseOneAdult: money(400), BaseTwoAdults: money(400)},
		}},
		RoomBase:     &rates.BaseRate{OwnerID: "room-101", Scope: rates.ScopeRoom, Tariff: rates.Tariff{PricePerDay: money(300)}},
		CategoryBase: &rates.BaseRate{OwnerID: "cat-double", Scope: rates.ScopeCategory, Tariff: rates.Tariff{BaseOneAdult: money(200)}},
		PropertyBase: propertyBase(),
	}
	occ := rates.Occupancy{Adults: 1}
	day := date(2026, 2, 10)

	steps := []struct {
		drop   func(c *rates.RateCard)
		source rates.Source
		want   int64
	}{
		{func(c *rates.RateCard) {}, rates.SourceRoomPeriod, 500},
		{func(c *rates.RateCard) { c.RoomPeriods = nil }, rates.SourceCategoryPeriod, 400},
		{func(c *rates.RateCard) { c.CategoryPeriods = nil }, rates.SourceRoomBase, 300},
		{func(c *rates.RateCard) { c.RoomBase = nil }, rates.SourceCategoryBase, 200},
		{func(c *rates.RateCard) { c.CategoryBase = nil }, rates.SourcePropertyBase, 100},
	}

	// WHEN: Removing sources one at a time from the top
	// THEN: Each removal falls through to the next source in order
	card := full
	for _, step := range steps {
		step.drop(&card)
		night, err := rates.ResolveNightlyPrice(card, day, occ)
		require.NoError(t, err)
		assert.Equal(t, step.source, night.Source)
		assertAmount(t, step.want, night.Amount)
	}

	assert.Equal(t, []rates.Source{
		rates.SourceRoomPeriod, rates.SourceCategoryPeriod, rates.SourceRoomBase,
		rates.SourceCategoryBase, rates.SourcePropertyBase,
	}, rates.Sources())
}

func TestResolveNightlyPrice_RoomPeriod_PricesByPeopleCount(t *testing.T) {
	// GIVEN: Room period priced only for 2 people
	card := cardWithPropertyBase()
	card.RoomPeriods = []rates.RatePeriod{{
		ID: "rp-1", OwnerID: "room-101", Scope: rates.ScopeRoom, Range: february(),
		Tariff: rates.Tariff{PeoplePrices: []rates.PeoplePrice{{People: 2, Price: decimal.NewFromInt(210)}}},
	}}

	// THEN: 1 adult + 1 child counts as 2 people and uses the period
	night, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 1, Children: 1, Infants: 1})
	require.NoError(t, err)
	assert.Equal(t, rates.SourceRoomPeriod, night.Source)
	assertAmount(t, 210, night.Amount)

	// THEN: 3 adults are not priced by the period and fall through
	night, err = rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 3})
	require.NoError(t, err)
	assert.Equal(t, rates.SourcePropertyBase, night.Source)
}

func TestResolveNightlyPrice_PeriodRangeIsHalfOpen(t *testing.T) {
	card := cardWithPropertyBase()
	card.RoomPeriods = []rates.RatePeriod{{
		ID: "rp-1", OwnerID: "room-101", Scope: rates.ScopeRoom,
		Range:  generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 12)),
		Tariff: rates.Tariff{PricePerDay: money(999)},
	}}
	occ := rates.Occupancy{Adults: 1}

	in, err := rates.ResolveNightlyPrice(card, date(2026, 2, 11), occ)
	require.NoError(t, err)
	assert.Equal(t, rates.SourceRoomPeriod, in.Source)

	out, err := rates.ResolveNightlyPrice(card, date(2026, 2, 12), occ)
	require.NoError(t, err)
	assert.Equal(t, rates.SourcePropertyBase, out.Source)
}

func TestResolveNightlyPrice_IgnoresPeriodsOfOtherOwners(t *testing.T) {
	card := cardWithPropertyBase()
	card.RoomPeriods = []rates.RatePeriod{{
		ID: "rp-other", OwnerID: "room-202", Scope: rates.ScopeRoom, Range: february(),
		Tariff: rates.Tariff{PricePerDay: money(999)},
	}}

	night, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 1})

	require.NoError(t, err)
	assert.Equal(t, rates.SourcePropertyBase, night.Source)
}

func TestResolveNightlyPrice_OverlappingPeriods_DefinitionOrder(t *testing.T) {
	card := cardWithPropertyBase()
	card.CategoryPeriods = []rates.RatePeriod{
		{ID: "first", OwnerID: "cat-double", Scope: rates.ScopeCategory, Range: february(),
			Tariff: rates.Tariff{BaseOneAdult: money(150)}},
		{ID: "second", OwnerID: "cat-double", Scope: rates.ScopeCategory, Range: february(),
			Tariff: rates.Tariff{BaseOneAdult: money(170)}},
	}

	night, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 1})

	require.NoError(t, err)
	assertAmount(t, 150, night.Amount)
}

func TestResolveNightlyPrice_CategoryFallsThroughWhenFieldMissing(t *testing.T) {
	// GIVEN: Category period without a two-adult price
	card := cardWithPropertyBase()
	card.CategoryPeriods = []rates.RatePeriod{{
		ID: "cp", OwnerID: "cat-double", Scope: rates.ScopeCategory, Range: february(),
		Tariff: rates.Tariff{BaseOneAdult: money(120)},
	}}

	// WHEN: Pricing two adults
	night, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 2})

	// THEN: The period does not define the price; property base does
	require.NoError(t, err)
	assert.Equal(t, rates.SourcePropertyBase, night.Source)
	assertAmount(t, 180, night.Amount)
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestResolveNightlyPrice_NoSources_NoPriceAvailable(t *testing.T) {
	card := rates.RateCard{Room: room()}

	_, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 2})

	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrNoPriceAvailable))
	var npe *generic.NoPriceAvailableError
	require.ErrorAs(t, err, &npe)
	assert.Equal(t, generic.RoomID("room-101"), npe.RoomID)
	assert.True(t, npe.Date.Equal(date(2026, 2, 10)))
	assert.True(t, generic.IsConfigurationError(err))
}

func TestResolveNightlyPrice_ChildWithoutChildPricing_NoPrice(t *testing.T) {
	card := cardWithPropertyBase()
	card.PropertyBase.Tariff.ChildPrice = nil

	_, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 1, Children: 1})

	assert.ErrorIs(t, err, generic.ErrNoPriceAvailable)
}

func TestResolveNightlyPrice_InvalidOccupancy(t *testing.T) {
	card := cardWithPropertyBase()

	for _, occ := range []rates.Occupancy{{Adults: 0}, {Adults: 1, Children: -1}, {Adults: 1, ChildAges: []int{-3}}} {
		_, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), occ)
		assert.ErrorIs(t, err, generic.ErrInvalidOccupancy)
		assert.True(t, generic.IsClientError(err))
	}
}

// =============================================================================
// STAY TOTAL TESTS
// =============================================================================

func TestResolveStayTotal_SumsNightsAndPicksDominantSource(t *testing.T) {
	// GIVEN: Room period covering only Feb 10-11, property base otherwise
	card := cardWithPropertyBase()
	card.RoomPeriods = []rates.RatePeriod{{
		ID: "rp", OwnerID: "room-101", Scope: rates.ScopeRoom,
		Range:  generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 12)),
		Tariff: rates.Tariff{PricePerDay: money(250)},
	}}
	stay := generic.MustDateRange(date(2026, 2, 9), date(2026, 2, 14))

	// WHEN: Pricing 5 nights for two adults
	quote, err := rates.ResolveStayTotal(card, stay, rates.Occupancy{Adults: 2})

	// THEN: 3 nights at 180 + 2 at 250, property_base dominates
	require.NoError(t, err)
	require.Len(t, quote.Nights, 5)
	assertAmount(t, 3*180+2*250, quote.Total)
	assert.Equal(t, rates.SourcePropertyBase, quote.PricingSource)
	assert.Equal(t, "2026-02-09", quote.Nights[0].Date.String())
	assert.Equal(t, rates.SourceRoomPeriod, quote.Nights[1].Source)
}

func TestResolveStayTotal_TieUsesFirstNightSource(t *testing.T) {
	card := cardWithPropertyBase()
	card.RoomPeriods = []rates.RatePeriod{{
		ID: "rp", OwnerID: "room-101", Scope: rates.ScopeRoom,
		Range:  generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 12)),
		Tariff: rates.Tariff{PricePerDay: money(250)},
	}}

	quote, err := rates.ResolveStayTotal(card, generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 14)), rates.Occupancy{Adults: 1})

	require.NoError(t, err)
	assert.Equal(t, rates.SourceRoomPeriod, quote.PricingSource)
}

func TestResolveStayTotal_TieWithoutFirstNightUsesEarliestLeader(t *testing.T) {
	// GIVEN: One property-base night, then two room-period and two category-period nights
	card := cardWithPropertyBase()
	card.RoomPeriods = []rates.RatePeriod{{
		ID: "rp", OwnerID: "room-101", Scope: rates.ScopeRoom,
		Range:  generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 12)),
		Tariff: rates.Tariff{PricePerDay: money(250)},
	}}
	card.CategoryPeriods = []rates.RatePeriod{{
		ID: "cp", OwnerID: "cat-double", Scope: rates.ScopeCategory,
		Range:  generic.MustDateRange(date(2026, 2, 12), date(2026, 2, 14)),
		Tariff: rates.Tariff{BaseOneAdult: money(300)},
	}}

	// WHEN: Pricing Feb 9-13
	quote, err := rates.ResolveStayTotal(card, generic.MustDateRange(date(2026, 2, 9), date(2026, 2, 14)), rates.Occupancy{Adults: 1})

	// THEN: The first night's source is not a leader, so the leader seen first wins
	require.NoError(t, err)
	assert.Equal(t, rates.SourcePropertyBase, quote.Nights[0].Source)
	assert.Equal(t, rates.SourceRoomPeriod, quote.PricingSource)
	assertAmount(t, 100+2*250+2*300, quote.Total)
}

func TestResolveNightlyPrice_ClassifiesWithPropertyBaseAges(t *testing.T) {
	// GIVEN: A card built only from records; the property base carries the age policy
	factor := decimal.RequireFromString("0.5")
	base := propertyBase()
	base.Ages = &rates.AgePolicy{InfantMaxAge: 2, ChildMaxAge: 12, ChildFactor: &factor}
	card := rates.RateCard{Room: room(), PropertyBase: base}

	// WHEN: Pricing one adult with an eight-year-old
	night, err := rates.ResolveNightlyPrice(card, date(2026, 2, 10), rates.Occupancy{Adults: 1, ChildAges: []int{8}})

	// THEN: The child pays child_price, not an adult rate
	require.NoError(t, err)
	assertAmount(t, 100+30, night.Amount)

	// WHEN: The tariff has no child_price
	base.Tariff.ChildPrice = nil
	quote, err := rates.ResolveStayTotal(card, generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 11)), rates.Occupancy{Adults: 1, ChildAges: []int{8}})

	// THEN: child_factor applies to base_one_adult
	require.NoError(t, err)
	assertAmount(t, 100+50, quote.Total)
	assert.Equal(t, *base.Ages, card.AgePolicy())
}

func TestResolveStayTotal_OneUnpricedNightFailsStay(t *testing.T) {
	// GIVEN: Only a room period for Feb 10-11, no base rates
	card := rates.RateCard{
		Room: room(),
		RoomPeriods: []rates.RatePeriod{{
			ID: "rp", OwnerID: "room-101", Scope: rates.ScopeRoom,
			Range:  generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 12)),
			Tariff: rates.Tariff{PricePerDay: money(250)},
		}},
	}

	// WHEN: The stay runs one night past the period
	_, err := rates.ResolveStayTotal(card, generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 13)), rates.Occupancy{Adults: 1})

	// THEN: No partial total
	var npe *generic.NoPriceAvailableError
	require.ErrorAs(t, err, &npe)
	assert.Equal(t, "2026-02-12", npe.Date.String())
}

func TestResolveStayTotal_InvalidRange(t *testing.T) {
	_, err := rates.ResolveStayTotal(cardWithPropertyBase(), generic.DateRange{Start: date(2026, 2, 12), End: date(2026, 2, 10)}, rates.Occupancy{Adults: 1})

	assert.ErrorIs(t, err, generic.ErrInvalidRange)
}

func TestResolveStayTotal_Idempotent(t *testing.T) {
	card := cardWithPropertyBase()
	stay := generic.MustDateRange(date(2026, 2, 10), date(2026, 2, 13))
	occ := rates.Occupancy{Adults: 3, Children: 1}

	first, err := rates.ResolveStayTotal(card, stay, occ)
	require.NoError(t, err)
	second, err := rates.ResolveStayTotal(card, stay, occ)
	require.NoError(t, err)

	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, first.PricingSource, second.PricingSource)
	assertAmount(t, 3*230, first.Total)
}

func TestAgesOf_DefaultsWhenPropertyBaseHasNone(t *testing.T) {
	assert.Equal(t, rates.DefaultAgePolicy(), rates.AgesOf(nil))
	assert.Equal(t, rates.DefaultAgePolicy(), rates.AgesOf(&rates.BaseRate{Scope: rates.ScopeProperty}))

	custom := rates.AgePolicy{InfantMaxAge: 3, ChildMaxAge: 10}
	assert.Equal(t, custom, rates.AgesOf(&rates.BaseRate{Scope: rates.ScopeProperty, Ages: &custom}))
}
