// Package storetest is a contract suite every booking.Store implementation must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcorazolla/reservas-sub002/blocking"
	"github.com/dcorazolla/reservas-sub002/booking"
	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
	"github.com/dcorazolla/reservas-sub002/refunds"
)

// Run exercises store against the booking.Store contract. newStore must return
// an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) booking.Store) {
	t.Run("RoomsAndProperties", func(t *testing.T) { testRooms(t, newStore(t)) })
	t.Run("BlocksOverlapWindow", func(t *testing.T) { testBlocks(t, newStore(t)) })
	t.Run("RatePeriodsKeepOrder", func(t *testing.T) { testRatePeriods(t, newStore(t)) })
	t.Run("BaseRates", func(t *testing.T) { testBaseRates(t, newStore(t)) })
	t.Run("PoliciesWithRules", func(t *testing.T) { testPolicies(t, newStore(t)) })
	t.Run("Reservations", func(t *testing.T) { testReservations(t, newStore(t)) })
}

func d(s string) generic.Date { return generic.MustParseDate(s) }

func r(from, to string) generic.DateRange { return generic.MustDateRange(d(from), d(to)) }

func seedRooms(t *testing.T, s booking.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SaveProperty(ctx, booking.Property{ID: "prop-1", Name: "Pousada"}))
	require.NoError(t, s.SaveProperty(ctx, booking.Property{ID: "prop-2", Name: "Hostel"}))
	require.NoError(t, s.SaveRoom(ctx, rates.Room{ID: "room-101", PropertyID: "prop-1", CategoryID: "cat-double", Name: "101"}))
	require.NoError(t, s.SaveRoom(ctx, rates.Room{ID: "room-102", PropertyID: "prop-1", Name: "102"}))
	require.NoError(t, s.SaveRoom(ctx, rates.Room{ID: "room-201", PropertyID: "prop-2", Name: "201"}))
}

// =============================================================================
// CONTRACT CASES
// =============================================================================

func testRooms(t *testing.T, s booking.Store) {
	ctx := context.Background()
	seedRooms(t, s)

	p, err := s.GetProperty(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "Pousada", p.Name)

	room, err := s.GetRoom(ctx, "room-101")
	require.NoError(t, err)
	assert.Equal(t, generic.CategoryID("cat-double"), room.CategoryID)

	rooms, err := s.ListRooms(ctx, "prop-1")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, generic.RoomID("room-101"), rooms[0].ID)
	assert.Equal(t, generic.RoomID("room-102"), rooms[1].ID)

	_, err = s.GetRoom(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrNotFound)
	_, err = s.GetProperty(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrNotFound)

	rooms, err = s.ListRooms(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func testBlocks(t *testing.T, s booking.Store) {
	ctx := context.Background()
	seedRooms(t, s)

	require.NoError(t, s.SaveBlock(ctx, blocking.Block{
		ID: "b1", RoomID: "room-101", Range: r("2026-02-10", "2026-03-10"),
		Recurrence: blocking.RecurrenceWeekly, Type: blocking.BlockCleaning, Reason: "deep clean",
	}))
	require.NoError(t, s.SaveBlock(ctx, blocking.Block{
		ID: "b2", RoomID: "room-102", Range: r("2026-04-01", "2026-04-05"),
	}))
	require.NoError(t, s.SaveBlock(ctx, blocking.Block{
		ID: "b3", RoomID: "room-201", Range: r("2026-02-01", "2026-02-28"),
	}))

	err := s.SaveBlock(ctx, blocking.Block{ID: "bx", RoomID: "ghost", Range: r("2026-02-01", "2026-02-02")})
	assert.ErrorIs(t, err, generic.ErrNotFound, "blocks need an existing room")

	blocks, err := s.ListRoomBlocks(ctx, "room-101", r("2026-03-01", "2026-03-05"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "b1", blocks[0].ID)
	assert.Equal(t, blocking.RecurrenceWeekly, blocks[0].Recurrence)
	assert.Equal(t, blocking.BlockCleaning, blocks[0].Type)
	assert.Equal(t, "deep clean", blocks[0].Reason)
	assert.True(t, blocks[0].Range.Start.Equal(d("2026-02-10")))

	// half-open: a window starting on the block's end date doesn't overlap
	blocks, err = s.ListRoomBlocks(ctx, "room-101", r("2026-03-10", "2026-03-20"))
	require.NoError(t, err)
	assert.Empty(t, blocks)

	blocks, err = s.ListPropertyBlocks(ctx, "prop-1", r("2026-01-01", "2026-12-31"))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "b1", blocks[0].ID)
	assert.Equal(t, "b2", blocks[1].ID)
}

func testRatePeriods(t *testing.T, s booking.Store) {
	ctx := context.Background()
	high := rates.RatePeriod{
		ID: "p-high", OwnerID: "room-101", Scope: rates.ScopeRoom, Range: r("2026-12-20", "2027-01-05"),
		Tariff: rates.Tariff{
			PricePerDay:  generic.DecimalPtr(300),
			PeoplePrices: []rates.PeoplePrice{{People: 2, Price: decimal.RequireFromString("350.50")}},
		},
		Description: "Holidays",
	}
	carnival := rates.RatePeriod{
		ID: "p-carnival", OwnerID: "room-101", Scope: rates.ScopeRoom, Range: r("2026-02-13", "2026-02-18"),
		Tariff: rates.Tariff{PricePerDay: generic.DecimalPtr(400)},
	}
	category := rates.RatePeriod{
		ID: "p-cat", OwnerID: "room-101", Scope: rates.ScopeCategory, Range: r("2026-01-01", "2026-02-01"),
		Tariff: rates.Tariff{BaseOneAdult: generic.DecimalPtr(90)},
	}
	for _, p := range []rates.RatePeriod{high, carnival, category} {
		require.NoError(t, s.SaveRatePeriod(ctx, p))
	}

	// updating keeps the original position
	high.Description = "Christmas"
	require.NoError(t, s.SaveRatePeriod(ctx, high))

	periods, err := s.ListRatePeriods(ctx, rates.ScopeRoom, "room-101")
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "p-high", periods[0].ID)
	assert.Equal(t, "Christmas", periods[0].Description)
	assert.Equal(t, "p-carnival", periods[1].ID)
	require.Len(t, periods[0].Tariff.PeoplePrices, 1)
	assert.True(t, periods[0].Tariff.PeoplePrices[0].Price.Equal(decimal.RequireFromString("350.50")))
	assert.True(t, periods[0].Tariff.PricePerDay.Equal(decimal.NewFromInt(300)))
	assert.Nil(t, periods[0].Tariff.BaseOneAdult)
}

func testBaseRates(t *testing.T, s booking.Store) {
	ctx := context.Background()

	_, err := s.BaseRate(ctx, rates.ScopeProperty, "prop-1")
	assert.ErrorIs(t, err, generic.ErrNotFound)

	factor := decimal.RequireFromString("0.5")
	require.NoError(t, s.SaveBaseRate(ctx, rates.BaseRate{
		OwnerID: "prop-1", Scope: rates.ScopeProperty,
		Tariff: rates.Tariff{BaseOneAdult: generic.DecimalPtr(100), BaseTwoAdults: generic.DecimalPtr(180)},
		Ages:   &rates.AgePolicy{InfantMaxAge: 2, ChildMaxAge: 11, ChildFactor: &factor},
	}))
	require.NoError(t, s.SaveBaseRate(ctx, rates.BaseRate{
		OwnerID: "prop-1", Scope: rates.ScopeCategory,
		Tariff: rates.Tariff{PricePerDay: generic.DecimalPtr(70)},
	}))

	base, err := s.BaseRate(ctx, rates.ScopeProperty, "prop-1")
	require.NoError(t, err)
	require.NotNil(t, base.Ages)
	assert.Equal(t, 11, base.Ages.ChildMaxAge)
	assert.True(t, base.Ages.ChildFactor.Equal(factor))
	assert.True(t, base.Tariff.BaseTwoAdults.Equal(decimal.NewFromInt(180)))

	other, err := s.BaseRate(ctx, rates.ScopeCategory, "prop-1")
	require.NoError(t, err)
	assert.Nil(t, other.Ages, "scope is part of the key")
}

func testPolicies(t *testing.T, s booking.Store) {
	ctx := context.Background()
	until := d("2026-12-31")
	penalty := decimal.NewFromInt(50)

	policy := refunds.Policy{
		ID: "pol-1", PropertyID: "prop-1", Type: "moderate", Active: true,
		AppliesFrom: d("2026-01-01"), AppliesTo: &until,
		Rules: []refunds.Rule{
			{ID: "r-early", DaysMin: 7, DaysMax: 999, RefundPercent: decimal.NewFromInt(100), Priority: 3, Label: "Free"},
			{ID: "r-late", DaysMin: 0, DaysMax: 6, RefundPercent: decimal.Zero,
				PenaltyType: refunds.PenaltyFixed, PenaltyAmount: &penalty, Priority: 1},
		},
	}
	require.NoError(t, s.SavePolicy(ctx, policy))
	require.NoError(t, s.SavePolicy(ctx, refunds.Policy{ID: "pol-2", PropertyID: "prop-1"}))
	require.NoError(t, s.SavePolicy(ctx, refunds.Policy{ID: "pol-other", PropertyID: "prop-2", Active: true}))

	policies, err := s.ListPolicies(ctx, "prop-1")
	require.NoError(t, err)
	require.Len(t, policies, 2)

	got := policies[0]
	assert.Equal(t, generic.PolicyID("pol-1"), got.ID)
	assert.Equal(t, "moderate", got.Type)
	assert.True(t, got.Active)
	assert.True(t, got.AppliesFrom.Equal(d("2026-01-01")))
	require.NotNil(t, got.AppliesTo)
	assert.True(t, got.AppliesTo.Equal(until))
	require.Len(t, got.Rules, 2)
	assert.Equal(t, "r-early", got.Rules[0].ID)
	assert.Equal(t, "Free", got.Rules[0].Label)
	assert.Equal(t, refunds.PenaltyFixed, got.Rules[1].PenaltyType)
	require.NotNil(t, got.Rules[1].PenaltyAmount)
	assert.True(t, got.Rules[1].PenaltyAmount.Equal(penalty))

	assert.False(t, policies[1].Active)
	assert.Empty(t, policies[1].Rules)
	assert.Nil(t, policies[1].AppliesTo)

	// saving again replaces the rule set
	policy.Rules = policy.Rules[:1]
	require.NoError(t, s.SavePolicy(ctx, policy))
	policies, err = s.ListPolicies(ctx, "prop-1")
	require.NoError(t, err)
	assert.Len(t, policies[0].Rules, 1)
}

func testReservations(t *testing.T, s booking.Store) {
	ctx := context.Background()
	res := refunds.Reservation{
		ID: "res-1", PropertyID: "prop-1", RoomID: "room-101",
		Range:      r("2026-02-10", "2026-02-13"),
		Occupancy:  generic.Occupancy{Adults: 2, ChildAges: []int{4}},
		TotalValue: decimal.RequireFromString("1234.56"),
		Status:     refunds.StatusConfirmed,
	}
	require.NoError(t, s.SaveReservation(ctx, res))

	got, err := s.GetReservation(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, res.Occupancy, got.Occupancy)
	assert.True(t, got.TotalValue.Equal(res.TotalValue))
	assert.True(t, got.Range.Start.Equal(res.Range.Start))
	assert.True(t, got.Range.End.Equal(res.Range.End))
	assert.Equal(t, refunds.StatusConfirmed, got.Status)

	_, err = s.GetReservation(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}
