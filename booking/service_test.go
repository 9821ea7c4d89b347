package booking_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcorazolla/reservas-sub002/blocking"
	"github.com/dcorazolla/reservas-sub002/booking"
	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
	"github.com/dcorazolla/reservas-sub002/refunds"
	"github.com/dcorazolla/reservas-sub002/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.Date {
	return generic.NewDate(year, month, day)
}

func stay(from, to generic.Date) generic.DateRange {
	return generic.MustDateRange(from, to)
}

// seededService returns a service over a store with one property, two rooms,
// a property base rate and the standard cancellation policy.
func seededService(t *testing.T) (*booking.Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.SaveProperty(ctx, booking.Property{ID: "prop-1", Name: "Pousada Azul"}))
	require.NoError(t, store.SaveProperty(ctx, booking.Property{ID: "prop-2", Name: "Other"}))
	require.NoError(t, store.SaveRoom(ctx, rates.Room{ID: "room-101", PropertyID: "prop-1", CategoryID: "cat-double", Name: "101"}))
	require.NoError(t, store.SaveRoom(ctx, rates.Room{ID: "room-102", PropertyID: "prop-1", Name: "102"}))
	require.NoError(t, store.SaveRoom(ctx, rates.Room{ID: "room-201", PropertyID: "prop-2", Name: "201"}))

	require.NoError(t, store.SaveBaseRate(ctx, rates.BaseRate{
		OwnerID: "prop-1",
		Scope:   rates.ScopeProperty,
		Tariff: rates.Tariff{
			BaseOneAdult:    generic.DecimalPtr(100),
			BaseTwoAdults:   generic.DecimalPtr(180),
			AdditionalAdult: generic.DecimalPtr(20),
			ChildPrice:      generic.DecimalPtr(30),
		},
	}))

	require.NoError(t, store.SavePolicy(ctx, refunds.Policy{
		ID:          "pol-1",
		PropertyID:  "prop-1",
		Active:      true,
		AppliesFrom: date(2025, 1, 1),
		Rules: []refunds.Rule{
			{ID: "early", DaysMin: 7, DaysMax: 999, RefundPercent: decimal.NewFromInt(100), Priority: 3},
			{ID: "late", DaysMin: 0, DaysMax: 6, RefundPercent: decimal.Zero, Priority: 1},
		},
	}))

	svc := booking.NewService(store, nil)
	svc.Now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	return svc, store
}

// =============================================================================
// PRICING TESTS
// =============================================================================

func TestNightlyPrice_FallsBackToPropertyBase(t *testing.T) {
	svc, _ := seededService(t)

	price, err := svc.NightlyPrice(context.Background(), "room-101", date(2026, 2, 10),
		generic.Occupancy{Adults: 3, Children: 1})

	require.NoError(t, err)
	assert.Equal(t, rates.SourcePropertyBase, price.Source)
	assert.True(t, price.Amount.Equal(decimal.NewFromInt(230)), price.Amount.String())
}

func TestNightlyPrice_CategoryBaseBeatsPropertyBase(t *testing.T) {
	svc, store := seededService(t)
	ctx := context.Background()
	require.NoError(t, store.SaveBaseRate(ctx, rates.BaseRate{
		OwnerID: "cat-double",
		Scope:   rates.ScopeCategory,
		Tariff:  rates.Tariff{PricePerDay: generic.DecimalPtr(150)},
	}))

	price, err := svc.NightlyPrice(ctx, "room-101", date(2026, 2, 10), generic.Occupancy{Adults: 2})

	require.NoError(t, err)
	assert.Equal(t, rates.SourceCategoryBase, price.Source)

	// room-102 has no category and keeps the property base
	price, err = svc.NightlyPrice(ctx, "room-102", date(2026, 2, 10), generic.Occupancy{Adults: 2})
	require.NoError(t, err)
	assert.Equal(t, rates.SourcePropertyBase, price.Source)
}

func TestNightlyPrice_NoRates_NoPriceAvailable(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.NightlyPrice(context.Background(), "room-201", date(2026, 2, 10), generic.Occupancy{Adults: 1})

	assert.ErrorIs(t, err, generic.ErrNoPriceAvailable)
}

func TestNightlyPrice_UnknownRoom(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.NightlyPrice(context.Background(), "nope", date(2026, 2, 10), generic.Occupancy{Adults: 1})

	assert.True(t, generic.IsNotFound(err))
}

func TestRateCard_UsesPropertyAgePolicy(t *testing.T) {
	svc, store := seededService(t)
	ctx := context.Background()
	ages := rates.AgePolicy{InfantMaxAge: 1, ChildMaxAge: 10}
	require.NoError(t, store.SaveBaseRate(ctx, rates.BaseRate{
		OwnerID: "prop-1",
		Scope:   rates.ScopeProperty,
		Tariff:  rates.Tariff{PricePerDay: generic.DecimalPtr(90)},
		Ages:    &ages,
	}))

	card, err := svc.RateCard(ctx, "room-101")

	require.NoError(t, err)
	assert.Equal(t, ages, card.AgePolicy())
	assert.Nil(t, card.RoomBase)
	assert.Empty(t, card.RoomPeriods)
}

// =============================================================================
// QUOTE TESTS
// =============================================================================

func TestQuote_FreeStay_IsPriced(t *testing.T) {
	svc, _ := seededService(t)

	quote, err := svc.Quote(context.Background(), "room-101",
		stay(date(2026, 2, 10), date(2026, 2, 13)), generic.Occupancy{Adults: 2})

	require.NoError(t, err)
	assert.True(t, quote.Available)
	assert.Empty(t, quote.BlockedDates)
	require.NotNil(t, quote.Price)
	assert.True(t, quote.Price.Total.Equal(decimal.NewFromInt(540)), quote.Price.Total.String())
	assert.Len(t, quote.Price.Nights, 3)
	assert.Equal(t, rates.SourcePropertyBase, quote.Price.PricingSource)
}

func TestQuote_BlockedStay_ReportsDatesInsteadOfPrice(t *testing.T) {
	// GIVEN: Weekly cleaning every Tuesday starting 2026-02-10
	svc, store := seededService(t)
	ctx := context.Background()
	require.NoError(t, store.SaveBlock(ctx, blocking.Block{
		ID:         "blk-weekly",
		RoomID:     "room-101",
		Range:      stay(date(2026, 2, 10), date(2026, 3, 10)),
		Recurrence: blocking.RecurrenceWeekly,
		Type:       blocking.BlockCleaning,
	}))

	// WHEN: Quoting a stay that spans Tuesday the 17th
	quote, err := svc.Quote(ctx, "room-101", stay(date(2026, 2, 15), date(2026, 2, 19)), generic.Occupancy{Adults: 2})

	// THEN: Not available, the blocked day is reported, no price
	require.NoError(t, err)
	assert.False(t, quote.Available)
	assert.Equal(t, []string{"2026-02-17"}, quote.BlockedDates)
	assert.Nil(t, quote.Price)

	// AND: A stay checking out on the Tuesday is fine
	quote, err = svc.Quote(ctx, "room-101", stay(date(2026, 2, 14), date(2026, 2, 17)), generic.Occupancy{Adults: 2})
	require.NoError(t, err)
	assert.True(t, quote.Available)
}

func TestQuote_InvalidOccupancy(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.Quote(context.Background(), "room-101",
		stay(date(2026, 2, 10), date(2026, 2, 13)), generic.Occupancy{Adults: 0})

	assert.ErrorIs(t, err, generic.ErrInvalidOccupancy)
}

func TestQuote_UnknownRecurrence_LoggedAndIgnored(t *testing.T) {
	svc, store := seededService(t)
	ctx := context.Background()
	var logs bytes.Buffer
	svc = booking.NewService(store, slog.New(slog.NewTextHandler(&logs, nil)))

	require.NoError(t, store.SaveBlock(ctx, blocking.Block{
		ID:         "blk-odd",
		RoomID:     "room-101",
		Range:      stay(date(2026, 2, 1), date(2026, 3, 1)),
		Recurrence: "fortnightly",
	}))

	quote, err := svc.Quote(ctx, "room-101", stay(date(2026, 2, 10), date(2026, 2, 12)), generic.Occupancy{Adults: 1})

	require.NoError(t, err)
	assert.True(t, quote.Available)
	assert.Contains(t, logs.String(), "unknown recurrence")
	assert.Contains(t, logs.String(), "blk-odd")
}

// =============================================================================
// CALENDAR TESTS
// =============================================================================

func TestCalendar_BlockedDatesPerRoom(t *testing.T) {
	svc, store := seededService(t)
	ctx := context.Background()
	require.NoError(t, store.SaveBlock(ctx, blocking.Block{
		ID: "blk-maint", RoomID: "room-101",
		Range: stay(date(2026, 2, 10), date(2026, 2, 12)), Type: blocking.BlockMaintenance,
	}))
	require.NoError(t, store.SaveBlock(ctx, blocking.Block{
		ID: "blk-other", RoomID: "room-201",
		Range: stay(date(2026, 2, 10), date(2026, 2, 12)),
	}))

	cal, err := svc.Calendar(ctx, "prop-1", stay(date(2026, 2, 1), date(2026, 3, 1)))

	require.NoError(t, err)
	require.Len(t, cal.Rooms, 2)
	assert.Equal(t, generic.RoomID("room-101"), cal.Rooms[0].RoomID)
	assert.Equal(t, []string{"2026-02-10", "2026-02-11"}, cal.Rooms[0].BlockedDates)
	assert.Equal(t, []string{}, cal.Rooms[1].BlockedDates)
}

func TestCalendar_UnknownProperty(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.Calendar(context.Background(), "prop-x", stay(date(2026, 2, 1), date(2026, 3, 1)))

	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// CANCELLATION TESTS
// =============================================================================

func saveReservation(t *testing.T, store *memory.Store, id generic.ReservationID, checkin generic.Date, status refunds.ReservationStatus) {
	t.Helper()
	require.NoError(t, store.SaveReservation(context.Background(), refunds.Reservation{
		ID:         id,
		PropertyID: "prop-1",
		RoomID:     "room-101",
		Range:      stay(checkin, checkin.AddDays(2)),
		Occupancy:  generic.Occupancy{Adults: 2},
		TotalValue: decimal.NewFromInt(1000),
		Status:     status,
	}))
}

func TestPreviewCancellation(t *testing.T) {
	svc, store := seededService(t)
	saveReservation(t, store, "res-early", date(2026, 2, 11), refunds.StatusConfirmed)
	saveReservation(t, store, "res-late", date(2026, 2, 3), refunds.StatusConfirmed)

	refund, err := svc.PreviewCancellation(context.Background(), "res-early")
	require.NoError(t, err)
	assert.Equal(t, 10, refund.DaysBeforeCheckin)
	assert.True(t, refund.RefundAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, refund.RetainedAmount.IsZero())
	assert.Equal(t, generic.PolicyID("pol-1"), refund.PolicyID)

	refund, err = svc.PreviewCancellation(context.Background(), "res-late")
	require.NoError(t, err)
	assert.True(t, refund.RefundAmount.IsZero())
	assert.True(t, refund.RetainedAmount.Equal(decimal.NewFromInt(1000)))
}

func TestPreviewCancellation_AlreadyCancelled(t *testing.T) {
	svc, store := seededService(t)
	saveReservation(t, store, "res-x", date(2026, 2, 11), refunds.StatusCancelled)

	_, err := svc.PreviewCancellation(context.Background(), "res-x")

	assert.ErrorIs(t, err, generic.ErrReservationCancelled)
}

func TestPreviewCancellation_NoActivePolicy(t *testing.T) {
	svc, store := seededService(t)
	saveReservation(t, store, "res-1", date(2026, 2, 11), refunds.StatusConfirmed)
	svc.Now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, err := svc.PreviewCancellation(context.Background(), "res-1")

	assert.ErrorIs(t, err, generic.ErrPolicyNotFound)
}

func TestPreviewCancellation_GapNeedsManualHandling(t *testing.T) {
	svc, store := seededService(t)
	ctx := context.Background()
	require.NoError(t, store.SavePolicy(ctx, refunds.Policy{
		ID: "pol-gap", PropertyID: "prop-1", Active: true, AppliesFrom: date(2026, 1, 1),
		Rules: []refunds.Rule{{ID: "only-late", DaysMin: 0, DaysMax: 3}},
	}))
	saveReservation(t, store, "res-1", date(2026, 2, 11), refunds.StatusConfirmed)

	_, err := svc.PreviewCancellation(ctx, "res-1")

	assert.ErrorIs(t, err, generic.ErrNoApplicableRefundRule)
}

func TestPreviewCancellation_PicksPolicyOnUTCDay(t *testing.T) {
	// GIVEN: A policy starting April 1st, and a clock at 22:00 on March 31st in UTC-3
	svc, store := seededService(t)
	ctx := context.Background()
	require.NoError(t, store.SavePolicy(ctx, refunds.Policy{
		ID: "pol-april", PropertyID: "prop-1", Active: true, AppliesFrom: date(2026, 4, 1),
		Rules: []refunds.Rule{{ID: "any", DaysMin: 0, DaysMax: 999, RefundPercent: decimal.NewFromInt(100)}},
	}))
	saveReservation(t, store, "res-1", date(2026, 4, 20), refunds.StatusConfirmed)
	brt := time.FixedZone("BRT", -3*3600)
	svc.Now = func() time.Time { return time.Date(2026, 3, 31, 22, 0, 0, 0, brt) }

	// WHEN: Previewing the cancellation
	refund, err := svc.PreviewCancellation(ctx, "res-1")

	// THEN: The policy is picked on the same UTC day the days-before count uses
	require.NoError(t, err)
	assert.Equal(t, generic.PolicyID("pol-april"), refund.PolicyID)
	assert.Equal(t, 18, refund.DaysBeforeCheckin)
}
