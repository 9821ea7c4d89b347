package generic_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcorazolla/reservas-sub002/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) generic.Date { return generic.MustParseDate(s) }

func dr(start, end string) generic.DateRange {
	return generic.MustDateRange(d(start), d(end))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// DATES AND RANGES
// =============================================================================

func TestDateOf_KeepsCalendarDayOfLocation(t *testing.T) {
	// GIVEN: 23:00 on March 1st in UTC-3 (already March 2nd in UTC)
	brt := time.FixedZone("BRT", -3*3600)
	late := time.Date(2026, 3, 1, 23, 0, 0, 0, brt)

	// THEN: The local calendar day is kept, normalized to UTC midnight
	got := generic.DateOf(late)
	assert.Equal(t, "2026-03-01", got.String())
	assert.Equal(t, time.UTC, got.Time().Location())
	assert.Zero(t, got.Time().Hour())
}

func TestParseDate_Rejects(t *testing.T) {
	for _, raw := range []string{"", "2026-13-01", "01/03/2026", "2026-02-30"} {
		_, err := generic.ParseDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Day generic.Date `json:"day"`
	}

	out, err := json.Marshal(wrapper{Day: d("2026-03-01")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2026-03-01"}`, string(out))

	var back wrapper
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.Day.Equal(d("2026-03-01")))

	assert.Error(t, json.Unmarshal([]byte(`{"day":"March 1st"}`), &back))
}

func TestNewDateRange_RejectsEmptyAndInverted(t *testing.T) {
	_, err := generic.NewDateRange(d("2026-03-10"), d("2026-03-10"))
	assert.ErrorIs(t, err, generic.ErrInvalidRange)

	_, err = generic.NewDateRange(d("2026-03-10"), d("2026-03-01"))
	assert.ErrorIs(t, err, generic.ErrInvalidRange)

	assert.ErrorIs(t, generic.DateRange{}.Validate(), generic.ErrInvalidRange)
}

func TestDateRange_IsHalfOpen(t *testing.T) {
	// GIVEN: A stay checking in the 10th and out the 12th
	stay := dr("2026-02-10", "2026-02-12")

	// THEN: It covers the nights of the 10th and 11th only
	assert.False(t, stay.Contains(d("2026-02-09")))
	assert.True(t, stay.Contains(d("2026-02-10")))
	assert.True(t, stay.Contains(d("2026-02-11")))
	assert.False(t, stay.Contains(d("2026-02-12")))
	assert.Equal(t, 2, stay.Nights())
	assert.Equal(t, "[2026-02-10, 2026-02-12)", stay.String())
}

func TestDateRange_Days(t *testing.T) {
	// GIVEN: A range crossing the end of February 2028 (leap year)
	r := dr("2028-02-27", "2028-03-02")

	// WHEN: Iterating it twice
	var first, second []string
	for day := range r.Days() {
		first = append(first, day.String())
	}
	for day := range r.Days() {
		second = append(second, day.String())
	}

	// THEN: Both passes yield the same ascending days, the 29th included
	assert.Equal(t, []string{"2028-02-27", "2028-02-28", "2028-02-29", "2028-03-01"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, len(first), r.Nights())
}

func TestDateRange_DaysStopsEarly(t *testing.T) {
	r := dr("2026-01-01", "2026-12-31")

	var seen int
	for range r.Days() {
		seen++
		if seen == 3 {
			break
		}
	}

	assert.Equal(t, 3, seen)
}

func TestDateRange_OverlapsAndIntersect(t *testing.T) {
	tests := []struct {
		name     string
		a, b     generic.DateRange
		overlaps bool
		shared   string
	}{
		{"partial", dr("2026-03-01", "2026-03-10"), dr("2026-03-05", "2026-03-20"), true, "[2026-03-05, 2026-03-10)"},
		{"contained", dr("2026-03-01", "2026-03-31"), dr("2026-03-10", "2026-03-12"), true, "[2026-03-10, 2026-03-12)"},
		{"adjacent", dr("2026-03-01", "2026-03-05"), dr("2026-03-05", "2026-03-10"), false, ""},
		{"disjoint", dr("2026-03-01", "2026-03-05"), dr("2026-04-01", "2026-04-05"), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.overlaps, tt.b.Overlaps(tt.a))

			shared, ok := tt.a.Intersect(tt.b)
			assert.Equal(t, tt.overlaps, ok)
			if ok {
				assert.Equal(t, tt.shared, shared.String())
			}
		})
	}
}

// =============================================================================
// CASCADE AND PRIORITY
// =============================================================================

func TestCascade_FirstDefinedSourceWins(t *testing.T) {
	var calls []string
	step := func(name string, defined bool, v int) generic.Step[int, int] {
		return generic.Step[int, int]{Name: name, Resolve: func(in int) (int, bool) {
			calls = append(calls, name)
			return in + v, defined
		}}
	}
	c := generic.Cascade[int, int]{
		step("first", false, 1),
		step("second", true, 2),
		step("third", true, 3),
	}

	out, source, ok := c.Run(10)

	require.True(t, ok)
	assert.Equal(t, 12, out)
	assert.Equal(t, "second", source)
	assert.Equal(t, []string{"first", "second"}, calls, "later steps are not evaluated")
	assert.Equal(t, []string{"first", "second", "third"}, c.Names())
}

func TestCascade_NothingDefined(t *testing.T) {
	c := generic.Cascade[string, decimal.Decimal]{
		{Name: "only", Resolve: func(string) (decimal.Decimal, bool) { return decimal.NewFromInt(5), false }},
	}

	out, source, ok := c.Run("x")

	assert.False(t, ok)
	assert.Empty(t, source)
	assert.True(t, out.IsZero())
}

type ranked struct {
	name     string
	priority int
	match    bool
}

func TestSelectByPriority(t *testing.T) {
	matches := func(r ranked) bool { return r.match }
	priority := func(r ranked) int { return r.priority }

	tests := []struct {
		name  string
		items []ranked
		want  string
	}{
		{"highest priority", []ranked{{"a", 1, true}, {"b", 3, true}, {"c", 2, true}}, "b"},
		{"tie goes to the first defined", []ranked{{"a", 1, true}, {"b", 3, true}, {"c", 3, true}}, "b"},
		{"non-matching ignored", []ranked{{"a", 9, false}, {"b", 1, true}}, "b"},
		{"negative priorities", []ranked{{"a", -5, true}, {"b", -2, true}}, "b"},
		{"zero priority single match", []ranked{{"a", 0, true}}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, ok := generic.SelectByPriority(tt.items, matches, priority)
			require.True(t, ok)
			assert.Equal(t, tt.want, tt.items[i].name)
		})
	}
}

func TestSelectByPriority_IndependentOfOrderForDistinctPriorities(t *testing.T) {
	items := []ranked{{"a", 1, true}, {"b", 4, true}, {"c", 2, true}}
	reversed := slices.Clone(items)
	slices.Reverse(reversed)

	i, _ := generic.SelectByPriority(items, func(ranked) bool { return true }, func(r ranked) int { return r.priority })
	j, _ := generic.SelectByPriority(reversed, func(ranked) bool { return true }, func(r ranked) int { return r.priority })

	assert.Equal(t, items[i].name, reversed[j].name)
}

func TestSelectByPriority_NoMatch(t *testing.T) {
	i, ok := generic.SelectByPriority([]ranked{{"a", 1, false}}, func(r ranked) bool { return r.match }, func(r ranked) int { return r.priority })
	assert.False(t, ok)
	assert.Equal(t, -1, i)

	_, ok = generic.SelectByPriority[ranked](nil, func(ranked) bool { return true }, func(ranked) int { return 0 })
	assert.False(t, ok)
}

// =============================================================================
// OCCUPANCY AND MONEY
// =============================================================================

func TestOccupancy_Validate(t *testing.T) {
	tests := []struct {
		name  string
		occ   generic.Occupancy
		valid bool
	}{
		{"one adult", generic.Occupancy{Adults: 1}, true},
		{"family", generic.Occupancy{Adults: 2, Children: 2, Infants: 1}, true},
		{"ages", generic.Occupancy{Adults: 2, ChildAges: []int{0, 7}}, true},
		{"no adult", generic.Occupancy{Children: 2}, false},
		{"negative children", generic.Occupancy{Adults: 1, Children: -1}, false},
		{"negative age", generic.Occupancy{Adults: 1, ChildAges: []int{-3}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.occ.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, generic.ErrInvalidOccupancy)
			assert.True(t, generic.IsClientError(err))
		})
	}
}

func TestMoney(t *testing.T) {
	assert.True(t, dec("135").Equal(generic.Percent(dec("450"), dec("30"))))
	assert.True(t, dec("33.3333").Equal(generic.Percent(dec("100"), dec("33.3333"))))

	assert.True(t, dec("0").Equal(generic.Clamp(dec("-5"), dec("0"), dec("100"))))
	assert.True(t, dec("100").Equal(generic.Clamp(dec("150"), dec("0"), dec("100"))))
	assert.True(t, dec("42.5").Equal(generic.Clamp(dec("42.5"), dec("0"), dec("100"))))

	assert.Equal(t, "2.35", generic.RoundMoney(dec("2.345")).StringFixed(2))
	assert.Equal(t, "-2.35", generic.RoundMoney(dec("-2.345")).StringFixed(2))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestErrorClassification(t *testing.T) {
	noPrice := fmt.Errorf("pricing stay: %w", &generic.NoPriceAvailableError{
		RoomID: "room-101", Date: d("2026-03-01"), Adults: 2,
	})
	noRule := &generic.NoApplicableRefundRuleError{PolicyID: "pol-1", DaysBeforeCheckin: 4}
	badDef := &generic.DefinitionError{Kind: "block", Field: "recurrence", Reason: "must be one of: none daily weekly monthly"}

	assert.True(t, generic.IsConfigurationError(noPrice))
	assert.False(t, generic.IsClientError(noPrice))
	assert.Contains(t, noPrice.Error(), "room-101")

	var structured *generic.NoPriceAvailableError
	require.True(t, errors.As(noPrice, &structured))
	assert.Equal(t, 2, structured.Adults)

	assert.True(t, generic.IsConfigurationError(noRule))
	assert.ErrorIs(t, noRule, generic.ErrNoApplicableRefundRule)
	assert.Contains(t, noRule.Error(), "4 days")

	assert.True(t, generic.IsClientError(badDef))
	assert.ErrorIs(t, badDef, generic.ErrInvalidDefinition)
	assert.Equal(t, "invalid block: recurrence must be one of: none daily weekly monthly", badDef.Error())

	assert.True(t, generic.IsNotFound(fmt.Errorf("property prop-1: %w", generic.ErrPolicyNotFound)))
	assert.True(t, generic.IsClientError(generic.ErrReservationCancelled))
}
