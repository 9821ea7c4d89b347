package generic

import (
	"fmt"
	"iter"
)

// =============================================================================
// DATE RANGE - The time window every rule is scoped to
// =============================================================================

// DateRange is a half-open span of calendar days: Start is included, End is not.
//
// Examples:
//   - A stay checking in 2026-02-10 and out 2026-02-12 covers the nights of the 10th and 11th.
//   - A block over [2026-03-01, 2026-04-01) covers every day of March.
//
// Ranges built with NewDateRange always satisfy End > Start.
type DateRange struct {
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
}

// NewDateRange validates and builds a range. Ranges with end <= start are rejected here,
// never discovered mid-algorithm.
func NewDateRange(start, end Date) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// MustDateRange is NewDateRange for fixtures and tests. It panics on an invalid range.
func MustDateRange(start, end Date) DateRange {
	r, err := NewDateRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Validate returns ErrInvalidRange unless End > Start.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() || !r.End.After(r.Start) {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	return nil
}

// Contains returns true if start <= d < end.
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.Before(r.End)
}

// Nights is the number of days in the range.
func (r DateRange) Nights() int {
	if !r.End.After(r.Start) {
		return 0
	}
	return DaysBetween(r.Start, r.End)
}

// Days yields every day in [Start, End) in ascending order.
// The sequence is lazy and can be ranged over any number of times.
func (r DateRange) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.Start; d.Before(r.End); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Overlaps reports whether the two ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Intersect returns the shared part of two ranges, or false if they do not overlap.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	if !r.Overlaps(other) {
		return DateRange{}, false
	}
	start, end := r.Start, r.End
	if other.Start.After(start) {
		start = other.Start
	}
	if other.End.Before(end) {
		end = other.End
	}
	return DateRange{Start: start, End: end}, true
}

// String returns a string representation of the range.
func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + ")"
}
