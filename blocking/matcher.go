/*
matcher.go - Recurrence matching and block overlap

PURPOSE:
  Answers "is this room blocked on this day?" for one block, and lifts that
  answer to stay ranges and calendar windows. The same IsDateBlocked predicate
  backs every operation, so calendars and availability checks never disagree.

RECURRENCE RULES (inside Range; outside Range nothing is blocked):
  none     every day is blocked
  daily    every day is blocked (signals "ongoing" to calendar UIs)
  weekly   days that fall a whole number of weeks after Range.Start
  monthly  days whose day-of-month equals Range.Start's
  other    never blocked (fail closed: never over-block on bad data)

MONTH LENGTH:
  A monthly block anchored on the 31st does not match in 30-day months, and one
  anchored on the 29th-31st skips February. This is deliberate: rolling over to
  month-end would block days staff never asked for.

COST:
  IsRangeBlocked and ExpandBlockDates are O(days × blocks). Callers must bound
  the range/window to a UI-visible horizon (weeks, not years); the api package
  enforces MAX_WINDOW_DAYS before calling in.
*/

package blocking

import (
	"iter"
	"sort"

	"github.com/dcorazolla/reservas-sub002/generic"
)

// IsDateBlocked reports whether block covers date.
func IsDateBlocked(date generic.Date, block Block) bool {
	if !block.Range.Contains(date) {
		return false
	}

	anchor := block.Range.Start
	switch ParseRecurrence(string(block.Recurrence)) {
	case RecurrenceNone, RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return generic.DaysBetween(anchor, date)%7 == 0
	case RecurrenceMonthly:
		return date.Day() == anchor.Day()
	default:
		return false
	}
}

// IsRangeBlocked reports whether any day of r is covered by any block.
func IsRangeBlocked(r generic.DateRange, blocks []Block) bool {
	if len(blocks) == 0 {
		return false
	}
	for day := range r.Days() {
		for _, b := range blocks {
			if IsDateBlocked(day, b) {
				return true
			}
		}
	}
	return false
}

// MatchingBlocks returns the blocks that cover at least one day of r, in input order.
func MatchingBlocks(r generic.DateRange, blocks []Block) []Block {
	var matched []Block
	for _, b := range blocks {
		if IsRangeBlocked(r, []Block{b}) {
			matched = append(matched, b)
		}
	}
	return matched
}

// ExpandBlockDates yields, in ascending order, every day in block.Range ∩ window that
// the block covers. The sequence is lazy, finite and restartable.
func ExpandBlockDates(block Block, window generic.DateRange) iter.Seq[generic.Date] {
	return func(yield func(generic.Date) bool) {
		span, ok := block.Range.Intersect(window)
		if !ok {
			return
		}
		for day := range span.Days() {
			if !IsDateBlocked(day, block) {
				continue
			}
			if !yield(day) {
				return
			}
		}
	}
}

// BlockedDates returns the sorted, de-duplicated YYYY-MM-DD days in window covered by
// any of blocks. This is what calendar views paint.
func BlockedDates(blocks []Block, window generic.DateRange) []string {
	seen := make(map[string]struct{})
	for _, b := range blocks {
		for day := range ExpandBlockDates(b, window) {
			seen[day.String()] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// UnknownRecurrences returns the blocks whose recurrence the matcher does not understand.
func UnknownRecurrences(blocks []Block) []Block {
	var unknown []Block
	for _, b := range blocks {
		if !b.Recurrence.Known() {
			unknown = append(unknown, b)
		}
	}
	return unknown
}
