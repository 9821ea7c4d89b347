/*
refund.go - Cancellation refund selection and arithmetic

PURPOSE:
  Given a reservation, its property's cancellation policy and the current
  instant, finds the single refund rule that applies and splits the
  reservation's total value into a refund and a retained amount.

RULE SELECTION:
  Rules whose inclusive window [DaysMin, DaysMax] covers the days before
  check-in are candidates. The highest Priority wins; among equal priorities the
  rule defined first wins. No candidate is a policy misconfiguration and is
  returned as NoApplicableRefundRuleError, never as a 0% or 100% default.

ARITHMETIC:
  percent-only:  refund = total × refund_percent / 100, retained = total − refund
  fixed:         retained = min(penalty, total),        refund = total − retained
  percentage:    retained = total × penalty / 100,      refund = total − retained

  A penalty replaces the percent-derived split entirely. The refund is clamped
  to [0, total] and rounded to cents; retained is always total − refund.

DAYS BEFORE CHECK-IN:
  floor((check-in at 00:00 UTC − now) / 24h), clamped to 0 when check-in has
  already passed.
*/

package refunds

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dcorazolla/reservas-sub002/generic"
)

// SelectRefundRule returns the rule that governs a cancellation made days
// before check-in. ok is false if no rule covers days.
func SelectRefundRule(policy Policy, days int) (Rule, bool) {
	i, ok := generic.SelectByPriority(policy.Rules,
		func(r Rule) bool { return r.Covers(days) },
		func(r Rule) int { return r.Priority },
	)
	if !ok {
		return Rule{}, false
	}
	return policy.Rules[i], true
}

// DaysBeforeCheckin returns the whole days between now and check-in.
func DaysBeforeCheckin(checkin generic.Date, now time.Time) int {
	hours := checkin.Time().Sub(now).Hours()
	days := int(math.Floor(hours / 24))
	if days < 0 {
		return 0
	}
	return days
}

// CalculateRefund previews the refund for cancelling res at now under policy.
func CalculateRefund(res Reservation, policy Policy, now time.Time) (Refund, error) {
	days := DaysBeforeCheckin(res.Range.Start, now)

	rule, ok := SelectRefundRule(policy, days)
	if !ok {
		return Refund{}, &generic.NoApplicableRefundRuleError{
			PolicyID:          policy.ID,
			DaysBeforeCheckin: days,
		}
	}

	total := res.TotalValue
	refund := splitRefund(rule, total)
	refund = generic.RoundMoney(generic.Clamp(refund, decimal.Zero, maxZero(total)))
	retained := total.Sub(refund)

	return Refund{
		ReservationID:     res.ID,
		PolicyID:          policy.ID,
		RuleID:            rule.ID,
		DaysBeforeCheckin: days,
		RefundAmount:      refund,
		RefundPercent:     effectivePercent(refund, total, rule.RefundPercent),
		RetainedAmount:    retained,
		Reason:            reason(rule, days),
	}, nil
}

// splitRefund returns the unclamped refund amount for total under rule.
func splitRefund(rule Rule, total decimal.Decimal) decimal.Decimal {
	if !rule.hasPenalty() {
		return generic.Percent(total, rule.RefundPercent)
	}

	var retained decimal.Decimal
	switch rule.PenaltyType {
	case PenaltyFixed:
		retained = decimal.Min(*rule.PenaltyAmount, total)
	case PenaltyPercentage:
		retained = generic.Percent(total, *rule.PenaltyAmount)
	default:
		return generic.Percent(total, rule.RefundPercent)
	}
	return total.Sub(retained)
}

func maxZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// effectivePercent is the refunded share of total. A zero total reports the
// rule's nominal percent.
func effectivePercent(refund, total, nominal decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return nominal
	}
	return generic.RoundMoney(refund.Mul(decimal.NewFromInt(100)).Div(total))
}

func reason(rule Rule, days int) string {
	label := rule.Label
	if label == "" {
		label = "rule " + rule.ID
	}
	return fmt.Sprintf("%s (%d days before check-in)", label, days)
}

// =============================================================================
// POLICY SELECTION
// =============================================================================

// PickPolicy returns the policy in force on day: among active policies whose
// validity covers day, the one with the latest AppliesFrom. Definition order
// breaks ties.
func PickPolicy(policies []Policy, day generic.Date) (Policy, error) {
	best := -1
	for i, p := range policies {
		if !p.AppliesOn(day) {
			continue
		}
		if best == -1 || p.AppliesFrom.After(policies[best].AppliesFrom) {
			best = i
		}
	}
	if best == -1 {
		return Policy{}, fmt.Errorf("%w: none active on %s", generic.ErrPolicyNotFound, day)
	}
	return policies[best], nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the rule definitions of a policy.
func (p Policy) Validate() error {
	hundred := decimal.NewFromInt(100)
	for i, r := range p.Rules {
		field := func(name string) string { return fmt.Sprintf("rules[%d].%s", i, name) }

		if r.DaysMin < 0 {
			return &generic.DefinitionError{Kind: "policy", Field: field("days_before_checkin_min"), Reason: "must be >= 0"}
		}
		if r.DaysMax < r.DaysMin {
			return &generic.DefinitionError{Kind: "policy", Field: field("days_before_checkin_max"), Reason: "must be >= days_before_checkin_min"}
		}
		if r.RefundPercent.IsNegative() || r.RefundPercent.GreaterThan(hundred) {
			return &generic.DefinitionError{Kind: "policy", Field: field("refund_percent"), Reason: "must be within [0, 100]"}
		}
		if !r.PenaltyType.Known() {
			return &generic.DefinitionError{Kind: "policy", Field: field("penalty_type"), Reason: fmt.Sprintf("unknown value %q", r.PenaltyType)}
		}
		if (r.PenaltyType == PenaltyNone) != (r.PenaltyAmount == nil) {
			return &generic.DefinitionError{Kind: "policy", Field: field("penalty_amount"), Reason: "must be set together with penalty_type"}
		}
		if r.PenaltyAmount != nil && r.PenaltyAmount.IsNegative() {
			return &generic.DefinitionError{Kind: "policy", Field: field("penalty_amount"), Reason: "must be >= 0"}
		}
		if r.PenaltyType == PenaltyPercentage && r.PenaltyAmount.GreaterThan(hundred) {
			return &generic.DefinitionError{Kind: "policy", Field: field("penalty_amount"), Reason: "percentage must be <= 100"}
		}
	}
	if p.AppliesTo != nil && !p.AppliesFrom.IsZero() && p.AppliesTo.Before(p.AppliesFrom) {
		return &generic.DefinitionError{Kind: "policy", Field: "applies_to", Reason: "must not precede applies_from"}
	}
	return nil
}

// Gaps returns the spans of [0, maxDays] that no rule covers. A cancellation
// falling into a gap can't be processed automatically.
func (p Policy) Gaps(maxDays int) []Window {
	var gaps []Window
	start := -1
	for day := 0; day <= maxDays; day++ {
		covered := false
		for _, r := range p.Rules {
			if r.Covers(day) {
				covered = true
				break
			}
		}
		switch {
		case !covered && start == -1:
			start = day
		case covered && start != -1:
			gaps = append(gaps, Window{Min: start, Max: day - 1})
			start = -1
		}
	}
	if start != -1 {
		gaps = append(gaps, Window{Min: start, Max: maxDays})
	}
	return gaps
}
