// Package forecast implements the savings projection engine: amortizing
// recurring bills onto a monthly grid, merging actual and planned spend, and
// folding the result into a month-by-month savings trajectory.
package forecast

import (
	"nestegg/internal/core"
)

// MonthlyAmount returns the cents a recurring bill contributes to a target
// month. A bill outside its activation window contributes zero regardless of
// cadence. Rounding is half-up, independently per bill per month; fractional
// remainders are not carried across months.
func MonthlyAmount(b core.RecurringBill, month core.MonthKey) int64 {
	if !activeIn(b, month) {
		return 0
	}

	amount := b.Amount.Cents
	switch b.Cadence {
	case core.Monthly:
		return amount
	case core.Weekly:
		return roundDiv(amount*52, 12)
	case core.Biweekly:
		return roundDiv(amount*26, 12)
	case core.Quarterly:
		return roundDiv(amount, 3)
	case core.Annual:
		return roundDiv(amount, 12)
	case core.Once:
		// A one-off lands entirely in its start month. Without a start date
		// there is no month to land in.
		if b.StartDate.IsSet() && b.StartDate.MonthOf() == month {
			return amount
		}
		return 0
	}
	// Unreachable for bills built through ParseCadence.
	return 0
}

// activeIn reports whether the bill's activation window overlaps the month.
// Both window edges are inclusive; an unset edge leaves that side open.
func activeIn(b core.RecurringBill, month core.MonthKey) bool {
	if b.StartDate.IsSet() && b.StartDate.After(month.LastInstant()) {
		return false
	}
	if b.EndDate.IsSet() && b.EndDate.Before(month.FirstInstant()) {
		return false
	}
	return true
}

// roundDiv divides non-negative n by d with half-up rounding.
func roundDiv(n, d int64) int64 {
	return (n + d/2) / d
}
