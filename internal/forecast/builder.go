package forecast

import (
	"nestegg/internal/core"
)

// Inputs bundles everything a projection folds over. The maps default absent
// months to zero cents; Planned is expected to be dense over the projected
// range (see PlanRange).
type Inputs struct {
	Assumptions core.Assumptions
	Income      map[core.MonthKey]int64
	Spending    map[core.MonthKey]int64
	Planned     map[core.MonthKey]int64
}

// EffectiveStart clamps a requested start month to the baseline's as-of
// month. Savings before the baseline are undefined relative to it, so the
// projection never starts earlier.
func EffectiveStart(requested core.MonthKey, a core.Assumptions) core.MonthKey {
	return core.LaterMonth(requested, a.AsOf.MonthOf())
}

// SpendFor selects the spend figure for one month. Months strictly before
// current use recorded spending alone; the current month and later use the
// greater of recorded and planned, so an upcoming bill is never undercounted
// and an already-paid one is never counted twice.
func SpendFor(month, current core.MonthKey, actual, planned int64) int64 {
	if month.Before(current) {
		return actual
	}
	if planned > actual {
		return planned
	}
	return actual
}

// Build walks months from the clamped start through horizon inclusive,
// accumulating the savings balance from the baseline. The fold is strictly
// chronological: each point's savings carries the previous months' net.
// A start beyond the horizon yields an empty, non-nil sequence.
//
// current is the caller's notion of the present UTC month. It is an explicit
// parameter so the projection is a pure function of its inputs.
func Build(in Inputs, start, current, horizon core.MonthKey) []core.ForecastPoint {
	from := EffectiveStart(start, in.Assumptions)

	points := make([]core.ForecastPoint, 0)
	running := in.Assumptions.CurrentSavings.Cents
	for m := from; !m.After(horizon); m = m.Next() {
		income := in.Income[m]
		spend := SpendFor(m, current, in.Spending[m], in.Planned[m])
		net := income - spend
		running += net
		points = append(points, core.ForecastPoint{
			Month:     m,
			NetChange: net,
			Savings:   running,
		})
	}
	return points
}
