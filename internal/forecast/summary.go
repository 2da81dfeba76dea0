package forecast

import (
	"nestegg/internal/core"
)

// Summarize produces the single-month dashboard figures in decimal units.
// The spend-selection rule is the same one the full projection applies, with
// no balance accumulation: a summary needs no baseline.
func Summarize(month, current core.MonthKey, income, spending, planned int64) core.MonthSummary {
	spend := SpendFor(month, current, spending, planned)
	return core.MonthSummary{
		Month:        month,
		Income:       core.Money{Cents: income}.Decimal(),
		Spending:     core.Money{Cents: spend}.Decimal(),
		Net:          core.Money{Cents: income - spend}.Decimal(),
		PlannedBills: core.Money{Cents: planned}.Decimal(),
	}
}
