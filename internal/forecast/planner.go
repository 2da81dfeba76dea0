package forecast

import (
	"errors"

	"nestegg/internal/core"
)

// ErrInvalidRange is returned when a plan is requested for a range whose
// first month follows its last.
var ErrInvalidRange = errors.New("first month must not follow last month")

// PlanRange amortizes every bill across the closed month range [first, last]
// and returns the total planned cents per month. The result carries one entry
// for every month in range, zero included: a missing key means the month was
// never computed, not that nothing is planned.
func PlanRange(bills []core.RecurringBill, first, last core.MonthKey) (map[core.MonthKey]int64, error) {
	if first.After(last) {
		return nil, ErrInvalidRange
	}

	plan := make(map[core.MonthKey]int64)
	for m := first; !m.After(last); m = m.Next() {
		var total int64
		for _, b := range bills {
			total += MonthlyAmount(b, m)
		}
		plan[m] = total
	}
	return plan, nil
}
