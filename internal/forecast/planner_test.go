package forecast

import (
	"errors"
	"testing"
	"time"

	"nestegg/internal/core"
)

func TestPlanRangeDenseOverRange(t *testing.T) {
	bills := []core.RecurringBill{
		{Name: "rent", Amount: core.Money{Cents: 120000}, Cadence: core.Monthly},
		{Name: "insurance", Amount: core.Money{Cents: 1200}, Cadence: core.Quarterly},
	}

	first, last := mk(2025, time.January), mk(2025, time.June)
	plan, err := PlanRange(bills, first, last)
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}

	if len(plan) != 6 {
		t.Fatalf("expected one entry per month, got %d", len(plan))
	}
	for m := first; !m.After(last); m = m.Next() {
		got, ok := plan[m]
		if !ok {
			t.Fatalf("missing entry for %v", m)
		}
		if got != 120000+400 {
			t.Fatalf("%v: got %d, want %d", m, got, 120400)
		}
	}
}

func TestPlanRangeExplicitZeros(t *testing.T) {
	// No bills at all still yields an entry per month, each zero.
	plan, err := PlanRange(nil, mk(2025, time.March), mk(2025, time.May))
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("got %d entries, want 3", len(plan))
	}
	for m, v := range plan {
		if v != 0 {
			t.Fatalf("%v: got %d, want 0", m, v)
		}
	}
}

func TestPlanRangeSingleMonth(t *testing.T) {
	bills := []core.RecurringBill{
		{Name: "streaming", Amount: core.Money{Cents: 1499}, Cadence: core.Monthly, Type: core.BillTypeSubscription},
	}
	m := mk(2025, time.August)
	plan, err := PlanRange(bills, m, m)
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}
	if len(plan) != 1 || plan[m] != 1499 {
		t.Fatalf("got %v", plan)
	}
}

func TestPlanRangeRejectsInvertedRange(t *testing.T) {
	_, err := PlanRange(nil, mk(2025, time.June), mk(2025, time.January))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
}

func TestPlanRangeYearBoundary(t *testing.T) {
	bills := []core.RecurringBill{
		{Name: "rent", Amount: core.Money{Cents: 90000}, Cadence: core.Monthly},
	}
	plan, err := PlanRange(bills, mk(2024, time.November), mk(2025, time.February))
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}
	if len(plan) != 4 {
		t.Fatalf("got %d entries, want 4", len(plan))
	}
	if plan[mk(2025, time.January)] != 90000 {
		t.Fatalf("january missing after year wrap: %v", plan)
	}
}
