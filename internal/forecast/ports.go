package forecast

import (
	"context"

	"nestegg/internal/core"
)

// Ports for the store reads a projection needs. The storage package
// implements all of them; tests substitute in-memory fakes.
type (
	// BillReader lists a user's live recurring bills.
	BillReader interface {
		ListBills(ctx context.Context, userID string) ([]core.RecurringBill, error)
	}

	// ActualsReader sums recorded transactions per calendar month over the
	// closed range [first, last]. Months with no transactions are simply
	// absent from the returned map.
	ActualsReader interface {
		IncomeByMonth(ctx context.Context, userID string, first, last core.MonthKey) (map[core.MonthKey]int64, error)
		SpendingByMonth(ctx context.Context, userID string, first, last core.MonthKey) (map[core.MonthKey]int64, error)
	}

	// AssumptionsReader fetches a user's savings baseline. Implementations
	// return core.ErrNoBaseline when no record exists.
	AssumptionsReader interface {
		GetAssumptions(ctx context.Context, userID string) (core.Assumptions, error)
	}
)
