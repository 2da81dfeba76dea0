package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"nestegg/internal/core"
)

// Service orchestrates the store reads behind a forecast or summary request.
// Each request is an independent, stateless read-then-fold; the aggregate
// queries are independent of one another and are issued concurrently.
type Service struct {
	bills       BillReader
	actuals     ActualsReader
	assumptions AssumptionsReader
	horizonYear int
}

func NewService(bills BillReader, actuals ActualsReader, assumptions AssumptionsReader, horizonYear int) *Service {
	return &Service{
		bills:       bills,
		actuals:     actuals,
		assumptions: assumptions,
		horizonYear: horizonYear,
	}
}

// Horizon returns the fixed terminal month of every projection: December of
// the configured horizon year. It is system-wide, not caller-configurable.
func (s *Service) Horizon() core.MonthKey {
	return core.MonthKey{Year: s.horizonYear, Month: time.December}
}

// Forecast computes the savings trajectory for a user from the requested
// start month (clamped to the baseline) through the horizon. current is the
// present UTC month and only classifies months as past vs current/future.
func (s *Service) Forecast(ctx context.Context, userID string, start, current core.MonthKey) ([]core.ForecastPoint, error) {
	a, err := s.assumptions.GetAssumptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("assumptions for %s: %w", userID, err)
	}

	horizon := s.Horizon()
	from := EffectiveStart(start, a)
	if from.After(horizon) {
		return []core.ForecastPoint{}, nil
	}

	var (
		bills    []core.RecurringBill
		income   map[core.MonthKey]int64
		spending map[core.MonthKey]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bills, err = s.bills.ListBills(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		income, err = s.actuals.IncomeByMonth(gctx, userID, from, horizon)
		return err
	})
	g.Go(func() error {
		var err error
		spending, err = s.actuals.SpendingByMonth(gctx, userID, from, horizon)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load forecast inputs: %w", err)
	}

	plan, err := PlanRange(bills, from, horizon)
	if err != nil {
		return nil, fmt.Errorf("plan bills: %w", err)
	}

	points := Build(Inputs{
		Assumptions: a,
		Income:      income,
		Spending:    spending,
		Planned:     plan,
	}, from, current, horizon)

	slog.InfoContext(ctx, "Forecast computed",
		"user_id", userID,
		"from", from.String(),
		"horizon", horizon.String(),
		"months", len(points),
		"bills", len(bills))

	return points, nil
}

// MonthSummary computes the income/spending/net tile for one month. Unlike
// Forecast it does not require an assumptions record.
func (s *Service) MonthSummary(ctx context.Context, userID string, month, current core.MonthKey) (core.MonthSummary, error) {
	var (
		bills    []core.RecurringBill
		income   map[core.MonthKey]int64
		spending map[core.MonthKey]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bills, err = s.bills.ListBills(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		income, err = s.actuals.IncomeByMonth(gctx, userID, month, month)
		return err
	})
	g.Go(func() error {
		var err error
		spending, err = s.actuals.SpendingByMonth(gctx, userID, month, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthSummary{}, fmt.Errorf("load summary inputs: %w", err)
	}

	plan, err := PlanRange(bills, month, month)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("plan bills: %w", err)
	}

	return Summarize(month, current, income[month], spending[month], plan[month]), nil
}
