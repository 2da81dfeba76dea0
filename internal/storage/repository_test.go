package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nestegg/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nestegg.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestBillRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateBill(ctx, core.RecurringBill{
		UserID:    "u1",
		Name:      "Rent",
		Amount:    core.Money{Cents: 120000},
		Cadence:   core.Monthly,
		Type:      core.BillTypeBill,
		DueDay:    1,
		StartDate: core.NewDate(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	bills, err := repo.ListBills(ctx, "u1")
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("got %d bills, want 1", len(bills))
	}
	got := bills[0]
	if got.Name != "Rent" || got.Amount.Cents != 120000 || got.Cadence != core.Monthly {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.StartDate.IsSet() || got.StartDate.MonthOf() != (core.MonthKey{Year: 2025, Month: time.January}) {
		t.Fatalf("start date mismatch: %+v", got.StartDate)
	}
	if got.EndDate.IsSet() {
		t.Fatal("end date should be unset")
	}

	// Other users see nothing.
	other, err := repo.ListBills(ctx, "u2")
	if err != nil {
		t.Fatalf("ListBills u2: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("got %d bills for u2, want 0", len(other))
	}
}

func TestDeleteBillScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b, err := repo.CreateBill(ctx, core.RecurringBill{
		UserID: "u1", Name: "Gym", Amount: core.Money{Cents: 3000}, Cadence: core.Monthly, Type: core.BillTypeBill,
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	if err := repo.DeleteBill(ctx, "intruder", b.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("foreign delete: got %v, want ErrNoRows", err)
	}
	if err := repo.DeleteBill(ctx, "u1", b.ID); err != nil {
		t.Fatalf("DeleteBill: %v", err)
	}
	if err := repo.DeleteBill(ctx, "u1", b.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("double delete: got %v, want ErrNoRows", err)
	}

	bills, err := repo.ListBills(ctx, "u1")
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 0 {
		t.Fatalf("deleted bill still listed: %+v", bills)
	}
}

func TestAggregatesGroupByMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{UserID: "u1", Kind: core.KindIncome, Date: core.NewDate(2025, 1, 15), Amount: core.Money{Cents: 2000}},
		{UserID: "u1", Kind: core.KindIncome, Date: core.NewDate(2025, 1, 31), Amount: core.Money{Cents: 500}},
		{UserID: "u1", Kind: core.KindExpense, Date: core.NewDate(2025, 1, 10), Amount: core.Money{Cents: 1500}},
		{UserID: "u1", Kind: core.KindExpense, Date: core.NewDate(2025, 2, 1), Amount: core.Money{Cents: 700}},
		// Outside the queried range.
		{UserID: "u1", Kind: core.KindExpense, Date: core.NewDate(2025, 3, 1), Amount: core.Money{Cents: 9999}},
		// Another user, must not leak.
		{UserID: "u2", Kind: core.KindExpense, Date: core.NewDate(2025, 1, 20), Amount: core.Money{Cents: 12345}},
	}
	for _, tx := range seed {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	jan := core.MonthKey{Year: 2025, Month: time.January}
	feb := core.MonthKey{Year: 2025, Month: time.February}

	income, err := repo.IncomeByMonth(ctx, "u1", jan, feb)
	if err != nil {
		t.Fatalf("IncomeByMonth: %v", err)
	}
	if income[jan] != 2500 {
		t.Fatalf("january income %d, want 2500", income[jan])
	}
	if _, ok := income[feb]; ok {
		t.Fatal("february has no income, key must be absent")
	}

	spending, err := repo.SpendingByMonth(ctx, "u1", jan, feb)
	if err != nil {
		t.Fatalf("SpendingByMonth: %v", err)
	}
	if spending[jan] != 1500 || spending[feb] != 700 {
		t.Fatalf("spending %v", spending)
	}
	if _, ok := spending[core.MonthKey{Year: 2025, Month: time.March}]; ok {
		t.Fatal("march is outside the range")
	}
}

func TestSoftDeletedTransactionsExcludedFromAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: "u1", Kind: core.KindExpense, Date: core.NewDate(2025, 1, 10), Amount: core.Money{Cents: 800},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "u1", tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	jan := core.MonthKey{Year: 2025, Month: time.January}
	spending, err := repo.SpendingByMonth(ctx, "u1", jan, jan)
	if err != nil {
		t.Fatalf("SpendingByMonth: %v", err)
	}
	if len(spending) != 0 {
		t.Fatalf("deleted transaction leaked into aggregate: %v", spending)
	}
}

func TestListTransactionsBoundedToMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, tx := range []core.Transaction{
		{UserID: "u1", Kind: core.KindExpense, Date: core.NewDate(2025, 1, 31), Amount: core.Money{Cents: 100}},
		{UserID: "u1", Kind: core.KindExpense, Date: core.NewDate(2025, 2, 1), Amount: core.Money{Cents: 200}},
	} {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	jan := core.MonthKey{Year: 2025, Month: time.January}
	txs, err := repo.ListTransactions(ctx, "u1", jan)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Amount.Cents != 100 {
		t.Fatalf("got %+v, want only the january transaction", txs)
	}
}

func TestAssumptionsUpsertAndAbsence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetAssumptions(ctx, "u1")
	if !errors.Is(err, core.ErrNoBaseline) {
		t.Fatalf("got %v, want ErrNoBaseline", err)
	}

	a := core.Assumptions{
		UserID:         "u1",
		CurrentSavings: core.Money{Cents: 250000},
		AsOf:           core.NewDate(2025, 1, 1),
		SavingsAPR:     3.5,
		InflationPct:   2.0,
	}
	if err := repo.UpsertAssumptions(ctx, a); err != nil {
		t.Fatalf("UpsertAssumptions: %v", err)
	}

	got, err := repo.GetAssumptions(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAssumptions: %v", err)
	}
	if got.CurrentSavings.Cents != 250000 || got.SavingsAPR != 3.5 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.AsOf.MonthOf() != (core.MonthKey{Year: 2025, Month: time.January}) {
		t.Fatalf("as-of mismatch: %v", got.AsOf)
	}

	// Second upsert replaces.
	a.CurrentSavings = core.Money{Cents: 300000}
	if err := repo.UpsertAssumptions(ctx, a); err != nil {
		t.Fatalf("UpsertAssumptions update: %v", err)
	}
	got, err = repo.GetAssumptions(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAssumptions: %v", err)
	}
	if got.CurrentSavings.Cents != 300000 {
		t.Fatalf("baseline not replaced: %+v", got)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: "u1", Kind: core.KindIncome, Date: core.NewDate(2025, 1, 2), Amount: core.Money{Cents: 4200},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	pending, err := repo.PendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSyncTransactions: %v", err)
	}
	if len(pending) != 1 || pending[0] != tx.ID {
		t.Fatalf("pending %v, want [%d]", pending, tx.ID)
	}

	if err := repo.MarkTransactionSynced(ctx, tx.ID); err != nil {
		t.Fatalf("MarkTransactionSynced: %v", err)
	}
	pending, err = repo.PendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after sync: %v", pending)
	}
}
