// Package storage persists bills, transactions and assumptions in SQLite and
// serves the per-month aggregates the forecast engine folds over.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nestegg/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateBill inserts a recurring bill and returns it with its assigned ID.
func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.RecurringBill) (core.RecurringBill, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_bills
			(user_id, name, amount_cents, cadence, bill_type, due_day, start_date, end_date, payment_method, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Amount.Cents, string(b.Cadence), string(b.Type),
		nullInt(b.DueDay), nullDate(b.StartDate), nullDate(b.EndDate), b.PaymentMethod, b.Notes,
	)
	if err != nil {
		return core.RecurringBill{}, fmt.Errorf("insert bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.RecurringBill{}, fmt.Errorf("bill id: %w", err)
	}
	b.ID = id

	slog.InfoContext(ctx, "Recurring bill saved",
		"id", b.ID,
		"user_id", b.UserID,
		"name", b.Name,
		"amount_cents", b.Amount.Cents,
		"cadence", string(b.Cadence))

	return b, nil
}

// ListBills returns a user's live bills. The forecast engine reads this as a
// point-in-time snapshot; it never writes back.
func (r *SQLiteRepository) ListBills(ctx context.Context, userID string) ([]core.RecurringBill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, amount_cents, cadence, bill_type,
		       COALESCE(due_day, 0), start_date, end_date, payment_method, notes
		FROM recurring_bills
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var bills []core.RecurringBill
	for rows.Next() {
		var (
			b                 core.RecurringBill
			cadence, billType string
			startRaw, endRaw  sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount.Cents, &cadence, &billType,
			&b.DueDay, &startRaw, &endRaw, &b.PaymentMethod, &b.Notes); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		if b.Cadence, err = core.ParseCadence(cadence); err != nil {
			return nil, fmt.Errorf("bill %d: %w", b.ID, err)
		}
		if b.Type, err = core.ParseBillType(billType); err != nil {
			return nil, fmt.Errorf("bill %d: %w", b.ID, err)
		}
		if b.StartDate, err = scanDate(startRaw); err != nil {
			return nil, fmt.Errorf("bill %d start date: %w", b.ID, err)
		}
		if b.EndDate, err = scanDate(endRaw); err != nil {
			return nil, fmt.Errorf("bill %d end date: %w", b.ID, err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// DeleteBill soft deletes a bill owned by the user.
func (r *SQLiteRepository) DeleteBill(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_bills SET deleted_at = datetime('now')
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateTransaction inserts a transaction and returns it with its ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, kind, date, amount_cents, category, counterparty, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Kind), t.Date.Format(dateLayout), t.Amount.Cents, t.Category, t.Counterparty, t.Notes,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"kind", string(t.Kind),
		"amount_cents", t.Amount.Cents,
		"date", t.Date.Format(dateLayout))

	return t, nil
}

// GetTransaction fetches one transaction by ID, deleted or not. The export
// worker uses it to resolve event payloads.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var (
		t       core.Transaction
		kind    string
		dateRaw string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, kind, date, amount_cents, category, counterparty, notes
		FROM transactions WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.UserID, &kind, &dateRaw, &t.Amount.Cents, &t.Category, &t.Counterparty, &t.Notes)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	if t.Kind, err = core.ParseTransactionKind(kind); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}
	parsed, err := time.ParseInLocation(dateLayout, dateRaw, time.UTC)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date: %w", id, err)
	}
	t.Date = core.Date{Time: parsed}
	return t, nil
}

// ListTransactions returns a user's live transactions within a month, newest
// first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, month core.MonthKey) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, date, amount_cents, category, counterparty, notes
		FROM transactions
		WHERE user_id = ? AND deleted_at IS NULL AND date >= ? AND date < ?
		ORDER BY date DESC, id DESC`,
		userID, month.FirstInstant().Format(dateLayout), month.Next().FirstInstant().Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			kind    string
			dateRaw string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &kind, &dateRaw, &t.Amount.Cents, &t.Category, &t.Counterparty, &t.Notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Kind, err = core.ParseTransactionKind(kind); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		parsed, err := time.ParseInLocation(dateLayout, dateRaw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("transaction %d date: %w", t.ID, err)
		}
		t.Date = core.Date{Time: parsed}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteTransaction soft deletes a transaction owned by the user.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = datetime('now')
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncomeByMonth sums recorded income per month over the closed range
// [first, last]. Months without income are absent from the map.
func (r *SQLiteRepository) IncomeByMonth(ctx context.Context, userID string, first, last core.MonthKey) (map[core.MonthKey]int64, error) {
	return r.sumByMonth(ctx, userID, core.KindIncome, first, last)
}

// SpendingByMonth sums recorded spending per month over the closed range
// [first, last].
func (r *SQLiteRepository) SpendingByMonth(ctx context.Context, userID string, first, last core.MonthKey) (map[core.MonthKey]int64, error) {
	return r.sumByMonth(ctx, userID, core.KindExpense, first, last)
}

func (r *SQLiteRepository) sumByMonth(ctx context.Context, userID string, kind core.TransactionKind, first, last core.MonthKey) (map[core.MonthKey]int64, error) {
	// The date range is [first-of-first, first-of-month-after-last) so a
	// transaction on the last day of the range still lands in its month.
	rows, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', date) AS month, COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND kind = ? AND deleted_at IS NULL AND date >= ? AND date < ?
		GROUP BY month`,
		userID, string(kind), first.FirstInstant().Format(dateLayout), last.Next().FirstInstant().Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s by month: %w", kind, err)
	}
	defer rows.Close()

	totals := make(map[core.MonthKey]int64)
	for rows.Next() {
		var (
			monthRaw string
			cents    int64
		)
		if err := rows.Scan(&monthRaw, &cents); err != nil {
			return nil, fmt.Errorf("scan %s total: %w", kind, err)
		}
		month, err := core.ParseMonthKey(monthRaw)
		if err != nil {
			return nil, fmt.Errorf("aggregate month %q: %w", monthRaw, err)
		}
		totals[month] = cents
	}
	return totals, rows.Err()
}

// GetAssumptions fetches a user's savings baseline. Absence is
// core.ErrNoBaseline, a precondition failure rather than a zero default.
func (r *SQLiteRepository) GetAssumptions(ctx context.Context, userID string) (core.Assumptions, error) {
	var (
		a       core.Assumptions
		asOfRaw string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, current_savings_cents, as_of_date, savings_apr, inflation_pct
		FROM assumptions WHERE user_id = ?`,
		userID,
	).Scan(&a.UserID, &a.CurrentSavings.Cents, &asOfRaw, &a.SavingsAPR, &a.InflationPct)
	if err == sql.ErrNoRows {
		return core.Assumptions{}, core.ErrNoBaseline
	}
	if err != nil {
		return core.Assumptions{}, fmt.Errorf("get assumptions: %w", err)
	}
	parsed, err := time.ParseInLocation(dateLayout, asOfRaw, time.UTC)
	if err != nil {
		return core.Assumptions{}, fmt.Errorf("assumptions as-of date: %w", err)
	}
	a.AsOf = core.Date{Time: parsed}
	return a, nil
}

// UpsertAssumptions stores or replaces the user's baseline.
func (r *SQLiteRepository) UpsertAssumptions(ctx context.Context, a core.Assumptions) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assumptions (user_id, current_savings_cents, as_of_date, savings_apr, inflation_pct, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(user_id) DO UPDATE SET
			current_savings_cents = excluded.current_savings_cents,
			as_of_date = excluded.as_of_date,
			savings_apr = excluded.savings_apr,
			inflation_pct = excluded.inflation_pct,
			updated_at = excluded.updated_at`,
		a.UserID, a.CurrentSavings.Cents, a.AsOf.Format(dateLayout), a.SavingsAPR, a.InflationPct,
	)
	if err != nil {
		return fmt.Errorf("upsert assumptions: %w", err)
	}

	slog.InfoContext(ctx, "Assumptions saved",
		"user_id", a.UserID,
		"current_savings_cents", a.CurrentSavings.Cents,
		"as_of", a.AsOf.Format(dateLayout))

	return nil
}

// MarkTransactionSynced records that the export worker mirrored a transaction.
func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced_at = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

// PendingSyncTransactions lists live transactions not yet mirrored to the
// ledger, oldest first. Backup path for lost events.
func (r *SQLiteRepository) PendingSyncTransactions(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM transactions
		WHERE synced_at IS NULL AND deleted_at IS NULL
		ORDER BY id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending sync: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullDate(d core.Date) any {
	if !d.IsSet() {
		return nil
	}
	return d.Format(dateLayout)
}

func scanDate(raw sql.NullString) (core.Date, error) {
	if !raw.Valid || raw.String == "" {
		return core.Date{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw.String, time.UTC)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}
