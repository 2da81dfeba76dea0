package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Weekly    Cadence = "weekly"
	Biweekly  Cadence = "biweekly"
	Monthly   Cadence = "monthly"
	Quarterly Cadence = "quarterly"
	Annual    Cadence = "annual"
	Once      Cadence = "once"
)

const (
	BillTypeBill         BillType = "bill"
	BillTypeSubscription BillType = "subscription"
)

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

type (
	// Cadence is the closed set of recurrence schedules a bill can have.
	// Values are only created through ParseCadence, so downstream code can
	// switch over them exhaustively.
	Cadence string

	// BillType classifies a recurring bill for display. It has no effect on
	// projection math.
	BillType string

	TransactionKind string

	// Date is a calendar date pinned to UTC. The zero value means "not set"
	// for optional fields such as a bill's activation window.
	Date struct {
		time.Time
	}

	// RecurringBill is a recurring expense template: rent, utilities,
	// subscriptions. Amount is the cost per cadence period, not per month.
	RecurringBill struct {
		ID            int64
		UserID        string
		Name          string
		Amount        Money
		Cadence       Cadence
		Type          BillType
		DueDay        int // 1-31, advisory only; 0 when unset
		StartDate     Date
		EndDate       Date
		PaymentMethod string
		Notes         string
	}

	// Transaction is a single recorded income or spending entry.
	Transaction struct {
		ID           int64
		UserID       string
		Kind         TransactionKind
		Date         Date
		Amount       Money
		Category     string
		Counterparty string
		Notes        string
	}

	// Assumptions is the per-user savings baseline a forecast starts from.
	// SavingsAPR and InflationPct are stored and surfaced but the forecast
	// fold is purely additive and does not compound either.
	Assumptions struct {
		UserID         string
		CurrentSavings Money
		AsOf           Date
		SavingsAPR     float64
		InflationPct   float64
	}

	// ForecastPoint is one month of the projected savings trajectory.
	// Derived on every request, never persisted.
	ForecastPoint struct {
		Month     MonthKey `json:"month_key"`
		NetChange int64    `json:"net_change_cents"`
		Savings   int64    `json:"savings_cents"`
	}

	// MonthSummary is the single-month dashboard view in decimal currency
	// units (cents / 100).
	MonthSummary struct {
		Month        MonthKey `json:"month"`
		Income       float64  `json:"income"`
		Spending     float64  `json:"spending"`
		Net          float64  `json:"net"`
		PlannedBills float64  `json:"planned_bills"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCadence  = errors.New("invalid cadence")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidBillType = errors.New("invalid bill type")
	ErrInvalidDueDay   = errors.New("invalid due day")
	ErrEmptyName       = errors.New("empty name")

	// ErrNoBaseline signals that a user has no assumptions record. A forecast
	// cannot be produced without a baseline; this is user-actionable, not a
	// system fault.
	ErrNoBaseline = errors.New("no savings baseline recorded")
)

// ParseCadence validates a cadence string at the boundary. Unknown values are
// a parse failure, never silently coerced to monthly.
func ParseCadence(s string) (Cadence, error) {
	switch Cadence(strings.ToLower(strings.TrimSpace(s))) {
	case Weekly:
		return Weekly, nil
	case Biweekly:
		return Biweekly, nil
	case Monthly:
		return Monthly, nil
	case Quarterly:
		return Quarterly, nil
	case Annual:
		return Annual, nil
	case Once:
		return Once, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCadence, s)
}

// ParseBillType validates a bill type string. Empty defaults to "bill".
func ParseBillType(s string) (BillType, error) {
	switch BillType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return BillTypeBill, nil
	case BillTypeBill:
		return BillTypeBill, nil
	case BillTypeSubscription:
		return BillTypeSubscription, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBillType, s)
}

// ParseTransactionKind validates a transaction kind string.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsSet reports whether the date holds a value.
func (d Date) IsSet() bool {
	return !d.IsZero()
}

// MonthOf returns the calendar month containing d.
func (d Date) MonthOf() MonthKey {
	return MonthKeyOf(d.Time)
}

func (b RecurringBill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if _, err := ParseCadence(string(b.Cadence)); err != nil {
		return err
	}
	if _, err := ParseBillType(string(b.Type)); err != nil {
		return err
	}
	if b.DueDay != 0 && (b.DueDay < 1 || b.DueDay > 31) {
		return ErrInvalidDueDay
	}
	if b.StartDate.IsSet() && b.EndDate.IsSet() && b.EndDate.Before(b.StartDate.Time) {
		return errors.New("end date must not precede start date")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseTransactionKind(string(t.Kind)); err != nil {
		return err
	}
	if len(t.Category) > 100 {
		return errors.New("category too long (max 100 characters)")
	}
	return nil
}

func (a Assumptions) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return errors.New("missing user id")
	}
	if a.AsOf.IsZero() {
		return errors.New("as-of date cannot be zero")
	}
	return nil
}
