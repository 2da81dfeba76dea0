// Package worker mirrors transaction writes to an external ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"nestegg/internal/amqp"
	"nestegg/internal/core"
	"nestegg/internal/export"
)

// TransactionStore is the storage surface the export worker needs.
type TransactionStore interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	MarkTransactionSynced(ctx context.Context, id int64) error
	PendingSyncTransactions(ctx context.Context, limit int) ([]int64, error)
}

// ExportWorker appends created transactions to the external ledger.
// The ledger is append-only: deleted events are acknowledged and skipped.
type ExportWorker struct {
	storage   TransactionStore
	ledger    export.LedgerAppender
	batchSize int
}

func NewExportWorker(storage TransactionStore, ledger export.LedgerAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single transaction event from AMQP
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", ev.ID,
		"action", ev.Action)

	if ev.Action == amqp.ActionDeleted {
		// Append-only ledger: nothing to remove remotely
		slog.InfoContext(ctx, "Skipping deleted event, ledger is append-only", "id", ev.ID)
		return nil
	}
	if ev.Action != amqp.ActionCreated {
		return fmt.Errorf("unknown action %q", ev.Action)
	}

	return w.exportTransaction(ctx, ev.ID)
}

// ProcessPending exports any transactions that haven't been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize)
}

// StartupSyncCheck exports pending transactions at worker startup.
// This is useful to recover from missed AMQP messages or worker downtime.
func (w *ExportWorker) StartupSyncCheck(ctx context.Context) error {
	// Larger batch for startup recovery
	return w.processPendingBatch(ctx, w.batchSize*5)
}

func (w *ExportWorker) processPendingBatch(ctx context.Context, limit int) error {
	pending, err := w.storage.PendingSyncTransactions(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	exported := 0
	failed := 0
	for _, id := range pending {
		if err := w.exportTransaction(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", id, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Pending export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id int64) error {
	if w.ledger == nil {
		slog.WarnContext(ctx, "No ledger configured, skipping export", "id", id)
		return nil
	}

	t, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.ledger.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkTransactionSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// Don't return error here - the export actually worked
	}

	slog.InfoContext(ctx, "Exported transaction to ledger",
		"id", id,
		"ledger_ref", ref,
		"amount_cents", t.Amount.Cents)

	return nil
}
