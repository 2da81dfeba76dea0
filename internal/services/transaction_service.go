// Package services orchestrates writes across storage and the event pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"nestegg/internal/amqp"
	"nestegg/internal/core"
)

// TransactionStore is the storage surface the service needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, id int64) error
}

// EventPublisher publishes transaction change events for the export worker.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, id int64, action string) error
}

// TransactionService saves transactions locally and publishes change events.
// The publisher may be nil when no broker is configured; writes still succeed.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
}

func NewTransactionService(store TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// CreateTransaction saves a transaction and publishes a created event.
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	// Save to SQLite first (fast, reliable)
	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	// Publish async event (non-blocking for the caller's outcome)
	if err := s.publish(ctx, saved.ID, amqp.ActionCreated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event",
			"id", saved.ID, "error", err)
		// Don't fail the request - transaction is saved locally
	}

	return saved, nil
}

// DeleteTransaction soft deletes a transaction and publishes a deleted event.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.publish(ctx, id, amqp.ActionDeleted); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event",
			"id", id, "error", err)
		// Don't fail the request - transaction is deleted locally
	}

	return nil
}

func (s *TransactionService) publish(ctx context.Context, id int64, action string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping event", "action", action)
		return nil
	}
	return s.publisher.PublishTransactionEvent(ctx, id, action)
}
