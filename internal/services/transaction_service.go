package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var (
	ErrInvalidFrequency = errors.New("frequency must be one of 7, 30, or 365 days")
	ErrInvalidRange     = errors.New("start date must not be after end date")
)

// EventPublisher publishes transaction lifecycle events. *amqp.Client
// satisfies it; the service runs without one (nil) in local setups.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event, transactionID, userID string) error
}

// Invalidator drops cached reports for a user after a mutation.
type Invalidator interface {
	Invalidate(userID string)
}

// Query selects a user's transactions for listing and reporting.
// Either FrequencyDays is one of 7/30/365, or an explicit From/To pair
// is given. An empty Type means both credit and expense.
type Query struct {
	FrequencyDays int
	From, To      time.Time
	Type          core.TransactionType
}

// Filter resolves the query into a storage filter relative to now.
// A frequency of N covers [now − N days, now], both ends inclusive.
func (q Query) Filter(now time.Time) (storage.TransactionFilter, error) {
	if q.Type != "" {
		if err := q.Type.Validate(); err != nil {
			return storage.TransactionFilter{}, err
		}
	}

	if q.FrequencyDays != 0 {
		switch q.FrequencyDays {
		case 7, 30, 365:
		default:
			return storage.TransactionFilter{}, ErrInvalidFrequency
		}
		today := core.DateOf(now)
		return storage.TransactionFilter{
			From: today.AddDate(0, 0, -q.FrequencyDays),
			To:   today.Time,
			Type: q.Type,
		}, nil
	}

	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return storage.TransactionFilter{}, ErrInvalidRange
	}
	return storage.TransactionFilter{From: q.From, To: q.To, Type: q.Type}, nil
}

// TransactionService handles the transaction lifecycle. Mutations publish
// an AMQP event (best effort) and invalidate the user's cached reports.
type TransactionService struct {
	store     storage.Store
	publisher EventPublisher
	reports   Invalidator
	now       func() time.Time
}

func NewTransactionService(store storage.Store, publisher EventPublisher, reports Invalidator) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		reports:   reports,
		now:       time.Now,
	}
}

// Create validates and persists a transaction.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.store.UserByID(ctx, tx.UserID); err != nil {
		return core.Transaction{}, fmt.Errorf("resolve user: %w", err)
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.afterMutation(ctx, amqp.EventCreated, created.ID, created.UserID)
	return created, nil
}

// Update replaces the mutable fields of an existing transaction. The
// owning user never changes.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	existing, err := s.store.TransactionByID(ctx, tx.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.UserID = existing.UserID

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.afterMutation(ctx, amqp.EventUpdated, updated.ID, updated.UserID)
	return updated, nil
}

// Delete removes a transaction by id.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, err := s.store.TransactionByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.afterMutation(ctx, amqp.EventDeleted, id, existing.UserID)
	return nil
}

// List returns the user's transactions matching the query in store order.
// Returns core.ErrNotFound when the user does not exist; an empty result
// is not an error.
func (s *TransactionService) List(ctx context.Context, userID string, q Query) ([]core.Transaction, error) {
	if _, err := s.store.UserByID(ctx, userID); err != nil {
		return nil, err
	}

	filter, err := q.Filter(s.now())
	if err != nil {
		return nil, err
	}

	return s.store.ListTransactions(ctx, userID, filter)
}

// afterMutation publishes the lifecycle event and drops cached reports.
// Publish failure is logged, never surfaced: the local write already
// succeeded.
func (s *TransactionService) afterMutation(ctx context.Context, event, id, userID string) {
	if s.reports != nil {
		s.reports.Invalidate(userID)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping transaction event",
			"event", event, "transaction_id", id)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, event, id, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"event", event, "transaction_id", id, "error", err)
	}
}
