// Package worker exports transactions from SQLite to the external ledger
// backup. It consumes AMQP lifecycle events and additionally sweeps the
// pending set, so a lost message only delays an export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// LedgerStore is the slice of the repository the worker needs.
// *storage.SQLiteRepository satisfies it.
type LedgerStore interface {
	TransactionByID(ctx context.Context, id string) (core.Transaction, error)
	PendingLedgerTransactions(ctx context.Context, limit int) ([]storage.PendingLedgerTransaction, error)
	MarkLedgered(ctx context.Context, id string) error
	MarkLedgerError(ctx context.Context, id string) error
}

type LedgerWorker struct {
	storage   LedgerStore
	ledger    ledger.Appender
	reports   *services.ReportService
	batchSize int
}

func NewLedgerWorker(repo LedgerStore, appender ledger.Appender, reports *services.ReportService, batchSize int) *LedgerWorker {
	return &LedgerWorker{
		storage:   repo,
		ledger:    appender,
		reports:   reports,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single transaction event from AMQP. Returning
// an error causes a nack with requeue.
func (w *LedgerWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"event", msg.Event,
		"transaction_id", msg.TransactionID,
		"user_id", msg.UserID)

	switch msg.Event {
	case amqp.EventCreated, amqp.EventUpdated:
		tx, err := w.storage.TransactionByID(ctx, msg.TransactionID)
		if errors.Is(err, core.ErrNotFound) {
			// Deleted before we got to it; nothing left to export.
			slog.WarnContext(ctx, "Transaction gone before ledger export",
				"transaction_id", msg.TransactionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get transaction from storage: %w", err)
		}

		if err := w.export(ctx, tx); err != nil {
			return err
		}
	case amqp.EventDeleted:
		// The ledger is append-only history; deletions stay in it.
		slog.InfoContext(ctx, "Transaction deleted, ledger row kept",
			"transaction_id", msg.TransactionID)
	default:
		slog.WarnContext(ctx, "Unknown event kind, dropping", "event", msg.Event)
		return nil
	}

	w.logAdvisories(ctx, msg.UserID)
	return nil
}

// StartupCheck exports anything left pending from before the worker
// started, recovering from missed AMQP messages or downtime.
func (w *LedgerWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingLedgerTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending ledger exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending ledger exports on startup, processing...",
		"count", len(pending))

	w.processPending(ctx, pending)
	return nil
}

// ProcessPending exports one batch of pending transactions. Called
// periodically as a backstop for lost messages.
func (w *LedgerWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingLedgerTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending ledger exports", "count", len(pending))
	w.processPending(ctx, pending)
	return nil
}

func (w *LedgerWorker) processPending(ctx context.Context, pending []storage.PendingLedgerTransaction) {
	exported := 0
	failed := 0

	for _, p := range pending {
		tx, err := w.storage.TransactionByID(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get pending transaction", "id", p.ID, "error", err)
			if markErr := w.storage.MarkLedgerError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark ledger error", "id", p.ID, "error", markErr)
			}
			failed++
			continue
		}

		if err := w.export(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction", "id", p.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Pending ledger sweep completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
}

func (w *LedgerWorker) export(ctx context.Context, tx core.Transaction) error {
	ref, err := w.ledger.Append(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkLedgerError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark ledger error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkLedgered(ctx, tx.ID); err != nil {
		// The export itself worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as ledgered", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported to ledger",
		"id", tx.ID,
		"ledger_ref", ref,
		"title", tx.Title,
		"amount_cents", tx.Amount.Cents)

	return nil
}

// logAdvisories surfaces the user's current notifications in the worker
// log after each processed event.
func (w *LedgerWorker) logAdvisories(ctx context.Context, userID string) {
	if w.reports == nil {
		return
	}

	report, err := w.reports.Report(ctx, userID, services.Query{FrequencyDays: 30})
	if err != nil {
		slog.WarnContext(ctx, "Failed to build advisory report", "user_id", userID, "error", err)
		return
	}

	for _, n := range report.Notifications {
		slog.InfoContext(ctx, "Advisory",
			"user_id", userID,
			"severity", n.Severity,
			"title", n.Title,
			"message", n.Message)
	}
}
