package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	ledgermem "fintrack/internal/ledger/memory"
	"fintrack/internal/storage"
)

type fakeStore struct {
	txs      map[string]core.Transaction
	pending  []string
	ledgered []string
	failed   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{txs: map[string]core.Transaction{}}
}

func (s *fakeStore) add(tx core.Transaction) {
	s.txs[tx.ID] = tx
	s.pending = append(s.pending, tx.ID)
}

func (s *fakeStore) TransactionByID(_ context.Context, id string) (core.Transaction, error) {
	tx, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (s *fakeStore) PendingLedgerTransactions(_ context.Context, limit int) ([]storage.PendingLedgerTransaction, error) {
	var out []storage.PendingLedgerTransaction
	for _, id := range s.pending {
		if len(out) == limit {
			break
		}
		out = append(out, storage.PendingLedgerTransaction{ID: id, CreatedAt: time.Now()})
	}
	return out, nil
}

func (s *fakeStore) MarkLedgered(_ context.Context, id string) error {
	s.ledgered = append(s.ledgered, id)
	s.dropPending(id)
	return nil
}

func (s *fakeStore) MarkLedgerError(_ context.Context, id string) error {
	s.failed = append(s.failed, id)
	s.dropPending(id)
	return nil
}

func (s *fakeStore) dropPending(id string) {
	for i, p := range s.pending {
		if p == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, core.Transaction) (string, error) {
	return "", fmt.Errorf("sheets unavailable")
}

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID:       id,
		UserID:   "u1",
		Title:    "Groceries run",
		Amount:   core.Money{Cents: 4250},
		Category: "Groceries",
		Type:     core.Expense,
		Date:     core.NewDate(2025, 6, 10),
	}
}

func TestHandleEventExportsAndMarks(t *testing.T) {
	store := newFakeStore()
	store.add(sampleTx("tx-1"))
	led := ledgermem.New()
	w := NewLedgerWorker(store, led, nil, 10)

	msg := amqp.NewTransactionEventMessage(amqp.EventCreated, "tx-1", "u1")
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if rows := led.Rows(); len(rows) != 1 || rows[0].ID != "tx-1" {
		t.Fatalf("unexpected ledger rows: %+v", rows)
	}
	if len(store.ledgered) != 1 || store.ledgered[0] != "tx-1" {
		t.Fatalf("expected marked ledgered, got %v", store.ledgered)
	}
}

func TestHandleEventMissingTransactionIsNotRequeued(t *testing.T) {
	w := NewLedgerWorker(newFakeStore(), ledgermem.New(), nil, 10)

	msg := amqp.NewTransactionEventMessage(amqp.EventUpdated, "gone", "u1")
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("expected nil for vanished transaction, got %v", err)
	}
}

func TestHandleEventDeletedKeepsLedgerRow(t *testing.T) {
	store := newFakeStore()
	led := ledgermem.New()
	w := NewLedgerWorker(store, led, nil, 10)

	msg := amqp.NewTransactionEventMessage(amqp.EventDeleted, "tx-1", "u1")
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(led.Rows()) != 0 {
		t.Fatal("deleted event must not append")
	}
}

func TestHandleEventAppendFailureRequeues(t *testing.T) {
	store := newFakeStore()
	store.add(sampleTx("tx-1"))
	w := NewLedgerWorker(store, failingAppender{}, nil, 10)

	msg := amqp.NewTransactionEventMessage(amqp.EventCreated, "tx-1", "u1")
	err := w.HandleEvent(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}
	if len(store.failed) != 1 {
		t.Fatalf("expected ledger error marked, got %v", store.failed)
	}
}

func TestStartupCheckDrainsPending(t *testing.T) {
	store := newFakeStore()
	for i := range 3 {
		store.add(sampleTx(fmt.Sprintf("tx-%d", i)))
	}
	led := ledgermem.New()
	w := NewLedgerWorker(store, led, nil, 10)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if len(led.Rows()) != 3 || len(store.pending) != 0 {
		t.Fatalf("expected all pending exported: rows=%d pending=%d", len(led.Rows()), len(store.pending))
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	store := newFakeStore()
	for i := range 5 {
		store.add(sampleTx(fmt.Sprintf("tx-%d", i)))
	}
	led := ledgermem.New()
	w := NewLedgerWorker(store, led, nil, 2)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(led.Rows()) != 2 || len(store.pending) != 3 {
		t.Fatalf("expected one batch exported: rows=%d pending=%d", len(led.Rows()), len(store.pending))
	}
}
