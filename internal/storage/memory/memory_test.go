package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func TestMemoryStoreUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, core.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h"})
	if err != nil || u.ID == "" {
		t.Fatalf("unexpected create: u=%+v err=%v", u, err)
	}

	if _, err := s.CreateUser(ctx, core.User{Name: "Ada2", Email: "ada@example.com"}); !errors.Is(err, core.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := s.UserByEmail(ctx, "ada@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("unexpected lookup: got=%+v err=%v", got, err)
	}

	if _, err := s.UserByID(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err = s.SetAvatar(ctx, u.ID, "data:image/png;base64,xyz")
	if err != nil || !got.AvatarSet || got.Avatar == "" {
		t.Fatalf("unexpected avatar: got=%+v err=%v", got, err)
	}
}

func TestMemoryStoreTransactionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx, err := s.CreateTransaction(ctx, core.Transaction{
		UserID:   "u1",
		Title:    "Groceries run",
		Amount:   core.Money{Cents: 4250},
		Category: "Groceries",
		Type:     core.Expense,
		Date:     core.NewDate(2025, 6, 10),
	})
	if err != nil || tx.ID == "" {
		t.Fatalf("unexpected create: tx=%+v err=%v", tx, err)
	}

	tx.Title = "Weekly groceries"
	updated, err := s.UpdateTransaction(ctx, tx)
	if err != nil || updated.Title != "Weekly groceries" {
		t.Fatalf("unexpected update: tx=%+v err=%v", updated, err)
	}

	if err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStoreListFiltersByUserWindowAndType(t *testing.T) {
	s := New()
	ctx := context.Background()

	seed := []core.Transaction{
		{UserID: "u1", Title: "Rent", Amount: core.Money{Cents: 100000}, Category: "Rent", Type: core.Expense, Date: core.NewDate(2025, 6, 1)},
		{UserID: "u1", Title: "Salary", Amount: core.Money{Cents: 300000}, Category: "Salary", Type: core.Credit, Date: core.NewDate(2025, 6, 2)},
		{UserID: "u1", Title: "Old", Amount: core.Money{Cents: 500}, Category: "Other", Type: core.Expense, Date: core.NewDate(2025, 1, 2)},
		{UserID: "u2", Title: "Not mine", Amount: core.Money{Cents: 900}, Category: "Other", Type: core.Expense, Date: core.NewDate(2025, 6, 1)},
	}
	for _, tx := range seed {
		if _, err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := s.ListTransactions(ctx, "u1", storage.TransactionFilter{
		From: core.NewDate(2025, 6, 1).Time,
		To:   core.NewDate(2025, 6, 30).Time,
	})
	if err != nil || len(got) != 2 {
		t.Fatalf("unexpected window list: got=%d err=%v", len(got), err)
	}
	if got[0].Title != "Rent" || got[1].Title != "Salary" {
		t.Fatalf("expected insertion order, got %v %v", got[0].Title, got[1].Title)
	}

	expensesOnly, err := s.ListTransactions(ctx, "u1", storage.TransactionFilter{Type: core.Expense})
	if err != nil || len(expensesOnly) != 2 {
		t.Fatalf("unexpected type list: got=%d err=%v", len(expensesOnly), err)
	}

	none, err := s.ListTransactions(ctx, "nobody", storage.TransactionFilter{})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list for unknown user, got=%d err=%v", len(none), err)
	}
}

func TestMemoryStoreBudgets(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.UpsertBudget(ctx, core.Budget{UserID: "u1", Category: "Groceries", Amount: core.Money{Cents: 50000}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertBudget(ctx, core.Budget{UserID: "u1", Category: "Groceries", Amount: core.Money{Cents: 60000}}); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}
	if err := s.UpsertBudget(ctx, core.Budget{UserID: "u1", Category: "Entertainment", Amount: core.Money{Cents: 10000}}); err != nil {
		t.Fatalf("upsert second: %v", err)
	}

	budgets, err := s.ListBudgets(ctx, "u1")
	if err != nil || len(budgets) != 2 {
		t.Fatalf("unexpected list: got=%d err=%v", len(budgets), err)
	}
	if budgets[0].Category != "Entertainment" || budgets[1].Amount.Cents != 60000 {
		t.Fatalf("unexpected budgets: %+v", budgets)
	}

	if err := s.DeleteBudget(ctx, "u1", "Groceries"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteBudget(ctx, "u1", "Groceries"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
