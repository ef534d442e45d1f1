package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func newTestReportService(store *memory.Store) *ReportService {
	s := NewReportService(store, cache.NewLRU[Report](16, time.Minute))
	s.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestReportComposesSummaryBudgetsAndNotifications(t *testing.T) {
	store := memory.New()
	s := newTestReportService(store)
	ctx := context.Background()
	u := seedUser(t, store)

	seed := []core.Transaction{
		{UserID: u.ID, Title: "Salary", Amount: core.Money{Cents: 400000}, Category: "Salary", Type: core.Credit, Date: core.NewDate(2025, 6, 1)},
		{UserID: u.ID, Title: "Rent", Amount: core.Money{Cents: 100000}, Category: "Rent", Type: core.Expense, Date: core.NewDate(2025, 6, 2)},
		{UserID: u.ID, Title: "Groceries", Amount: core.Money{Cents: 50000}, Category: "Groceries", Type: core.Expense, Date: core.NewDate(2025, 6, 3)},
	}
	for _, tx := range seed {
		if _, err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := store.UpsertBudget(ctx, core.Budget{UserID: u.ID, Category: "Groceries", Amount: core.Money{Cents: 100000}}); err != nil {
		t.Fatalf("seed budget: %v", err)
	}

	r, err := s.Report(ctx, u.ID, Query{FrequencyDays: 30})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if r.Summary.TotalIncome.Cents != 400000 || r.Summary.TotalExpenses.Cents != 150000 {
		t.Fatalf("unexpected summary: %+v", r.Summary)
	}
	if r.Summary.TopCategory != "Rent" {
		t.Fatalf("unexpected top category %q", r.Summary.TopCategory)
	}
	if len(r.Budgets) != 1 || r.Budgets[0].Status != analytics.StatusWarning {
		t.Fatalf("unexpected budgets: %+v", r.Budgets)
	}
	if len(r.InvalidBudgets) != 0 {
		t.Fatalf("unexpected invalid budgets: %v", r.InvalidBudgets)
	}
}

func TestReportUnknownUser(t *testing.T) {
	s := newTestReportService(memory.New())
	if _, err := s.Report(context.Background(), "ghost", Query{FrequencyDays: 7}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportMemoizationAndInvalidation(t *testing.T) {
	store := memory.New()
	s := newTestReportService(store)
	ctx := context.Background()
	u := seedUser(t, store)

	if _, err := store.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, Title: "Rent", Amount: core.Money{Cents: 100000},
		Category: "Rent", Type: core.Expense, Date: core.NewDate(2025, 6, 2),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first, err := s.Report(ctx, u.ID, Query{FrequencyDays: 30})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	// A store write the service does not know about is invisible while
	// the cached report lives.
	if _, err := store.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, Title: "Groceries", Amount: core.Money{Cents: 5000},
		Category: "Groceries", Type: core.Expense, Date: core.NewDate(2025, 6, 3),
	}); err != nil {
		t.Fatalf("second tx: %v", err)
	}

	cached, err := s.Report(ctx, u.ID, Query{FrequencyDays: 30})
	if err != nil {
		t.Fatalf("cached report: %v", err)
	}
	if cached.Summary.TotalExpenses != first.Summary.TotalExpenses {
		t.Fatal("expected memoized report")
	}

	s.Invalidate(u.ID)

	fresh, err := s.Report(ctx, u.ID, Query{FrequencyDays: 30})
	if err != nil {
		t.Fatalf("fresh report: %v", err)
	}
	if fresh.Summary.TotalExpenses.Cents != 105000 {
		t.Fatalf("expected recomputed report, got %+v", fresh.Summary.TotalExpenses)
	}
}

func TestReportFlagsInvalidBudgets(t *testing.T) {
	store := memory.New()
	s := newTestReportService(store)
	ctx := context.Background()
	u := seedUser(t, store)

	// Bypasses BudgetService validation on purpose: the evaluator must
	// still cope with bad stored data.
	if err := store.UpsertBudget(ctx, core.Budget{UserID: u.ID, Category: "Groceries", Amount: core.Money{Cents: 0}}); err != nil {
		t.Fatalf("seed budget: %v", err)
	}
	if err := store.UpsertBudget(ctx, core.Budget{UserID: u.ID, Category: "Rent", Amount: core.Money{Cents: 100000}}); err != nil {
		t.Fatalf("seed budget: %v", err)
	}
	if _, err := store.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, Title: "Rent", Amount: core.Money{Cents: 40000},
		Category: "Rent", Type: core.Expense, Date: core.NewDate(2025, 6, 2),
	}); err != nil {
		t.Fatalf("seed tx: %v", err)
	}

	r, err := s.Report(ctx, u.ID, Query{FrequencyDays: 30})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(r.InvalidBudgets) != 1 || r.InvalidBudgets[0] != "Groceries" {
		t.Fatalf("unexpected invalid budgets: %v", r.InvalidBudgets)
	}
	if len(r.Budgets) != 1 || r.Budgets[0].Category != "Rent" {
		t.Fatalf("expected valid budget still evaluated: %+v", r.Budgets)
	}
}
