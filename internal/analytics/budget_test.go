package analytics

import (
	"errors"
	"testing"

	"fintrack/internal/core"
)

func budget(category string, cents int64) core.Budget {
	return core.Budget{UserID: "u1", Category: category, Amount: core.Money{Cents: cents}}
}

func evaluateOne(t *testing.T, spentCents, budgetCents int64) CategoryBudget {
	t.Helper()
	totals := []CategoryTotal{{Category: "Groceries", Total: core.Money{Cents: spentCents}}}
	out, errs := EvaluateBudgets(totals, []core.Budget{budget("Groceries", budgetCents)})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(out) != 1 {
		t.Fatalf("got %d entries, want 1", len(out))
	}
	return out[0]
}

func TestBudgetStatusBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		spent    int64 // of a 100.00 budget
		status   BudgetStatus
		exceeded bool
	}{
		{"49.99% is ok", 4999, StatusOK, false},
		{"50% is warning", 5000, StatusWarning, false},
		{"79.99% is warning", 7999, StatusWarning, false},
		{"80% is over", 8000, StatusOver, false},
		{"99.99% is over", 9999, StatusOver, false},
		{"100% is over and exceeded", 10000, StatusOver, true},
		{"150% is over and exceeded", 15000, StatusOver, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cb := evaluateOne(t, tc.spent, 10000)
			if cb.Status != tc.status || cb.Exceeded != tc.exceeded {
				t.Fatalf("status=%s exceeded=%v, want %s/%v (percent %.2f)",
					cb.Status, cb.Exceeded, tc.status, tc.exceeded, cb.Percent)
			}
		})
	}
}

func TestBudgetScenario(t *testing.T) {
	// Groceries 500 spent of a 1000 budget: exactly 50%, warning.
	cb := evaluateOne(t, 50000, 100000)
	if cb.Spent.Cents != 50000 || cb.Percent != 50 || cb.Status != StatusWarning {
		t.Fatalf("unexpected evaluation %+v", cb)
	}
}

func TestUnbudgetedCategoriesOmitted(t *testing.T) {
	totals := []CategoryTotal{
		{Category: "Groceries", Total: core.Money{Cents: 1000}},
		{Category: "Rent", Total: core.Money{Cents: 90000}},
	}
	out, errs := EvaluateBudgets(totals, []core.Budget{budget("Groceries", 10000)})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(out) != 1 || out[0].Category != "Groceries" {
		t.Fatalf("Rent has no budget and must be omitted, got %+v", out)
	}
}

func TestZeroSpendBudget(t *testing.T) {
	out, errs := EvaluateBudgets(nil, []core.Budget{budget("Travel", 50000)})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(out) != 1 || out[0].Spent.Cents != 0 || out[0].Status != StatusOK || out[0].Percent != 0 {
		t.Fatalf("unexpected evaluation %+v", out)
	}
}

func TestInvalidBudgetPartialFailure(t *testing.T) {
	totals := []CategoryTotal{{Category: "Groceries", Total: core.Money{Cents: 1000}}}
	out, errs := EvaluateBudgets(totals, []core.Budget{
		budget("Rent", 0), // invalid
		budget("Groceries", 10000),
	})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !errors.Is(errs[0], core.ErrInvalidBudget) {
		t.Fatalf("error %v does not unwrap to ErrInvalidBudget", errs[0])
	}
	var ib *InvalidBudgetError
	if !errors.As(errs[0], &ib) || ib.Category != "Rent" {
		t.Fatalf("error does not name the offending category: %v", errs[0])
	}
	if len(out) != 1 || out[0].Category != "Groceries" {
		t.Fatalf("valid entries must still be evaluated, got %+v", out)
	}
}
