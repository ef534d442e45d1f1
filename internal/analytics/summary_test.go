package analytics

import (
	"math/rand"
	"testing"
	"time"

	"fintrack/internal/core"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func tx(typ core.TransactionType, category string, cents int64, date core.Date) core.Transaction {
	return core.Transaction{
		ID:       category + date.Format("2006-01-02"),
		UserID:   "u1",
		Title:    category,
		Amount:   core.Money{Cents: cents},
		Category: category,
		Type:     typ,
		Date:     date,
	}
}

func TestSummarizeScenario(t *testing.T) {
	today := core.DateOf(testNow)
	txs := []core.Transaction{
		tx(core.Expense, "Groceries", 50000, today),
		tx(core.Expense, "Rent", 400000, today),
		tx(core.Credit, "Salary", 1000000, today),
	}

	s := Summarize(txs, testNow)

	if s.TotalIncome.Cents != 1000000 {
		t.Errorf("TotalIncome = %d, want 1000000", s.TotalIncome.Cents)
	}
	if s.TotalExpenses.Cents != 450000 {
		t.Errorf("TotalExpenses = %d, want 450000", s.TotalExpenses.Cents)
	}
	if s.Balance.Cents != 550000 {
		t.Errorf("Balance = %d, want 550000", s.Balance.Cents)
	}
	if len(s.CategoryTotals) != 2 {
		t.Fatalf("CategoryTotals has %d entries, want 2", len(s.CategoryTotals))
	}
	if s.CategoryTotals[0].Category != "Groceries" || s.CategoryTotals[0].Total.Cents != 50000 {
		t.Errorf("unexpected first total %+v", s.CategoryTotals[0])
	}
	if s.CategoryTotals[1].Category != "Rent" || s.CategoryTotals[1].Total.Cents != 400000 {
		t.Errorf("unexpected second total %+v", s.CategoryTotals[1])
	}
	if s.TopCategory != "Rent" {
		t.Errorf("TopCategory = %q, want Rent", s.TopCategory)
	}
	if s.ThisMonthSpending.Cents != 450000 {
		t.Errorf("ThisMonthSpending = %d, want 450000", s.ThisMonthSpending.Cents)
	}
}

func TestBalanceInvariantUnderReordering(t *testing.T) {
	today := core.DateOf(testNow)
	txs := []core.Transaction{
		tx(core.Credit, "Salary", 123456, today),
		tx(core.Expense, "Groceries", 999, today),
		tx(core.Expense, "Travel", 54321, today),
		tx(core.Credit, "Business", 777, today),
		tx(core.Expense, "Rent", 100000, today),
	}

	want := Summarize(txs, testNow)
	if want.Balance.Cents != want.TotalIncome.Cents-want.TotalExpenses.Cents {
		t.Fatalf("balance broken: %d != %d - %d", want.Balance.Cents, want.TotalIncome.Cents, want.TotalExpenses.Cents)
	}

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]core.Transaction(nil), txs...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Summarize(shuffled, testNow)
		if got.Balance != want.Balance || got.TotalIncome != want.TotalIncome || got.TotalExpenses != want.TotalExpenses {
			t.Fatalf("totals changed under reordering: %+v vs %+v", got, want)
		}
	}
}

func TestCategoryTotalsSumToTotalExpenses(t *testing.T) {
	today := core.DateOf(testNow)
	txs := []core.Transaction{
		tx(core.Expense, "Groceries", 1500, today),
		tx(core.Expense, "Groceries", 2500, today),
		tx(core.Expense, "Rent", 90000, today),
		tx(core.Credit, "Salary", 500000, today),
		tx(core.Expense, "Travel", 12345, core.NewDate(2025, 1, 2)),
	}
	s := Summarize(txs, testNow)

	var sum int64
	for _, ct := range s.CategoryTotals {
		sum += ct.Total.Cents
	}
	if sum != s.TotalExpenses.Cents {
		t.Fatalf("category totals sum %d != total expenses %d", sum, s.TotalExpenses.Cents)
	}
}

func TestAverageExpense(t *testing.T) {
	if s := Summarize(nil, testNow); s.AverageExpense.Cents != 0 {
		t.Fatalf("average over empty set = %d, want 0", s.AverageExpense.Cents)
	}

	single := []core.Transaction{tx(core.Expense, "Other", 4242, core.DateOf(testNow))}
	if s := Summarize(single, testNow); s.AverageExpense.Cents != 4242 {
		t.Fatalf("average over single expense = %d, want 4242", s.AverageExpense.Cents)
	}

	// 100 + 101 = 201 over two: 100.5, rounds half-up to 101.
	pair := []core.Transaction{
		tx(core.Expense, "Other", 100, core.DateOf(testNow)),
		tx(core.Expense, "Other", 101, core.DateOf(testNow)),
	}
	if s := Summarize(pair, testNow); s.AverageExpense.Cents != 101 {
		t.Fatalf("average = %d, want 101", s.AverageExpense.Cents)
	}
}

func TestTopCategoryTieBreak(t *testing.T) {
	today := core.DateOf(testNow)
	txs := []core.Transaction{
		tx(core.Expense, "Travel", 5000, today),
		tx(core.Expense, "Groceries", 5000, today),
	}
	if s := Summarize(txs, testNow); s.TopCategory != "Travel" {
		t.Fatalf("TopCategory = %q, want first-encountered Travel", s.TopCategory)
	}

	// Reversed input flips the winner: the tie-break follows input order.
	txs[0], txs[1] = txs[1], txs[0]
	if s := Summarize(txs, testNow); s.TopCategory != "Groceries" {
		t.Fatalf("TopCategory = %q, want Groceries", s.TopCategory)
	}
}

func TestMonthBucketsWithYearRollover(t *testing.T) {
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx(core.Expense, "Groceries", 1000, core.NewDate(2025, 1, 5)),
		tx(core.Expense, "Rent", 2000, core.NewDate(2024, 12, 28)),
		tx(core.Expense, "Travel", 4000, core.NewDate(2024, 11, 30)), // outside both months
	}
	s := Summarize(txs, jan)
	if s.ThisMonthSpending.Cents != 1000 {
		t.Errorf("ThisMonthSpending = %d, want 1000", s.ThisMonthSpending.Cents)
	}
	if s.LastMonthSpending.Cents != 2000 {
		t.Errorf("LastMonthSpending = %d, want 2000 (December of previous year)", s.LastMonthSpending.Cents)
	}
}

func TestTrend(t *testing.T) {
	cases := []struct {
		name       string
		this, last int64
		dir        TrendDirection
		percent    float64
	}{
		{"down 25", 75000, 100000, TrendDown, 25},
		{"up 50", 150000, 100000, TrendUp, 50},
		{"equal", 100000, 100000, TrendNeutral, 0},
		{"no prior month", 5000, 0, TrendNeutral, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := trendOf(core.Money{Cents: tc.this}, core.Money{Cents: tc.last})
			if got.Direction != tc.dir || got.Percent != tc.percent {
				t.Fatalf("trendOf = %+v, want {%s %v}", got, tc.dir, tc.percent)
			}
		})
	}
}

func TestMonthTotalsRestrictsToCurrentMonth(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Groceries", 1000, core.NewDate(2025, 6, 1)),
		tx(core.Expense, "Groceries", 500, core.NewDate(2025, 5, 30)),
		tx(core.Credit, "Salary", 9000, core.NewDate(2025, 6, 1)),
	}
	totals := MonthTotals(txs, testNow)
	if len(totals) != 1 || totals[0].Category != "Groceries" || totals[0].Total.Cents != 1000 {
		t.Fatalf("unexpected month totals %+v", totals)
	}
}
