// Package analytics computes derived statistics over a transaction set:
// aggregation summaries, budget status, and advisory notifications.
//
// Every function here is pure: output depends only on the transaction slice
// and the reference time passed in, so calls are re-entrant and safe to run
// concurrently for different users.
package analytics

import (
	"fintrack/internal/core"
	"time"
)

type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// Trend compares this month's spending against last month's.
// Percent is |this-last|/last*100; zero when last month had no spending.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Percent   float64        `json:"percent"`
}

// CategoryTotal is an expense total for one category. Totals are kept in a
// slice, in first-encountered input order, so iteration is deterministic.
type CategoryTotal struct {
	Category string     `json:"category"`
	Total    core.Money `json:"total"`
}

// Summary is the aggregation output for one transaction set.
type Summary struct {
	TotalIncome       core.Money      `json:"totalIncome"`
	TotalExpenses     core.Money      `json:"totalExpenses"`
	Balance           core.Money      `json:"balance"`
	CategoryTotals    []CategoryTotal `json:"categoryTotals"`
	TopCategory       string          `json:"topCategory"`
	TransactionCount  int             `json:"transactionCount"`
	ExpenseCount      int             `json:"expenseCount"`
	AverageExpense    core.Money      `json:"averageExpense"`
	ThisMonthSpending core.Money      `json:"thisMonthSpending"`
	LastMonthSpending core.Money      `json:"lastMonthSpending"`
	Trend             Trend           `json:"trend"`
}

// Summarize aggregates txs relative to now.
//
// Category totals cover expenses only; credits are not categorized.
// TopCategory is the category with the largest expense total, ties broken by
// first appearance in the input sequence. AverageExpense is total expenses
// over the expense count, half-up rounded to the cent, zero when there are
// no expenses.
func Summarize(txs []core.Transaction, now time.Time) Summary {
	s := Summary{TransactionCount: len(txs)}

	thisYear, thisMonth := now.UTC().Year(), now.UTC().Month()
	lastYear, lastMonth := previousMonth(thisYear, thisMonth)

	index := make(map[string]int)
	for _, tx := range txs {
		switch tx.Type {
		case core.Credit:
			s.TotalIncome.Cents += tx.Amount.Cents
		case core.Expense:
			s.TotalExpenses.Cents += tx.Amount.Cents
			s.ExpenseCount++

			i, seen := index[tx.Category]
			if !seen {
				i = len(s.CategoryTotals)
				index[tx.Category] = i
				s.CategoryTotals = append(s.CategoryTotals, CategoryTotal{Category: tx.Category})
			}
			s.CategoryTotals[i].Total.Cents += tx.Amount.Cents

			y, m := tx.Date.Year(), tx.Date.Month()
			if y == thisYear && m == thisMonth {
				s.ThisMonthSpending.Cents += tx.Amount.Cents
			} else if y == lastYear && m == lastMonth {
				s.LastMonthSpending.Cents += tx.Amount.Cents
			}
		}
	}

	s.Balance.Cents = s.TotalIncome.Cents - s.TotalExpenses.Cents

	// Strict > keeps the first-encountered category on ties.
	var topCents int64
	for _, ct := range s.CategoryTotals {
		if ct.Total.Cents > topCents {
			topCents = ct.Total.Cents
			s.TopCategory = ct.Category
		}
	}

	if s.ExpenseCount > 0 {
		n := int64(s.ExpenseCount)
		s.AverageExpense.Cents = (s.TotalExpenses.Cents + n/2) / n
	}

	s.Trend = trendOf(s.ThisMonthSpending, s.LastMonthSpending)
	return s
}

func trendOf(thisMonth, lastMonth core.Money) Trend {
	if lastMonth.Cents == 0 {
		return Trend{Direction: TrendNeutral}
	}
	diff := thisMonth.Cents - lastMonth.Cents
	if diff == 0 {
		return Trend{Direction: TrendNeutral}
	}
	dir := TrendUp
	if diff < 0 {
		dir = TrendDown
		diff = -diff
	}
	return Trend{
		Direction: dir,
		Percent:   float64(diff) / float64(lastMonth.Cents) * 100,
	}
}

// previousMonth handles the December rollover explicitly.
func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// MonthTotals filters category totals to expenses dated in the calendar
// month of now. The Budget Evaluator works on this restricted set.
func MonthTotals(txs []core.Transaction, now time.Time) []CategoryTotal {
	year, month := now.UTC().Year(), now.UTC().Month()
	var totals []CategoryTotal
	index := make(map[string]int)
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Date.Year() != year || tx.Date.Month() != month {
			continue
		}
		i, seen := index[tx.Category]
		if !seen {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, CategoryTotal{Category: tx.Category})
		}
		totals[i].Total.Cents += tx.Amount.Cents
	}
	return totals
}
