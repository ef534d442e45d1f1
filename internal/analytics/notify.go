package analytics

import (
	"fmt"
	"math"
	"time"

	"fintrack/internal/core"
)

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Notification is an ephemeral advisory message. Notifications are derived
// fresh on every evaluation and never persisted; the ID is unique enough for
// display keys, not for cross-pass deduplication.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Tag       string    `json:"tag"`
}

// Rule windows and thresholds.
const (
	budgetDangerBP    = 9000 // 90% in basis points
	budgetWarningBP   = 7500 // 75%
	largeExpenseAge   = 24 * time.Hour
	streakWindow      = 7 * 24 * time.Hour
	streakCount       = 10
	favorableNumer    = 8 // this month < 8/10 of last month
	favorableDenom    = 10
	largeExpenseRatio = 2
)

// EvaluateRules derives the advisory notification list for one evaluation
// pass. All rules fire independently in a single pass, except the budget
// pair: danger is checked before warning per category and the first match
// wins. Identical inputs with an identical now always produce the same set
// of fired rules.
func EvaluateRules(txs []core.Transaction, budgets []CategoryBudget, sum Summary, now time.Time) []Notification {
	var out []Notification
	ms := now.UnixMilli()

	// Budget alerts: danger at >=90%, warning at [75,90). Thresholds
	// compare exact cents in basis points; cb.Percent is display-rounded
	// and only feeds the message text.
	for _, cb := range budgets {
		if cb.Budget.Cents <= 0 {
			continue
		}
		bp := cb.Spent.Cents * 10000 / cb.Budget.Cents
		pct := int(math.Round(cb.Percent))
		switch {
		case bp >= budgetDangerBP:
			out = append(out, Notification{
				ID:        fmt.Sprintf("budget-%s-%d", cb.Category, ms),
				Severity:  SeverityDanger,
				Title:     "Budget alert",
				Message:   fmt.Sprintf("You've spent %d%% of your %s budget", pct, cb.Category),
				Timestamp: now,
				Tag:       "budget",
			})
		case bp >= budgetWarningBP:
			out = append(out, Notification{
				ID:        fmt.Sprintf("budget-warning-%s-%d", cb.Category, ms),
				Severity:  SeverityWarning,
				Title:     "Budget warning",
				Message:   fmt.Sprintf("You've spent %d%% of your %s budget", pct, cb.Category),
				Timestamp: now,
				Tag:       "budget",
			})
		}
	}

	// Large expenses: above twice the mean expense amount, dated within the
	// last day. Compared as amount*count > 2*total to stay in integer cents.
	if sum.ExpenseCount > 0 {
		n := int64(sum.ExpenseCount)
		for _, tx := range txs {
			if tx.Type != core.Expense {
				continue
			}
			age := now.Sub(tx.Date.Time)
			if age < 0 || age > largeExpenseAge {
				continue
			}
			if tx.Amount.Cents*n > largeExpenseRatio*sum.TotalExpenses.Cents {
				out = append(out, Notification{
					ID:        fmt.Sprintf("large-expense-%s", tx.ID),
					Severity:  SeverityInfo,
					Title:     "Large expense detected",
					Message:   fmt.Sprintf("%s spent on %s", tx.Amount, tx.Category),
					Timestamp: now,
					Tag:       "expense",
				})
			}
		}
	}

	// High-frequency spending: ten or more expenses in the last seven days.
	recent := 0
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if age := now.Sub(tx.Date.Time); age >= 0 && age <= streakWindow {
			recent++
		}
	}
	if recent >= streakCount {
		out = append(out, Notification{
			ID:        fmt.Sprintf("spending-streak-%d", ms),
			Severity:  SeverityWarning,
			Title:     "High activity",
			Message:   fmt.Sprintf("You've made %d expense transactions in the last 7 days", recent),
			Timestamp: now,
			Tag:       "activity",
		})
	}

	// Favorable trend: spending under 80% of last month's.
	if sum.LastMonthSpending.Cents > 0 &&
		sum.ThisMonthSpending.Cents*favorableDenom < sum.LastMonthSpending.Cents*favorableNumer {
		out = append(out, Notification{
			ID:        fmt.Sprintf("good-spending-%d", ms),
			Severity:  SeveritySuccess,
			Title:     "Great job",
			Message:   "You're spending at least 20% less than last month",
			Timestamp: now,
			Tag:       "achievement",
		})
	}

	return out
}
