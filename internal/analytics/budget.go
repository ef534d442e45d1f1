package analytics

import (
	"fmt"
	"math"
	"sort"

	"fintrack/internal/core"
)

type BudgetStatus string

const (
	StatusOK      BudgetStatus = "ok"
	StatusWarning BudgetStatus = "warning"
	StatusOver    BudgetStatus = "over"
)

// Status thresholds in basis points of the budget amount. Comparison happens
// on exact cents, so 49.99% stays below the warning line while 50.00% is on it.
const (
	warningBP  = 5000  // 50%
	overBP     = 8000  // 80%
	exceededBP = 10000 // 100%
)

// CategoryBudget is the evaluated state of one budgeted category.
type CategoryBudget struct {
	Category string       `json:"category"`
	Spent    core.Money   `json:"spent"`
	Budget   core.Money   `json:"budget"`
	Percent  float64      `json:"percent"`
	Status   BudgetStatus `json:"status"`
	Exceeded bool         `json:"exceeded"`
}

// InvalidBudgetError reports a non-positive budget entry. It unwraps to
// core.ErrInvalidBudget so callers can match with errors.Is.
type InvalidBudgetError struct {
	Category string
}

func (e *InvalidBudgetError) Error() string {
	return fmt.Sprintf("invalid budget for category %q: amount must be positive", e.Category)
}

func (e *InvalidBudgetError) Unwrap() error { return core.ErrInvalidBudget }

// EvaluateBudgets compares current-month category spend against budget
// thresholds. Categories with no budget set are omitted. A non-positive
// budget entry is reported as an InvalidBudgetError and skipped; the
// remaining entries are still evaluated (one bad entry never blanks the
// whole report). Results are sorted by category for stable output.
func EvaluateBudgets(monthTotals []CategoryTotal, budgets []core.Budget) ([]CategoryBudget, []error) {
	spent := make(map[string]int64, len(monthTotals))
	for _, ct := range monthTotals {
		spent[ct.Category] = ct.Total.Cents
	}

	var (
		out  []CategoryBudget
		errs []error
	)
	for _, b := range budgets {
		if b.Amount.Cents <= 0 {
			errs = append(errs, &InvalidBudgetError{Category: b.Category})
			continue
		}
		cents := spent[b.Category] // zero when nothing spent
		bp := cents * 10000 / b.Amount.Cents

		status := StatusOK
		switch {
		case bp >= overBP:
			status = StatusOver
		case bp >= warningBP:
			status = StatusWarning
		}

		out = append(out, CategoryBudget{
			Category: b.Category,
			Spent:    core.Money{Cents: cents},
			Budget:   b.Amount,
			// Display value only; status comparisons stay on basis points.
			Percent:  math.Round(float64(cents)*1000/float64(b.Amount.Cents)) / 10,
			Status:   status,
			Exceeded: bp >= exceededBP,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, errs
}
