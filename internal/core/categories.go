package core

// Categories is the closed set of labels accepted for transactions and
// budgets. Matching is exact; free-form labels are rejected at validation.
var Categories = []string{
	"Groceries",
	"Rent",
	"Salary",
	"Utilities",
	"Food & Dining",
	"Healthcare",
	"Entertainment",
	"Transportation",
	"Education",
	"Shopping",
	"Travel",
	"Technology",
	"Gifts",
	"Business",
	"Other",
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// ValidCategory reports whether label belongs to the category registry.
func ValidCategory(label string) bool {
	_, ok := categorySet[label]
	return ok
}
