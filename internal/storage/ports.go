// Package storage defines the persistence ports for users, transactions,
// and budgets, plus the SQLite implementation used in production.
package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// TransactionFilter selects transactions by date window and type.
// Zero From/To mean an open bound; an empty Type means both types.
type TransactionFilter struct {
	From time.Time
	To   time.Time
	Type core.TransactionType
}

// Matches reports whether tx falls inside the filter. The in-memory store
// and the query service share this predicate.
func (f TransactionFilter) Matches(tx core.Transaction) bool {
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	return true
}

type UserStore interface {
	// CreateUser assigns an ID and persists the user.
	// Returns core.ErrEmailTaken when the email is already registered.
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	// UserByEmail returns core.ErrNotFound when no user has the email.
	UserByEmail(ctx context.Context, email string) (core.User, error)
	// UserByID returns core.ErrNotFound when the id is unknown.
	UserByID(ctx context.Context, id string) (core.User, error)
	// SetAvatar stores the avatar image and marks the avatar-set flag.
	SetAvatar(ctx context.Context, id, image string) (core.User, error)
}

type TransactionStore interface {
	// CreateTransaction assigns an ID and persists the transaction.
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	// TransactionByID returns core.ErrNotFound when the id is unknown.
	TransactionByID(ctx context.Context, id string) (core.Transaction, error)
	// UpdateTransaction replaces the stored fields of tx.ID.
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	// DeleteTransaction returns core.ErrNotFound when the id is unknown.
	DeleteTransaction(ctx context.Context, id string) error
	// ListTransactions returns the user's transactions matching the filter
	// in store order (insertion order). An empty result is not an error.
	ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error)
}

type BudgetStore interface {
	// UpsertBudget creates or replaces the user's threshold for a category.
	UpsertBudget(ctx context.Context, b core.Budget) error
	// DeleteBudget returns core.ErrNotFound when no such budget exists.
	DeleteBudget(ctx context.Context, userID, category string) error
	// ListBudgets returns the user's budgets ordered by category.
	ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
}

// Store bundles the three ports; both the SQLite repository and the
// in-memory store satisfy it.
type Store interface {
	UserStore
	TransactionStore
	BudgetStore
}
