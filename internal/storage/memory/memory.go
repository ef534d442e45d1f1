// Package memory provides an in-memory storage.Store for local runs
// and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu      sync.Mutex
	users   []core.User
	txs     []core.Transaction
	budgets map[string]map[string]core.Budget // userID -> category -> budget
}

func New() *Store {
	return &Store{budgets: map[string]map[string]core.Budget{}}
}

// CreateUser implements storage.UserStore.
func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.User{}, core.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	s.users = append(s.users, u)
	return u, nil
}

// UserByEmail implements storage.UserStore.
func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

// UserByID implements storage.UserStore.
func (s *Store) UserByID(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

// SetAvatar implements storage.UserStore.
func (s *Store) SetAvatar(_ context.Context, id, image string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users[i].Avatar = image
			s.users[i].AvatarSet = true
			return s.users[i], nil
		}
	}
	return core.User{}, core.ErrNotFound
}

// CreateTransaction implements storage.TransactionStore.
func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	s.txs = append(s.txs, tx)
	return tx, nil
}

// TransactionByID implements storage.TransactionStore.
func (s *Store) TransactionByID(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

// UpdateTransaction implements storage.TransactionStore.
func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.txs {
		if existing.ID == tx.ID {
			tx.UserID = existing.UserID
			s.txs[i] = tx
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

// DeleteTransaction implements storage.TransactionStore.
func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.txs {
		if tx.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// ListTransactions implements storage.TransactionStore. Results come
// back in insertion order.
func (s *Store) ListTransactions(_ context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID != userID {
			continue
		}
		if !f.Matches(tx) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// UpsertBudget implements storage.BudgetStore.
func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userBudgets, ok := s.budgets[b.UserID]
	if !ok {
		userBudgets = map[string]core.Budget{}
		s.budgets[b.UserID] = userBudgets
	}
	userBudgets[b.Category] = b
	return nil
}

// DeleteBudget implements storage.BudgetStore.
func (s *Store) DeleteBudget(_ context.Context, userID, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userBudgets := s.budgets[userID]
	if _, ok := userBudgets[category]; !ok {
		return core.ErrNotFound
	}
	delete(userBudgets, category)
	return nil
}

// ListBudgets implements storage.BudgetStore.
func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets[userID] {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
