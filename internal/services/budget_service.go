package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// BudgetService manages per-category monthly thresholds. Budgets are
// advisory; they gate nothing.
type BudgetService struct {
	store   storage.Store
	reports Invalidator
}

func NewBudgetService(store storage.Store, reports Invalidator) *BudgetService {
	return &BudgetService{store: store, reports: reports}
}

// Upsert creates or replaces the user's threshold for a category.
func (s *BudgetService) Upsert(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if _, err := s.store.UserByID(ctx, b.UserID); err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return err
	}

	if s.reports != nil {
		s.reports.Invalidate(b.UserID)
	}
	return nil
}

// Delete removes the user's threshold for a category.
func (s *BudgetService) Delete(ctx context.Context, userID, category string) error {
	if !core.ValidCategory(category) {
		return core.ErrUnknownCategory
	}

	if err := s.store.DeleteBudget(ctx, userID, category); err != nil {
		return err
	}

	if s.reports != nil {
		s.reports.Invalidate(userID)
	}
	return nil
}

// List returns the user's budgets ordered by category.
func (s *BudgetService) List(ctx context.Context, userID string) ([]core.Budget, error) {
	if _, err := s.store.UserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListBudgets(ctx, userID)
}
