package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const reportTimeout = 7 * time.Second

// Report is the full analytics view for one user and query window:
// summary statistics, per-category budget standing, and advisory
// notifications. It is recomputed from the transaction set on demand and
// never persisted.
type Report struct {
	Summary        analytics.Summary          `json:"summary"`
	Budgets        []analytics.CategoryBudget `json:"budgets"`
	InvalidBudgets []string                   `json:"invalidBudgets,omitempty"`
	Notifications  []analytics.Notification   `json:"notifications"`
}

// ReportService composes query, aggregation, budget evaluation, and rule
// evaluation. Results are memoized per (user, query, minute) with LRU+TTL
// eviction, and concurrent identical requests collapse via singleflight.
type ReportService struct {
	store storage.Store
	cache *cache.LRU[Report]
	group singleflight.Group
	now   func() time.Time
}

func NewReportService(store storage.Store, reportCache *cache.LRU[Report]) *ReportService {
	return &ReportService{
		store: store,
		cache: reportCache,
		now:   time.Now,
	}
}

// Report builds the analytics report for the user's query window.
// Returns core.ErrNotFound when the user does not exist.
func (s *ReportService) Report(ctx context.Context, userID string, q Query) (Report, error) {
	now := s.now()
	key := s.cacheKey(userID, q, now)

	if r, ok := s.cache.Get(key); ok {
		return r, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, reportTimeout)
		defer cancel()

		r, err := s.build(ctx, userID, q, now)
		if err != nil {
			return Report{}, err
		}
		s.cache.Set(key, r)
		return r, nil
	})
	if err != nil {
		return Report{}, err
	}
	return v.(Report), nil
}

// Invalidate drops every cached report for the user. Called after any
// transaction or budget mutation.
func (s *ReportService) Invalidate(userID string) {
	s.cache.DeletePrefix(userID + "|")
}

func (s *ReportService) build(ctx context.Context, userID string, q Query, now time.Time) (Report, error) {
	if _, err := s.store.UserByID(ctx, userID); err != nil {
		return Report{}, err
	}

	filter, err := q.Filter(now)
	if err != nil {
		return Report{}, err
	}

	txs, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return Report{}, fmt.Errorf("list transactions: %w", err)
	}

	sum := analytics.Summarize(txs, now)

	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("list budgets: %w", err)
	}

	// Budget standing is always judged against the current calendar
	// month, independent of the query window.
	monthTxs, err := s.store.ListTransactions(ctx, userID, monthFilter(now))
	if err != nil {
		return Report{}, fmt.Errorf("list month transactions: %w", err)
	}

	statuses, evalErrs := analytics.EvaluateBudgets(analytics.MonthTotals(monthTxs, now), budgets)

	var invalid []string
	for _, err := range evalErrs {
		var ib *analytics.InvalidBudgetError
		if errors.As(err, &ib) {
			invalid = append(invalid, ib.Category)
		}
	}

	return Report{
		Summary:        sum,
		Budgets:        statuses,
		InvalidBudgets: invalid,
		Notifications:  analytics.EvaluateRules(txs, statuses, sum, now),
	}, nil
}

// cacheKey buckets now to the minute so entries stay fresh without a
// clock-aligned TTL.
func (s *ReportService) cacheKey(userID string, q Query, now time.Time) string {
	return fmt.Sprintf("%s|%d|%d|%d|%s|%d",
		userID, q.FrequencyDays, q.From.Unix(), q.To.Unix(), q.Type, now.Unix()/60)
}

func monthFilter(now time.Time) storage.TransactionFilter {
	y, m, _ := now.UTC().Date()
	first := core.NewDate(y, int(m), 1)
	return storage.TransactionFilter{
		From: first.Time,
		To:   first.AddDate(0, 1, -1),
	}
}
