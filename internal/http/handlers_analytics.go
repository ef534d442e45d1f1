package http

import (
	"net/http"

	"fintrack/internal/analytics"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, q, err := parseListQuery(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	report, err := s.reports.Report(r.Context(), userID, q)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Analytics fetched", envelope{
		"summary":        report.Summary,
		"budgets":        nonNilBudgets(report.Budgets),
		"invalidBudgets": nonNilStrings(report.InvalidBudgets),
		"notifications":  nonNilNotifications(report.Notifications),
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	userID, q, err := parseListQuery(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	report, err := s.reports.Report(r.Context(), userID, q)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Notifications fetched", envelope{
		"notifications": nonNilNotifications(report.Notifications),
	})
}

func nonNilBudgets(b []analytics.CategoryBudget) []analytics.CategoryBudget {
	if b == nil {
		return []analytics.CategoryBudget{}
	}
	return b
}

func nonNilNotifications(n []analytics.Notification) []analytics.Notification {
	if n == nil {
		return []analytics.Notification{}
	}
	return n
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
