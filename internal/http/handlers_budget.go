package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type budgetRequest struct {
	UserID   string        `json:"userId"`
	Category string        `json:"category"`
	Amount   decimalString `json:"amount"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(r.Context(), w, fmt.Errorf("%w: missing userId", core.ErrInvalidInput))
		return
	}

	budgets, err := s.budgets.List(r.Context(), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}

	respondSuccess(w, http.StatusOK, "Budgets fetched", envelope{"budgets": budgets})
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	b := core.Budget{
		UserID:   sanitizeInput(req.UserID),
		Category: sanitizeInput(req.Category),
		Amount:   core.Money{Cents: cents},
	}

	if err := s.budgets.Upsert(r.Context(), b); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Budget saved", envelope{"budget": b})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(r.Context(), w, fmt.Errorf("%w: missing userId", core.ErrInvalidInput))
		return
	}

	if err := s.budgets.Delete(r.Context(), userID, r.PathValue("category")); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Budget deleted", nil)
}

// handleBudgetStatus reports the current-month standing for every budget
// the user has set. The 30-day query drives summary computation only; the
// standing itself always covers the calendar month.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(r.Context(), w, fmt.Errorf("%w: missing userId", core.ErrInvalidInput))
		return
	}

	report, err := s.reports.Report(r.Context(), userID, services.Query{FrequencyDays: 30})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Budget status fetched", envelope{
		"budgets":        nonNilBudgets(report.Budgets),
		"invalidBudgets": nonNilStrings(report.InvalidBudgets),
	})
}
