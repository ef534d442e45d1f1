package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type transactionRequest struct {
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Amount      decimalString `json:"amount"`
	Category    string        `json:"category"`
	Type        string        `json:"type"`
	Date        core.Date     `json:"date"`
	Description string        `json:"description"`
}

func (req transactionRequest) toDomain() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		UserID:      sanitizeInput(req.UserID),
		Title:       sanitizeInput(req.Title),
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(req.Category),
		Type:        core.TransactionType(sanitizeInput(req.Type)),
		Date:        req.Date,
		Description: sanitizeInput(req.Description),
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	tx, err := req.toDomain()
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Transaction created", envelope{"transaction": created})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, q, err := parseListQuery(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	txs, err := s.transactions.List(r.Context(), userID, q)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	respondSuccess(w, http.StatusOK, "Transactions fetched", envelope{"transactions": txs})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	tx, err := req.toDomain()
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	tx.ID = r.PathValue("id")

	updated, err := s.transactions.Update(r.Context(), tx)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Transaction updated", envelope{"transaction": updated})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Transaction deleted", nil)
}

// handleExport returns the user's entire transaction history as a JSON
// attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(r.Context(), w, fmt.Errorf("%w: missing userId", core.ErrInvalidInput))
		return
	}

	// A zero query means no window and both types.
	txs, err := s.transactions.List(r.Context(), userID, services.Query{})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	w.Header().Set("Content-Disposition", `attachment; filename="transactions.json"`)
	respondSuccess(w, http.StatusOK, "Export complete", envelope{"transactions": txs})
}
