package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nestegg/internal/core"
)

type transactionRequest struct {
	Kind         string `json:"kind"`
	Date         string `json:"date"`
	Amount       string `json:"amount"`
	Category     string `json:"category"`
	Counterparty string `json:"counterparty"`
	Notes        string `json:"notes"`
}

type transactionResponse struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	Date         string `json:"date"`
	AmountCents  int64  `json:"amount_cents"`
	Category     string `json:"category,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		Kind:         string(t.Kind),
		Date:         t.Date.Format("2006-01-02"),
		AmountCents:  t.Amount.Cents,
		Category:     t.Category,
		Counterparty: t.Counterparty,
		Notes:        t.Notes,
	}
}

// handleTransactions serves GET /api/transactions?month=YYYY-MM and POST.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r, "month", s.currentMonth())
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "month must be a YYYY-MM month")
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), userID(r), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err, "month", month.String())
		errorJSON(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		resp = append(resp, toTransactionResponse(t))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	kind, err := core.ParseTransactionKind(req.Kind)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "kind must be income or expense")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	tx := core.Transaction{
		UserID:       userID(r),
		Kind:         kind,
		Date:         date,
		Amount:       core.Money{Cents: cents},
		Category:     sanitizeInput(req.Category),
		Counterparty: sanitizeInput(req.Counterparty),
		Notes:        sanitizeInput(req.Notes),
	}
	if err := tx.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.txWriter.CreateTransaction(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction error", "error", err, "kind", string(kind))
		errorJSON(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	slog.InfoContext(r.Context(), "Transaction created",
		"id", saved.ID,
		"kind", string(saved.Kind),
		"amount_cents", saved.Amount.Cents)
	respondJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

// handleTransactionByID serves DELETE /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	id, err := pathID(r.URL.Path, "/api/transactions/")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.txWriter.DeleteTransaction(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			errorJSON(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction error", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	slog.InfoContext(r.Context(), "Transaction deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
