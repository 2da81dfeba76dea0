package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nestegg/internal/core"
)

type billRequest struct {
	Name          string `json:"name"`
	Amount        string `json:"amount"`
	Cadence       string `json:"cadence"`
	Type          string `json:"type"`
	DueDay        int    `json:"due_day"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

type billResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AmountCents   int64  `json:"amount_cents"`
	Cadence       string `json:"cadence"`
	Type          string `json:"type"`
	DueDay        int    `json:"due_day,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func toBillResponse(b core.RecurringBill) billResponse {
	resp := billResponse{
		ID:            b.ID,
		Name:          b.Name,
		AmountCents:   b.Amount.Cents,
		Cadence:       string(b.Cadence),
		Type:          string(b.Type),
		DueDay:        b.DueDay,
		PaymentMethod: b.PaymentMethod,
		Notes:         b.Notes,
	}
	if b.StartDate.IsSet() {
		resp.StartDate = b.StartDate.Format("2006-01-02")
	}
	if b.EndDate.IsSet() {
		resp.EndDate = b.EndDate.Format("2006-01-02")
	}
	return resp
}

// handleBills serves GET and POST /api/bills.
func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBills(w, r)
	case http.MethodPost:
		s.createBill(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.store.ListBills(r.Context(), userID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "List bills error", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list bills")
		return
	}

	resp := make([]billResponse, 0, len(bills))
	for _, b := range bills {
		resp = append(resp, toBillResponse(b))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) createBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	cadence, err := core.ParseCadence(req.Cadence)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid cadence")
		return
	}
	billType, err := core.ParseBillType(req.Type)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid bill type")
		return
	}

	bill := core.RecurringBill{
		UserID:        userID(r),
		Name:          sanitizeInput(req.Name),
		Amount:        core.Money{Cents: cents},
		Cadence:       cadence,
		Type:          billType,
		DueDay:        req.DueDay,
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Notes:         sanitizeInput(req.Notes),
	}
	if req.StartDate != "" {
		d, err := parseDate(req.StartDate)
		if err != nil {
			errorJSON(w, http.StatusUnprocessableEntity, "start_date must be YYYY-MM-DD")
			return
		}
		bill.StartDate = d
	}
	if req.EndDate != "" {
		d, err := parseDate(req.EndDate)
		if err != nil {
			errorJSON(w, http.StatusUnprocessableEntity, "end_date must be YYYY-MM-DD")
			return
		}
		bill.EndDate = d
	}

	if err := bill.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.store.CreateBill(r.Context(), bill)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create bill error", "error", err, "name", bill.Name)
		errorJSON(w, http.StatusInternalServerError, "failed to save bill")
		return
	}

	slog.InfoContext(r.Context(), "Bill created",
		"id", saved.ID,
		"name", saved.Name,
		"cadence", string(saved.Cadence))
	respondJSON(w, http.StatusCreated, toBillResponse(saved))
}

// handleBillByID serves DELETE /api/bills/{id}.
func (s *Server) handleBillByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	id, err := pathID(r.URL.Path, "/api/bills/")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	if err := s.store.DeleteBill(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			errorJSON(w, http.StatusNotFound, "bill not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete bill error", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "failed to delete bill")
		return
	}

	slog.InfoContext(r.Context(), "Bill deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
