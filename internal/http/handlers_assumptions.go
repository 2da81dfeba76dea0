package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nestegg/internal/core"
)

type assumptionsRequest struct {
	CurrentSavingsCents int64   `json:"current_savings_cents"`
	AsOf                string  `json:"as_of"`
	SavingsAPR          float64 `json:"savings_apr"`
	InflationPct        float64 `json:"inflation_pct"`
}

type assumptionsResponse struct {
	CurrentSavingsCents int64         `json:"current_savings_cents"`
	AsOf                core.MonthKey `json:"as_of"`
	SavingsAPR          float64       `json:"savings_apr"`
	InflationPct        float64       `json:"inflation_pct"`
}

// handleAssumptions serves GET and PUT /api/assumptions.
func (s *Server) handleAssumptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getAssumptions(w, r)
	case http.MethodPut:
		s.putAssumptions(w, r)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) getAssumptions(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAssumptions(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, core.ErrNoBaseline) {
			errorJSON(w, http.StatusNotFound, "no savings baseline recorded")
			return
		}
		slog.ErrorContext(r.Context(), "Get assumptions error", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load assumptions")
		return
	}

	respondJSON(w, http.StatusOK, assumptionsResponse{
		CurrentSavingsCents: a.CurrentSavings.Cents,
		AsOf:                a.AsOf.MonthOf(),
		SavingsAPR:          a.SavingsAPR,
		InflationPct:        a.InflationPct,
	})
}

func (s *Server) putAssumptions(w http.ResponseWriter, r *http.Request) {
	var req assumptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// The baseline is anchored to a month; zero or negative savings are
	// legitimate (debt).
	asOf, err := core.ParseMonthKey(req.AsOf)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "as_of must be a YYYY-MM month")
		return
	}

	a := core.Assumptions{
		UserID:         userID(r),
		CurrentSavings: core.Money{Cents: req.CurrentSavingsCents},
		AsOf:           core.NewDate(asOf.Year, int(asOf.Month), 1),
		SavingsAPR:     req.SavingsAPR,
		InflationPct:   req.InflationPct,
	}
	if err := a.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.UpsertAssumptions(r.Context(), a); err != nil {
		slog.ErrorContext(r.Context(), "Upsert assumptions error", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to save assumptions")
		return
	}

	slog.InfoContext(r.Context(), "Assumptions saved",
		"as_of", asOf.String(),
		"savings_cents", req.CurrentSavingsCents)
	respondJSON(w, http.StatusOK, assumptionsResponse{
		CurrentSavingsCents: a.CurrentSavings.Cents,
		AsOf:                asOf,
		SavingsAPR:          a.SavingsAPR,
		InflationPct:        a.InflationPct,
	})
}
