package http

import (
	"errors"
	"log/slog"
	"net/http"

	"nestegg/internal/core"
)

type forecastResponse struct {
	Start   core.MonthKey        `json:"start"`
	Horizon core.MonthKey        `json:"horizon"`
	Points  []core.ForecastPoint `json:"points"`
}

// handleForecast serves GET /api/forecast?start=YYYY-MM.
// The start month defaults to the current month and is clamped to the
// baseline's as-of month before folding.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	current := s.currentMonth()
	start, err := parseMonthParam(r, "start", current)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "start must be a YYYY-MM month")
		return
	}

	points, err := s.forecaster.Forecast(r.Context(), userID(r), start, current)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoBaseline):
			errorJSON(w, http.StatusPreconditionFailed, "no savings baseline recorded, set assumptions first")
		default:
			slog.ErrorContext(r.Context(), "Forecast error", "error", err, "start", start.String())
			errorJSON(w, http.StatusInternalServerError, "failed to compute forecast")
		}
		return
	}

	resp := forecastResponse{
		Start:   start,
		Horizon: s.forecaster.Horizon(),
		Points:  points,
	}
	if len(points) > 0 {
		// Report the effective start after baseline clamping.
		resp.Start = points[0].Month
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleSummary serves GET /api/summary?month=YYYY-MM.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	current := s.currentMonth()
	month, err := parseMonthParam(r, "month", current)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "month must be a YYYY-MM month")
		return
	}

	summary, err := s.forecaster.MonthSummary(r.Context(), userID(r), month, current)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary error", "error", err, "month", month.String())
		errorJSON(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
