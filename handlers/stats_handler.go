package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jankeeper/jankeeper/services"
)

const dateLayout = "2006-01-02"

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats aggregates closed sections, optionally bounded by
// ?from=YYYY-MM-DD&to=YYYY-MM-DD (both inclusive).
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.statsService.GetStats(r.Context(), dateRange)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		badRequestResponse(w, r, errors.New("missing user ID in URL path"))
		return
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.statsService.GetUserStats(r.Context(), userID, dateRange)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseDateRange(r *http.Request) (services.DateRange, error) {
	var dateRange services.DateRange

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return dateRange, fmt.Errorf("from must be a date in %s format", dateLayout)
		}
		dateRange.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return dateRange, fmt.Errorf("to must be a date in %s format", dateLayout)
		}
		dateRange.To = &t
	}
	if dateRange.From != nil && dateRange.To != nil && dateRange.To.Before(*dateRange.From) {
		return dateRange, errors.New("to must not be before from")
	}

	return dateRange, nil
}
