package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/query"
)

// apiHandler holds the dependencies for the API handlers.
type apiHandler struct {
	querier query.Querier
	log     zerolog.Logger
}

// reportsHandler serves persisted report rows, filtered by the address,
// since, until, and limit query parameters.
func (h *apiHandler) reportsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := query.ReportFilter{Address: q.Get("address")}
	var err error
	if filter.Since, err = parseTimeParam(q.Get("since")); err != nil {
		http.Error(w, fmt.Sprintf("invalid since parameter: %v", err), http.StatusBadRequest)
		return
	}
	if filter.Until, err = parseTimeParam(q.Get("until")); err != nil {
		http.Error(w, fmt.Sprintf("invalid until parameter: %v", err), http.StatusBadRequest)
		return
	}
	if filter.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		http.Error(w, fmt.Sprintf("invalid limit parameter: %v", err), http.StatusBadRequest)
		return
	}

	rows, err := h.querier.Reports(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("report query failed")
		http.Error(w, fmt.Sprintf("failed to query reports: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

// transfersHandler serves persisted transfer details, filtered by the
// run, since, and limit query parameters.
func (h *apiHandler) transfersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter query.TransferFilter
	var err error
	if filter.RunTimestamp, err = parseTimeParam(q.Get("run")); err != nil {
		http.Error(w, fmt.Sprintf("invalid run parameter: %v", err), http.StatusBadRequest)
		return
	}
	if filter.Since, err = parseTimeParam(q.Get("since")); err != nil {
		http.Error(w, fmt.Sprintf("invalid since parameter: %v", err), http.StatusBadRequest)
		return
	}
	if filter.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		http.Error(w, fmt.Sprintf("invalid limit parameter: %v", err), http.StatusBadRequest)
		return
	}

	rows, err := h.querier.Transfers(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("transfer query failed")
		http.Error(w, fmt.Sprintf("failed to query transfers: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func parseTimeParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func parseIntParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
