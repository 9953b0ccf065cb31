// Package handlers implements the API endpoint handlers.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/pkg/logger"
)

// StatsHandler serves computed inequality statistics
// ⭐ SSOT: 통계 조회 API 핸들러는 이 구조체에서만
type StatsHandler struct {
	reader contracts.StatsReader
	logger *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(reader contracts.StatsReader, log *logger.Logger) *StatsHandler {
	return &StatsHandler{reader: reader, logger: log}
}

// StatsResponse wraps one result-table query.
type StatsResponse struct {
	Table string                `json:"table"`
	Count int                   `json:"count"`
	Stats []contracts.GroupStat `json:"stats"`
}

// GetStats returns rows of one result table, optionally filtered.
// GET /api/stats/{table}?year=2015&region_code=11110
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	table := mux.Vars(r)["table"]

	var year int
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "year must be an integer")
			return
		}
		year = parsed
	}
	regionCode := r.URL.Query().Get("region_code")

	stats, err := h.reader.LoadStats(ctx, table, year, regionCode)
	if err != nil {
		h.logger.WithError(err).WithField("table", table).Error("Failed to load stats")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve statistics")
		return
	}

	respondJSON(w, http.StatusOK, StatsResponse{Table: table, Count: len(stats), Stats: stats})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
