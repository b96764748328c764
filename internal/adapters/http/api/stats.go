// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/classahp/internal/domain/ahp"
	"github.com/okian/classahp/internal/domain/model"
)

// StatsProvider reports service counters for GET /stats.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves the service counters together with the fixed table
// bounds, so clients can size their forms without hardcoding them.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := make(map[string]any)
	for k, v := range h.statsProvider.GetStats() {
		stats[k] = v
	}
	stats["limits"] = map[string]any{
		"min_factors":   model.MinFactors,
		"max_factors":   model.MaxFactors,
		"min_classes":   model.MinClasses,
		"max_classes":   model.MaxClasses,
		"acceptable_cr": ahp.AcceptableCR,
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, stats)
}
