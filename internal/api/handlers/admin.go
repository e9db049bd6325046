package handlers

import (
	"net/http"

	"github.com/wonhee/folio/internal/benchmark"
	"github.com/wonhee/folio/pkg/logger"
)

// AdminHandler handles operational endpoints
type AdminHandler struct {
	benchmarkSvc *benchmark.Service
	logger       *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(benchmarkSvc *benchmark.Service, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		benchmarkSvc: benchmarkSvc,
		logger:       log,
	}
}

// ClearCache drops all cached benchmark series
// POST /api/admin/cache/clear
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	cleared := h.benchmarkSvc.ClearCache()

	h.logger.WithField("cleared", cleared).Info("Benchmark cache cleared via API")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"cleared": cleared,
	})
}
