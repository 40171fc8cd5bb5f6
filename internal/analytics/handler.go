package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// maxTopQueries caps the ?top= parameter of the stats endpoint.
const maxTopQueries = 100

type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

// Stats serves GET /api/v1/analytics. ?top=N sets how many entries the
// top-query and zero-result lists hold, up to maxTopQueries.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	top := DefaultTopQueries
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.write(w, http.StatusBadRequest, map[string]string{"error": "top must be a positive integer"})
			return
		}
		top = min(n, maxTopQueries)
	}
	h.write(w, http.StatusOK, h.aggregator.StatsTop(top))
}

func (h *Handler) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
