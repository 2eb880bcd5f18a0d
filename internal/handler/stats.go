package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ly-yang/wechat-editor/internal/service"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsHandler serves dashboard numbers and the health check.
type StatsHandler struct {
	stats  *service.StatsService
	db     Pinger
	logger *slog.Logger
	now    func() time.Time
}

func NewStatsHandler(stats *service.StatsService, db Pinger, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, db: db, logger: logger, now: time.Now}
}

// HandleStats returns the caller's article totals.
//
// HTTP: GET /api/stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	stats, err := h.stats.Get(r.Context(), owner)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HandleHealth reports whether the process can serve requests. The
// database is pinged with a short timeout; a failed ping answers 503.
//
// HTTP: GET /api/health (no auth)
func (h *StatsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	timestamp := h.now().UTC().Format(time.RFC3339Nano)

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("health check: database unreachable", slog.String("error", err.Error()))
			writeJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Timestamp: timestamp})
			return
		}
	}

	writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Timestamp: timestamp})
}
