package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// healthCheckTimeout bounds the backend ping of a single health request.
const healthCheckTimeout = 2 * time.Second

// HealthHandler reports whether the storage backend is reachable.
type HealthHandler struct {
	pinger store.Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. A nil pinger always reports ok.
func NewHealthHandler(pinger store.Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{pinger: pinger, logger: logger.With(slog.String("component", "health"))}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Service unavailable", err)
			return
		}
	}
	shared.RespondWithData(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
