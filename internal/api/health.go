package api

import (
	"net/http"

	"github.com/echonote/echonote/internal/api/respond"
	"github.com/echonote/echonote/internal/health"
)

// HealthHandler serves liveness endpoints.
type HealthHandler struct {
	service *health.ServiceHealthChecker
	store   health.HealthPinger
}

func NewHealthHandler(service *health.ServiceHealthChecker, store health.HealthPinger) *HealthHandler {
	return &HealthHandler{service: service, store: store}
}

// CheckHealth GET /health — cached aggregate health.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if h.service != nil && !h.service.IsHealthy() {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// CheckStorageHealth GET /health/db — live probe of the store.
func (h *HealthHandler) CheckStorageHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HealthPing(r.Context()); err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "detail": err.Error()})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
