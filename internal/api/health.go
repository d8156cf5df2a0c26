package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/api/respond"
)

// HealthHandler serves GET /api/health.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// healthyFlag backs the default health source before an aggregator is bound
// (1 = healthy); the zero value starts the service unhealthy.
var healthyFlag atomic.Int32

// serviceIsHealthy is swapped at startup for the aggregated dependency view.
var serviceIsHealthy = func() bool { return healthyFlag.Load() == 1 }

// BindServiceHealth points the endpoint at the service-level health
// aggregator built in the entrypoint.
func BindServiceHealth(f func() bool) { serviceIsHealthy = f }

// CheckHealth reports healthy/unhealthy with a 200 either way; a non-200
// from this endpoint means the handler itself failed, not a dependency.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if serviceIsHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"service":   "loomplan-notify",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
