package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/hapkiduki/shipping-go/internal/application/dto"
	"github.com/hapkiduki/shipping-go/internal/domain/shipping"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/middleware"
)

// RateTableSource is the readiness dependency of HealthHandler.
type RateTableSource interface {
	RateTable(ctx context.Context) (*shipping.RateTable, error)
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version string
	started time.Time
	rates   RateTableSource
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(version string, started time.Time, rates RateTableSource) *HealthHandler {
	return &HealthHandler{version: version, started: started, rates: rates, now: time.Now}
}

// Health reports that the process is up.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, dto.HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  h.now().Sub(h.started).Round(time.Second).String(),
	})
}

// Ready reports whether a rate table is loaded.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	check := dto.HealthCheckResult{Status: "up"}
	status := http.StatusOK

	if _, err := h.rates.RateTable(r.Context()); err != nil {
		check = dto.HealthCheckResult{Status: "down", Message: err.Error()}
		status = http.StatusServiceUnavailable
	}
	check.ResponseTime = h.now().Sub(start).Milliseconds()

	overall := "ready"
	if status != http.StatusOK {
		overall = "not_ready"
	}
	render.Status(r, status)
	render.JSON(w, r, dto.HealthResponse{
		Status:  overall,
		Version: h.version,
		Uptime:  h.now().Sub(h.started).Round(time.Second).String(),
		Checks:  map[string]dto.HealthCheckResult{"rate_table": check},
	})
}

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The requested method is not allowed for this resource")
}
