// Package handlers implements HTTP handlers for the winning-products API.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	apiKeyConfigured bool
}

// NewHealthHandler creates a new HealthHandler. The server is only ready
// to search once an API key is configured.
func NewHealthHandler(apiKeyConfigured bool) *HealthHandler {
	return &HealthHandler{apiKeyConfigured: apiKeyConfigured}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 when searches can be served, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if !h.apiKeyConfigured {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{
			Status: "unavailable",
			Reason: "rainforest API key is not configured",
		})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
