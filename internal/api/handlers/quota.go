package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/winning-products/internal/rainforest"
)

// QuotaHandler provides the local search budget endpoint.
type QuotaHandler struct {
	rl *rainforest.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *rainforest.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64      `json:"daily_limit"        example:"100"                  doc:"Configured daily search limit, 0 when unlimited"`
		DailyUsed  int64      `json:"daily_used"         example:"14"                   doc:"Searches made in the current 24-hour window"`
		Remaining  int64      `json:"remaining"          example:"86"                   doc:"Searches remaining in the current window"`
		ResetAt    *time.Time `json:"reset_at,omitempty" example:"2026-06-16T14:30:00Z" doc:"When the current 24-hour window expires"`
	}
}

// GetQuota returns the state of the local daily search budget.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	u := h.rl.Snapshot()
	resp.Body.DailyLimit = max(u.Limit, 0)
	resp.Body.DailyUsed = u.Used
	resp.Body.Remaining = u.Remaining
	resp.Body.ResetAt = &u.ResetAt

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get search budget status",
		Description: "Returns the current daily search usage, remaining budget, and window reset time.",
		Tags:        []string{"rainforest"},
	}, h.GetQuota)
}
