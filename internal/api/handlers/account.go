package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/winning-products/internal/rainforest"
)

// AccountHandler reports upstream credit usage.
type AccountHandler struct {
	fetcher rainforest.AccountFetcher
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(f rainforest.AccountFetcher) *AccountHandler {
	return &AccountHandler{fetcher: f}
}

// AccountOutput is the response body for the account endpoint.
type AccountOutput struct {
	Body struct {
		Plan             string     `json:"plan"                       example:"starter"              doc:"Subscription plan"`
		CreditsUsed      int        `json:"credits_used"               example:"120"                  doc:"Credits spent this period"`
		CreditsLimit     int        `json:"credits_limit"              example:"1000"                 doc:"Credits available per period"`
		CreditsRemaining int        `json:"credits_remaining"          example:"880"                  doc:"Credits left this period"`
		CreditsResetAt   *time.Time `json:"credits_reset_at,omitempty" example:"2026-11-01T00:00:00Z" doc:"When the period resets"`
	}
}

// GetAccount returns the current credit usage of the configured API key.
func (h *AccountHandler) GetAccount(ctx context.Context, _ *struct{}) (*AccountOutput, error) {
	info, err := h.fetcher.GetAccount(ctx)
	if err != nil {
		if errors.Is(err, rainforest.ErrMissingAPIKey) {
			return nil, huma.Error503ServiceUnavailable(err.Error())
		}
		return nil, huma.Error502BadGateway("rainforest API error: " + err.Error())
	}

	resp := &AccountOutput{}
	resp.Body.Plan = info.Plan
	resp.Body.CreditsUsed = info.CreditsUsed
	resp.Body.CreditsLimit = info.CreditsLimit
	resp.Body.CreditsRemaining = info.CreditsRemaining
	resp.Body.CreditsResetAt = info.CreditsResetAt
	return resp, nil
}

// RegisterAccountRoutes registers the account endpoint with the Huma API.
func RegisterAccountRoutes(api huma.API, h *AccountHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/api/v1/account",
		Summary:     "Get API credit usage",
		Description: "Returns the plan and credit usage of the configured search API key.",
		Tags:        []string{"rainforest"},
		Errors:      []int{http.StatusBadGateway, http.StatusServiceUnavailable},
	}, h.GetAccount)
}
