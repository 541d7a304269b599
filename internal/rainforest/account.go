package rainforest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/donaldgifford/winning-products/internal/metrics"
)

// AccountInfo holds the credit state of the API account.
type AccountInfo struct {
	Plan             string
	CreditsUsed      int
	CreditsLimit     int
	CreditsRemaining int
	CreditsResetAt   *time.Time
}

type accountAPIResponse struct {
	RequestInfo RequestInfo    `json:"request_info"`
	AccountInfo accountPayload `json:"account_info"`
}

type accountPayload struct {
	Plan             string `json:"plan"`
	CreditsUsed      int    `json:"credits_used"`
	CreditsLimit     int    `json:"credits_limit"`
	CreditsRemaining int    `json:"credits_remaining"`
	CreditsResetAt   string `json:"credits_reset_at"`
}

// GetAccount returns the current credit usage for the configured API key.
// Account lookups are free upstream and bypass the local rate limiter.
func (c *HTTPClient) GetAccount(ctx context.Context) (*AccountInfo, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)

	body, err := c.get(ctx, endpointAccount, "/account", params)
	if err != nil {
		return nil, err
	}

	var apiResp accountAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.RainforestRequestsTotal.WithLabelValues(endpointAccount, "decode_error").Inc()
		return nil, fmt.Errorf("parsing account response: %w", err)
	}

	return toAccountInfo(apiResp.AccountInfo)
}

func toAccountInfo(p accountPayload) (*AccountInfo, error) {
	info := &AccountInfo{
		Plan:             p.Plan,
		CreditsUsed:      p.CreditsUsed,
		CreditsLimit:     p.CreditsLimit,
		CreditsRemaining: p.CreditsRemaining,
	}

	if p.CreditsResetAt != "" {
		resetAt, err := time.Parse(time.RFC3339, p.CreditsResetAt)
		if err != nil {
			return nil, fmt.Errorf("parsing reset time %q: %w", p.CreditsResetAt, err)
		}
		info.CreditsResetAt = &resetAt
	}

	metrics.RainforestCreditsRemaining.Set(float64(info.CreditsRemaining))

	return info, nil
}
