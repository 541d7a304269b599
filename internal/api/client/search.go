package client

import (
	"context"
	"time"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// SearchParams are the request fields of POST /api/v1/search.
type SearchParams struct {
	Term   string `json:"term"`
	Domain string `json:"domain,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Top    int    `json:"top,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

// RankParams are the request fields of POST /api/v1/rank.
type RankParams struct {
	Records []domain.RawRecord `json:"records"`
	Limit   int                `json:"limit,omitempty"`
	Top     int                `json:"top,omitempty"`
	Mode    string             `json:"mode,omitempty"`
}

// Result is the response body of the search and rank endpoints.
type Result struct {
	Mode             domain.RankMode        `json:"mode"`
	Products         []domain.RankedProduct `json:"products"`
	Top              []domain.RankedProduct `json:"top"`
	Fetched          int                    `json:"fetched"`
	Normalized       int                    `json:"normalized"`
	Dropped          int                    `json:"dropped"`
	CreditsRemaining *int                   `json:"credits_remaining,omitempty"`
}

// Account is the response body of GET /api/v1/account.
type Account struct {
	Plan             string     `json:"plan"`
	CreditsUsed      int        `json:"credits_used"`
	CreditsLimit     int        `json:"credits_limit"`
	CreditsRemaining int        `json:"credits_remaining"`
	CreditsResetAt   *time.Time `json:"credits_reset_at,omitempty"`
}

// Quota is the response body of GET /api/v1/quota.
type Quota struct {
	DailyLimit int64      `json:"daily_limit"`
	DailyUsed  int64      `json:"daily_used"`
	Remaining  int64      `json:"remaining"`
	ResetAt    *time.Time `json:"reset_at,omitempty"`
}

// Search runs a search on the server.
func (c *Client) Search(ctx context.Context, p *SearchParams) (*Result, error) {
	var res Result
	if err := c.post(ctx, "/api/v1/search", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Rank ranks previously fetched records on the server.
func (c *Client) Rank(ctx context.Context, p *RankParams) (*Result, error) {
	var res Result
	if err := c.post(ctx, "/api/v1/rank", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAccount returns the upstream credit usage reported by the server.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	var acct Account
	if err := c.get(ctx, "/api/v1/account", &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetQuota returns the server's local search budget.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", &q); err != nil {
		return nil, err
	}
	return &q, nil
}
