// Package rainforest provides a Rainforest API (Amazon product data) client
// abstracted behind interfaces for testability.
package rainforest

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// ErrMissingAPIKey is returned when a request is attempted without an API key.
var ErrMissingAPIKey = errors.New("rainforest API key is not configured")

// SearchRequest defines the parameters for a single-page product search.
type SearchRequest struct {
	Term   string
	Domain string // overrides the client's default marketplace domain when set
}

// RequestInfo is the request metadata the API returns alongside results.
type RequestInfo struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	CreditsUsed      int    `json:"credits_used"`
	CreditsRemaining *int   `json:"credits_remaining,omitempty"`
}

// SearchResponse holds the raw search results of one API call. Results keep
// the upstream order and shape; normalization happens downstream.
type SearchResponse struct {
	Results     []domain.RawRecord
	RequestInfo RequestInfo
}

// Client defines the interface for searching the product data API.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// AccountFetcher defines the interface for reading account credit usage.
type AccountFetcher interface {
	GetAccount(ctx context.Context) (*AccountInfo, error)
}
