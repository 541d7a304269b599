package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/winning-products/internal/engine"
	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// Searcher runs a live search and ranks the results.
type Searcher interface {
	Search(ctx context.Context, p engine.Params) (*engine.Result, error)
}

// SearchHandler handles product search requests.
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(s Searcher) *SearchHandler {
	return &SearchHandler{searcher: s}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	Body struct {
		Term   string `json:"term"             minLength:"1"                  doc:"Search term"                                 example:"wireless earbuds"`
		Domain string `json:"domain,omitempty" doc:"Amazon marketplace domain" example:"amazon.in"`
		Limit  int    `json:"limit,omitempty"  minimum:"1"                    maximum:"100"                                 doc:"Results to normalize (default 12)" example:"12"`
		Top    int    `json:"top,omitempty"    minimum:"1"                    doc:"Size of the top view (default 8)"        example:"8"`
		Mode   string `json:"mode,omitempty"   enum:"score,reviews"           doc:"Ranking mode (default score)"            example:"score"`
	}
}

// SearchOutput is the response body for the search endpoint.
type SearchOutput struct {
	Body ResultBody
}

// Search fetches one page of results from the search API, normalizes and
// ranks them.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	res, err := h.searcher.Search(ctx, engine.Params{
		Term:   input.Body.Term,
		Domain: input.Body.Domain,
		Limit:  input.Body.Limit,
		Top:    input.Body.Top,
		Mode:   domain.RankMode(input.Body.Mode),
	})
	if err != nil {
		return nil, upstreamError(err)
	}

	return &SearchOutput{Body: newResultBody(res)}, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-products",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search and rank products",
		Description: "Fetches one page of search results, normalizes them and ranks them by winning score or review count.",
		Tags:        []string{"search"},
		Errors: []int{
			http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		},
	}, h.Search)
}
