package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/winning-products/internal/engine"
	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// Ranker ranks records that were fetched earlier.
type Ranker interface {
	RankRecords(records []domain.RawRecord, p engine.Params) *engine.Result
}

// RankHandler handles offline ranking requests.
type RankHandler struct {
	ranker Ranker
}

// NewRankHandler creates a new RankHandler.
func NewRankHandler(r Ranker) *RankHandler {
	return &RankHandler{ranker: r}
}

// RankInput is the request body for the rank endpoint.
type RankInput struct {
	Body struct {
		Records []domain.RawRecord `json:"records"         doc:"Raw search result records"`
		Limit   int                `json:"limit,omitempty" minimum:"1"              maximum:"100"                    doc:"Records to consider (default 12)"`
		Top     int                `json:"top,omitempty"   minimum:"1"              doc:"Size of the top view (default 8)"`
		Mode    string             `json:"mode,omitempty"  enum:"score,reviews"     doc:"Ranking mode (default score)"`
	}
}

// RankOutput is the response body for the rank endpoint.
type RankOutput struct {
	Body ResultBody
}

// Rank normalizes and ranks the supplied records without calling the
// search API.
func (h *RankHandler) Rank(_ context.Context, input *RankInput) (*RankOutput, error) {
	res := h.ranker.RankRecords(input.Body.Records, engine.Params{
		Limit: input.Body.Limit,
		Top:   input.Body.Top,
		Mode:  domain.RankMode(input.Body.Mode),
	})
	return &RankOutput{Body: newResultBody(res)}, nil
}

// RegisterRankRoutes registers the offline ranking endpoint.
func RegisterRankRoutes(api huma.API, h *RankHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "rank-records",
		Method:      http.MethodPost,
		Path:        "/api/v1/rank",
		Summary:     "Rank saved search results",
		Description: "Normalizes and ranks raw search result records supplied by the caller.",
		Tags:        []string{"search"},
	}, h.Rank)
}
