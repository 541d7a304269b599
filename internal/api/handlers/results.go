package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/winning-products/internal/engine"
	"github.com/donaldgifford/winning-products/internal/rainforest"
	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// ResultBody is the response body shared by the search and rank endpoints.
type ResultBody struct {
	Mode             domain.RankMode        `json:"mode"                        doc:"Ranking mode applied"                       example:"score"`
	Products         []domain.RankedProduct `json:"products"                    doc:"All normalized products in rank order"`
	Top              []domain.RankedProduct `json:"top"                         doc:"The leading products of the ranking"`
	Fetched          int                    `json:"fetched"                     doc:"Records considered after applying the limit" example:"12"`
	Normalized       int                    `json:"normalized"                  doc:"Records that normalized into products"        example:"11"`
	Dropped          int                    `json:"dropped"                     doc:"Records dropped for lacking a title"          example:"1"`
	CreditsRemaining *int                   `json:"credits_remaining,omitempty" doc:"Upstream credits left after the call"         example:"88"`
}

func newResultBody(res *engine.Result) ResultBody {
	return ResultBody{
		Mode:             res.Mode,
		Products:         res.Products,
		Top:              res.Top,
		Fetched:          res.Fetched,
		Normalized:       res.Normalized,
		Dropped:          res.Dropped,
		CreditsRemaining: res.CreditsRemaining,
	}
}

// upstreamError maps search API failures onto HTTP status codes.
func upstreamError(err error) error {
	switch {
	case errors.Is(err, engine.ErrEmptyTerm):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, rainforest.ErrMissingAPIKey):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, rainforest.ErrDailyLimitReached):
		return huma.Error429TooManyRequests(err.Error())
	default:
		return huma.Error502BadGateway("rainforest API error: " + err.Error())
	}
}
