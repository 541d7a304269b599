// Package domain defines the core business types for the winning products
// finder.
package domain

import "fmt"

// RawRecord is one untyped product entry exactly as the search API returned
// it. Fields may be missing, null, or differently typed from record to record.
type RawRecord map[string]any

// RankMode selects how a ranking pass orders products.
type RankMode string

// Rank mode constants.
const (
	RankByScore   RankMode = "score"
	RankByReviews RankMode = "reviews"
)

// ParseRankMode converts a user-supplied string into a RankMode. The empty
// string maps to RankByScore.
func ParseRankMode(s string) (RankMode, error) {
	switch RankMode(s) {
	case "", RankByScore:
		return RankByScore, nil
	case RankByReviews:
		return RankByReviews, nil
	default:
		return "", fmt.Errorf("unknown rank mode %q (want score or reviews)", s)
	}
}

// Product is the canonical representation of one search result after
// normalization. Title is always set; every other field degrades to its zero
// value (or nil for Price) when the source record did not carry it.
type Product struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Price        *float64 `json:"price,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"review_count"`
	Link         string   `json:"link,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
}

// HasPrice reports whether the product carries a known price.
func (p *Product) HasPrice() bool {
	return p.Price != nil
}

// PriceOrZero returns the price, or 0 when the price is unknown.
func (p *Product) PriceOrZero() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// RankedProduct is a Product annotated with its winning score and 1-based
// position in the ranked sequence.
type RankedProduct struct {
	Product

	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}
