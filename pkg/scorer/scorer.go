package score

import (
	"cmp"
	"math"
	"slices"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// Score computes the winning score for a product:
//
//	rating * ln(1 + reviewCount) / (price + 1)
//
// An unknown price counts as 0, giving the neutral denominator of 1. Any
// input that would produce a negative or non-finite result scores 0 so one
// malformed product cannot disturb the rest of a ranking pass.
func Score(p domain.Product) float64 {
	popularity := reviewWeight(p.ReviewCount)
	denom := p.PriceOrZero() + 1

	if denom <= 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return 0
	}

	s := p.Rating * popularity / denom
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return 0
	}
	return s
}

// reviewWeight grows sublinearly with review volume and is 0 at zero reviews.
func reviewWeight(reviews int) float64 {
	if reviews <= 0 {
		return 0
	}
	return math.Log1p(float64(reviews))
}

// Rank orders products and assigns 1-based ranks. In RankByScore mode the
// order is descending winning score; in RankByReviews mode scoring is skipped
// and the order is descending review count. Equal keys keep their input
// order. The input slice is not modified.
func Rank(products []domain.Product, mode domain.RankMode) []domain.RankedProduct {
	ranked := make([]domain.RankedProduct, len(products))
	for i := range products {
		ranked[i] = domain.RankedProduct{Product: products[i]}
		if products[i].Price != nil {
			price := *products[i].Price
			ranked[i].Price = &price
		}
		if mode != domain.RankByReviews {
			ranked[i].Score = Score(products[i])
		}
	}

	if mode == domain.RankByReviews {
		slices.SortStableFunc(ranked, func(a, b domain.RankedProduct) int {
			return cmp.Compare(b.ReviewCount, a.ReviewCount)
		})
	} else {
		slices.SortStableFunc(ranked, func(a, b domain.RankedProduct) int {
			return cmp.Compare(b.Score, a.Score)
		})
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}

// Top returns the first n ranked products. A non-positive n, or one larger
// than the slice, returns everything.
func Top(ranked []domain.RankedProduct, n int) []domain.RankedProduct {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
