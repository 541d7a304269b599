package render

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

const (
	chartLabelWidth = 45
	// DefaultBarWidth is the length of the longest bar in columns.
	DefaultBarWidth = 40
)

// shades run from faint to solid; a bar's shade follows its intensity.
var shades = []rune{'░', '▒', '▓', '█'}

// Intensity blends score, rating and review count, each relative to the
// largest value in the set, into a 0..1 emphasis used to shade chart bars.
// A zero maximum is treated as 1.
func Intensity(p *domain.RankedProduct, maxScore, maxRating float64, maxReviews int) float64 {
	if maxScore <= 0 {
		maxScore = 1
	}
	if maxRating <= 0 {
		maxRating = 1
	}
	if maxReviews <= 0 {
		maxReviews = 1
	}

	v := 0.5*p.Score/maxScore +
		0.3*p.Rating/maxRating +
		0.2*float64(p.ReviewCount)/float64(maxReviews)
	return math.Max(0, math.Min(1, v))
}

func shade(intensity float64) rune {
	i := int(intensity * float64(len(shades)))
	return shades[min(max(i, 0), len(shades)-1)]
}

// BarChart draws one horizontal bar per product. In score mode bars measure
// the winning score; in reviews mode they measure the review count.
func BarChart(w io.Writer, products []domain.RankedProduct, mode domain.RankMode, width int) error {
	if width <= 0 {
		width = DefaultBarWidth
	}

	var maxScore, maxRating, maxValue float64
	var maxReviews int
	for i := range products {
		p := &products[i]
		maxScore = math.Max(maxScore, p.Score)
		maxRating = math.Max(maxRating, p.Rating)
		maxReviews = max(maxReviews, p.ReviewCount)
		maxValue = math.Max(maxValue, barValue(p, mode))
	}

	ew := &errWriter{w: w}
	for i := range products {
		p := &products[i]

		n := 0
		if maxValue > 0 {
			n = int(math.Round(barValue(p, mode) / maxValue * float64(width)))
		}
		bar := strings.Repeat(string(shade(Intensity(p, maxScore, maxRating, maxReviews))), n)

		label := runewidth.FillRight(Truncate(p.Title, chartLabelWidth), chartLabelWidth)
		ew.printf("%s │%s %s\n", label, bar, annotation(p, mode))
	}
	return ew.err
}

func barValue(p *domain.RankedProduct, mode domain.RankMode) float64 {
	if mode == domain.RankByReviews {
		return float64(p.ReviewCount)
	}
	return p.Score
}

func annotation(p *domain.RankedProduct, mode domain.RankMode) string {
	if mode == domain.RankByReviews {
		return strconv.Itoa(p.ReviewCount) + " reviews (" + FormatPrice(&p.Product) + ")"
	}
	return FormatScore(p.Score) + " (" + FormatPrice(&p.Product) + ")"
}
