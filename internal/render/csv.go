package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

var csvHeader = []string{
	"rank", "id", "title", "price", "currency", "rating", "reviews", "score", "link", "thumbnail_url",
}

// CSV writes the ranked products with a header row. Unknown prices are left
// empty rather than written as zero.
func CSV(w io.Writer, products []domain.RankedProduct) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i := range products {
		p := &products[i]

		price := ""
		if p.HasPrice() {
			price = strconv.FormatFloat(*p.Price, 'f', -1, 64)
		}

		if err := cw.Write([]string{
			strconv.Itoa(p.Rank),
			p.ID,
			p.Title,
			price,
			p.Currency,
			strconv.FormatFloat(p.Rating, 'f', -1, 64),
			strconv.Itoa(p.ReviewCount),
			strconv.FormatFloat(p.Score, 'f', -1, 64),
			p.Link,
			p.ThumbnailURL,
		}); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
