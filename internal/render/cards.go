package render

import (
	"io"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

const cardTitleWidth = 70

// Cards writes a detail block per product.
func Cards(w io.Writer, products []domain.RankedProduct) error {
	tw := newTabWriter(w)
	for i := range products {
		p := &products[i]

		image := p.ThumbnailURL
		if image == "" {
			image = PlaceholderImage
		}

		if i > 0 {
			tw.writef("\n")
		}
		tw.writef("#%d\t%s\n", p.Rank, Truncate(p.Title, cardTitleWidth))
		tw.writef("  Price:\t%s\n", FormatPrice(&p.Product))
		tw.writef("  Rating:\t%.1f (%d reviews)\n", p.Rating, p.ReviewCount)
		tw.writef("  Score:\t%s\n", FormatScore(p.Score))
		tw.writef("  Image:\t%s\n", image)
		if p.Link != "" {
			tw.writef("  Link:\t%s\n", p.Link)
		}
	}
	return tw.finish()
}
