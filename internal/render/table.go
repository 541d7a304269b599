package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

const tableTitleWidth = 60

var tableHeader = []string{"#", "TITLE", "PRICE", "RATING", "REVIEWS", "SCORE", "LINK"}

// Table writes the ranked products as an aligned text table. Column widths
// are measured in display columns so that wide runes keep the grid straight.
func Table(w io.Writer, products []domain.RankedProduct) error {
	rows := make([][]string, 0, len(products)+1)
	rows = append(rows, tableHeader)
	for i := range products {
		p := &products[i]
		rows = append(rows, []string{
			strconv.Itoa(p.Rank),
			Truncate(p.Title, tableTitleWidth),
			FormatPrice(&p.Product),
			strconv.FormatFloat(p.Rating, 'f', 1, 64),
			strconv.Itoa(p.ReviewCount),
			FormatScore(p.Score),
			p.Link,
		})
	}

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	ew := &errWriter{w: w}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		ew.printf("%s\n", strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return ew.err
}
