// Package render formats ranked products for the terminal: an aligned table,
// a horizontal bar chart of the leaders, detail cards, CSV and JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// PlaceholderImage is shown on cards for products without a thumbnail.
const PlaceholderImage = "https://via.placeholder.com/200?text=No+Image"

const ellipsis = "..."

// currencySymbols maps ISO codes to display symbols. An empty currency is
// shown in rupees, the default marketplace.
var currencySymbols = map[string]string{
	"":    "₹",
	"INR": "₹",
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
	"JPY": "¥",
}

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// errWriter collects the first write error so call sites stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Truncate shortens s to at most width display columns, marking the cut
// with an ellipsis. Wide runes count as two columns.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= len(ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// FormatPrice renders a price with its currency symbol and thousands
// separators, or "-" when the price is unknown.
func FormatPrice(p *domain.Product) string {
	if !p.HasPrice() {
		return "-"
	}

	symbol, ok := currencySymbols[strings.ToUpper(p.Currency)]
	if !ok {
		symbol = p.Currency + " "
	}

	fixed := decimal.NewFromFloat(*p.Price).StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return symbol + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatScore rounds a winning score to four decimal places.
func FormatScore(score float64) string {
	return decimal.NewFromFloat(score).StringFixed(4)
}
