package render

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

func ptr(f float64) *float64 { return &f }

func sampleRanked() []domain.RankedProduct {
	return []domain.RankedProduct{
		{
			Product: domain.Product{
				ID: "B01", Title: "Boat Airdopes 141 Bluetooth Truly Wireless in Ear Earbuds with 42H Playtime",
				Price: ptr(1499), Currency: "INR", Rating: 4.1, ReviewCount: 320512,
				Link: "https://www.amazon.in/dp/B01", ThumbnailURL: "https://m.media-amazon.com/b01.jpg",
			},
			Score: 0.03468, Rank: 1,
		},
		{
			Product: domain.Product{ID: "B02", Title: "ワイヤレスイヤホン", Price: ptr(2999.5), Rating: 4.4, ReviewCount: 800},
			Score:   0.00979, Rank: 2,
		},
		{
			Product: domain.Product{ID: "B03", Title: "No price earbuds", Rating: 3.0},
			Score:   0, Rank: 3,
		},
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "short string untouched", in: "kettle", width: 10, want: "kettle"},
		{name: "exact fit", in: "kettle", width: 6, want: "kettle"},
		{name: "ascii cut", in: "stainless steel kettle", width: 10, want: "stainle..."},
		{name: "wide runes counted double", in: "ワイヤレスイヤホン", width: 8, want: "ワイ..."},
		{name: "tiny width drops ellipsis", in: "kettle", width: 2, want: "ke"},
		{name: "zero width", in: "kettle", width: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Truncate(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, runewidth.StringWidth(got), max(tt.width, 0))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    domain.Product
		want string
	}{
		{name: "unknown", p: domain.Product{}, want: "-"},
		{name: "rupees by default", p: domain.Product{Price: ptr(1499)}, want: "₹1,499.00"},
		{name: "zero", p: domain.Product{Price: ptr(0)}, want: "₹0.00"},
		{name: "dollars", p: domain.Product{Price: ptr(12.5), Currency: "usd"}, want: "$12.50"},
		{name: "large grouping", p: domain.Product{Price: ptr(1234567.891), Currency: "INR"}, want: "₹1,234,567.89"},
		{name: "unknown code", p: domain.Product{Price: ptr(99), Currency: "AUD"}, want: "AUD 99.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatPrice(&tt.p))
		})
	}
}

func TestFormatScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.0347", FormatScore(0.03468))
	assert.Equal(t, "0.0000", FormatScore(0))
	assert.Equal(t, "1.2346", FormatScore(1.23456))
}

func TestTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleRanked()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "#  TITLE"))
	assert.Contains(t, lines[1], "₹1,499.00")
	assert.Contains(t, lines[1], "320512")
	assert.Contains(t, lines[1], "0.0347")
	assert.Contains(t, lines[1], "...")
	assert.Contains(t, lines[3], " - ")

	// PRICE column starts at the same display column on every row.
	col := func(line, needle string) int {
		idx := strings.Index(line, needle)
		require.GreaterOrEqual(t, idx, 0, "%q not in %q", needle, line)
		return runewidth.StringWidth(line[:idx])
	}
	priceCol := col(lines[0], "PRICE")
	assert.Equal(t, priceCol, col(lines[1], "₹1,499.00"))
	assert.Equal(t, priceCol, col(lines[2], "₹2,999.50"))
}

func TestTable_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, nil))
	assert.Equal(t, "#  TITLE  PRICE  RATING  REVIEWS  SCORE  LINK\n", buf.String())
}

func TestIntensity(t *testing.T) {
	t.Parallel()

	p := &domain.RankedProduct{Product: domain.Product{Rating: 4, ReviewCount: 50}, Score: 0.5}

	assert.InDelta(t, 0.5*0.5+0.3*0.8+0.2*0.5, Intensity(p, 1, 5, 100), 1e-12)
	assert.InDelta(t, 1.0, Intensity(p, 0.5, 4, 50), 1e-12)
	// Zero maxima fall back to 1 and the result is clamped.
	assert.InDelta(t, 1.0, Intensity(p, 0, 0, 0), 1e-12)
}

func TestBarChart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, BarChart(&buf, sampleRanked(), domain.RankByScore, 20))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	// The leader gets the full-width solid bar.
	assert.Contains(t, lines[0], "│"+strings.Repeat("█", 20)+" 0.0347 (₹1,499.00)")
	// A zero score draws no bar.
	assert.Contains(t, lines[2], "│ 0.0000 (-)")

	for _, line := range lines {
		label, _, ok := strings.Cut(line, " │")
		require.True(t, ok)
		assert.Equal(t, chartLabelWidth, runewidth.StringWidth(label))
	}
}

func TestBarChart_ReviewsMode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, BarChart(&buf, sampleRanked(), domain.RankByReviews, 0))

	out := buf.String()
	assert.Contains(t, out, "320512 reviews (₹1,499.00)")
	assert.Contains(t, out, "0 reviews (-)")
	assert.Equal(t, DefaultBarWidth, strings.Count(strings.Split(out, "\n")[0], "▓")+
		strings.Count(strings.Split(out, "\n")[0], "█")+
		strings.Count(strings.Split(out, "\n")[0], "▒")+
		strings.Count(strings.Split(out, "\n")[0], "░"))
}

func TestCards(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Cards(&buf, sampleRanked()))

	out := buf.String()
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Boat Airdopes 141")
	assert.Contains(t, out, "https://m.media-amazon.com/b01.jpg")
	assert.Contains(t, out, PlaceholderImage)
	assert.Contains(t, out, "4.1 (320512 reviews)")
	assert.Contains(t, out, "0.0347")
	assert.Contains(t, out, "https://www.amazon.in/dp/B01")
	assert.Equal(t, 2, strings.Count(out, PlaceholderImage))
}

func TestCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleRanked()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"1", "B01",
		"Boat Airdopes 141 Bluetooth Truly Wireless in Ear Earbuds with 42H Playtime",
		"1499", "INR", "4.1", "320512", "0.03468",
		"https://www.amazon.in/dp/B01", "https://m.media-amazon.com/b01.jpg",
	}, records[1])
	assert.Equal(t, "2999.5", records[2][3])
	assert.Empty(t, records[3][3], "unknown price should be empty")
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleRanked()[:1]))
	assert.Contains(t, buf.String(), `"score": 0.03468`)
	assert.Contains(t, buf.String(), `"rank": 1`)
	assert.Contains(t, buf.String(), `"price": 1499`)
}
