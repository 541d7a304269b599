package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

const (
	// MinorUnitThreshold is the magnitude above which a structured price
	// value is assumed to be expressed in minor currency units.
	MinorUnitThreshold = 100_000

	maxRating = 5.0
)

var hundred = decimal.NewFromInt(100)

// InferPriceUnit converts a structured price value to major currency units.
//
// The upstream API reports some prices in minor units (paise, cents) and
// others in major units without any field telling them apart. Values above
// MinorUnitThreshold are taken to be minor units, divided by 100 and rounded
// to two decimal places; anything else is returned unchanged. This is a
// best-effort inference from magnitude, not a guarantee: a genuine major-unit
// price above the threshold will be scaled down.
func InferPriceUnit(value float64) float64 {
	if value <= MinorUnitThreshold || math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	f, _ := decimal.NewFromFloat(value).Div(hundred).Round(2).Float64()
	return f
}

// parsePrice extracts the price and its currency. The price field may be an
// object with value/currency, a bare number, or formatted text; when it
// yields nothing the first entry of the prices list is tried.
func parsePrice(raw domain.RawRecord) (*float64, string) {
	p, cur := priceFromValue(raw["price"])
	if p != nil {
		return p, cur
	}

	if prices, ok := raw["prices"].([]any); ok && len(prices) > 0 {
		if fp, fcur := priceFromValue(prices[0]); fp != nil {
			if fcur == "" {
				fcur = cur
			}
			return fp, fcur
		}
	}

	return nil, cur
}

func priceFromValue(v any) (*float64, string) {
	switch t := v.(type) {
	case nil:
		return nil, ""
	case map[string]any:
		cur := stringValue(t["currency"])
		if f, ok := toFloat(t["value"]); ok {
			return validPrice(InferPriceUnit(f)), cur
		}
		if s, ok := t["value"].(string); ok {
			return parsePriceText(s), cur
		}
		if s, ok := t["raw"].(string); ok {
			return parsePriceText(s), cur
		}
		return nil, cur
	case string:
		return parsePriceText(t), ""
	default:
		if f, ok := toFloat(t); ok {
			return validPrice(f), ""
		}
		return nil, ""
	}
}

// parsePriceText strips currency symbols, thousands separators and any other
// character that is not a digit or a decimal point, then parses the rest.
// Dots left at either end come from abbreviations like "Rs." and are dropped.
func parsePriceText(s string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return validPrice(f)
}

func validPrice(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	return &f
}

func parseRating(v any) float64 {
	f, ok := toFloat(v)
	if !ok {
		s, isStr := v.(string)
		if !isStr {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
	}

	if math.IsNaN(f) || f < 0 || f > maxRating {
		return 0
	}
	return f
}

func parseReviewCount(v any) int {
	f, ok := toFloat(v)
	if !ok {
		s, isStr := v.(string)
		if !isStr {
			return 0
		}
		s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)
		if n, err := strconv.Atoi(s); err == nil {
			return max(n, 0)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	}

	if math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return 0
	}
	return int(f)
}

// toFloat reports the numeric value of v for every number representation a
// JSON decoder (with or without UseNumber) or a Go caller may produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
