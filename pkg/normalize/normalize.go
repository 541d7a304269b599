// Package normalize converts raw search API records into canonical products.
//
// The upstream payload is not stable: the same logical field may be missing,
// null, a nested object, a bare number or a formatted string depending on the
// record. Every field is extracted independently and falls back to its own
// default; only a missing title rejects a record.
package normalize

import (
	"errors"
	"strings"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// ErrMissingTitle is returned when a record carries no usable title.
var ErrMissingTitle = errors.New("missing title")

// Field aliases observed across payload variants, checked in order. Extend
// these when the upstream API grows a new spelling.
var (
	reviewKeys    = []string{"reviews", "reviews_total", "ratings_total"}
	idKeys        = []string{"asin", "id"}
	thumbnailKeys = []string{"thumbnail", "image"}
)

// Dropped identifies a record that could not be normalized.
type Dropped struct {
	Index int
	Err   error
}

// Normalize converts a single raw record into a Product. It fails only with
// ErrMissingTitle; all other malformed fields degrade to their defaults.
func Normalize(raw domain.RawRecord) (domain.Product, error) {
	title, ok := raw["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return domain.Product{}, ErrMissingTitle
	}

	p := domain.Product{
		Title:       title,
		Rating:      parseRating(raw["rating"]),
		ReviewCount: parseReviewCount(firstPresent(raw, reviewKeys)),
		Link:        stringValue(raw["link"]),
		ID:          stringValue(firstPresent(raw, idKeys)),
	}

	p.Price, p.Currency = parsePrice(raw)
	p.ThumbnailURL = parseThumbnail(raw)

	return p, nil
}

// All normalizes raws in order, returning the products that survived and the
// positions of the records that were dropped.
func All(raws []domain.RawRecord) ([]domain.Product, []Dropped) {
	products := make([]domain.Product, 0, len(raws))
	var dropped []Dropped

	for i, raw := range raws {
		p, err := Normalize(raw)
		if err != nil {
			dropped = append(dropped, Dropped{Index: i, Err: err})
			continue
		}
		products = append(products, p)
	}

	return products, dropped
}

// firstPresent returns the value of the first key that is present and
// non-null in raw.
func firstPresent(raw domain.RawRecord, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// stringValue returns v when it is a non-empty string.
func stringValue(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func parseThumbnail(raw domain.RawRecord) string {
	for _, k := range thumbnailKeys {
		if s := stringValue(raw[k]); s != "" {
			return s
		}
	}

	images, ok := raw["images"].([]any)
	if !ok || len(images) == 0 {
		return ""
	}

	switch img := images[0].(type) {
	case string:
		return stringValue(img)
	case map[string]any:
		if s := stringValue(img["link"]); s != "" {
			return s
		}
		return stringValue(img["url"])
	default:
		return ""
	}
}
