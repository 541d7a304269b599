package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/winning-products/internal/api/handlers"
	domain "github.com/donaldgifford/winning-products/pkg/types"
)

func TestRankHandler_Rank(t *testing.T) {
	t.Parallel()

	records := []map[string]any{
		{"asin": "X", "title": "Cheap kettle", "price": 500, "rating": 3.9, "reviews": 40},
		{"asin": "Y", "title": "Popular kettle", "price": "₹1,200", "rating": 4.4, "reviews": "12,004"},
		{"asin": "Z", "title": "  "},
	}

	tests := []struct {
		name       string
		body       any
		wantStatus int
		check      func(t *testing.T, body handlers.ResultBody)
	}{
		{
			name:       "ranks by score",
			body:       map[string]any{"records": records},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body handlers.ResultBody) {
				t.Helper()
				assert.Equal(t, domain.RankByScore, body.Mode)
				assert.Equal(t, 1, body.Dropped)
				require.Len(t, body.Products, 2)
				assert.Equal(t, "Y", body.Products[0].ID)
				assert.Positive(t, body.Products[0].Score)
			},
		},
		{
			name:       "ranks by reviews",
			body:       map[string]any{"records": records, "mode": "reviews", "top": 1},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body handlers.ResultBody) {
				t.Helper()
				assert.Equal(t, domain.RankByReviews, body.Mode)
				require.Len(t, body.Top, 1)
				assert.Equal(t, "Y", body.Top[0].ID)
				assert.Zero(t, body.Top[0].Score)
			},
		},
		{
			name:       "limit restricts input",
			body:       map[string]any{"records": records, "limit": 1},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body handlers.ResultBody) {
				t.Helper()
				assert.Equal(t, 1, body.Fetched)
				require.Len(t, body.Products, 1)
				assert.Equal(t, "X", body.Products[0].ID)
			},
		},
		{
			name:       "empty records",
			body:       map[string]any{"records": []any{}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body handlers.ResultBody) {
				t.Helper()
				assert.Empty(t, body.Products)
				assert.NotNil(t, body.Products)
			},
		},
		{
			name:       "missing records returns 422",
			body:       map[string]any{"mode": "score"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "bad mode returns 422",
			body:       map[string]any{"records": records, "mode": "price"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterRankRoutes(api, handlers.NewRankHandler(newTestEngine(nil)))

			resp := api.Post("/api/v1/rank", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())

			if tt.check != nil {
				var body handlers.ResultBody
				require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
				tt.check(t, body)
			}
		})
	}
}
