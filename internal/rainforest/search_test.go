package rainforest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/winning-products/internal/rainforest"
)

func TestHTTPClient_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		req        rainforest.SearchRequest
		handler    http.HandlerFunc
		wantErr    bool
		errContain string
		wantItems  int
	}{
		{
			name: "successful search with results",
			req:  rainforest.SearchRequest{Term: "wireless earbuds"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/request", r.URL.Path)
				assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
				assert.Equal(t, "search", r.URL.Query().Get("type"))
				assert.Equal(t, "amazon.in", r.URL.Query().Get("amazon_domain"))
				assert.Equal(t, "wireless earbuds", r.URL.Query().Get("search_term"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"request_info": {"success": true, "credits_used": 12, "credits_remaining": 88},
					"search_results": [
						{"asin": "B01", "title": "Earbuds A", "price": {"value": 1499, "currency": "INR"}, "rating": 4.3, "ratings_total": 1520},
						{"asin": "B02", "title": "Earbuds B", "price": {"raw": "₹2,999"}}
					]
				}`))
			},
			wantItems: 2,
		},
		{
			name: "domain override",
			req:  rainforest.SearchRequest{Term: "mouse", Domain: "amazon.com"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "amazon.com", r.URL.Query().Get("amazon_domain"))
				_, _ = w.Write([]byte(`{"search_results": []}`))
			},
			wantItems: 0,
		},
		{
			name: "missing results list",
			req:  rainforest.SearchRequest{Term: "nothing"},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"request_info": {"success": true}}`))
			},
			wantItems: 0,
		},
		{
			name: "401 unauthorized response",
			req:  rainforest.SearchRequest{Term: "test"},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"request_info": {"success": false, "message": "invalid api_key"}}`))
			},
			wantErr:    true,
			errContain: "status 401",
		},
		{
			name: "500 server error response",
			req:  rainforest.SearchRequest{Term: "test"},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr:    true,
			errContain: "status 500",
		},
		{
			name: "invalid JSON response",
			req:  rainforest.SearchRequest{Term: "test"},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not valid json"))
			},
			wantErr:    true,
			errContain: "parsing search response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := rainforest.NewHTTPClient("test-key", rainforest.WithBaseURL(srv.URL))

			resp, err := client.Search(context.Background(), tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.NotNil(t, resp.Results)
			assert.Len(t, resp.Results, tt.wantItems)
		})
	}
}

func TestHTTPClient_Search_PreservesRawShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"request_info": {"success": true, "credits_remaining": 41},
			"search_results": [{"title": "Kettle", "price": {"value": 149900}, "reviews": "1,204"}]
		}`))
	}))
	defer srv.Close()

	client := rainforest.NewHTTPClient("k", rainforest.WithBaseURL(srv.URL+"/"))
	resp, err := client.Search(context.Background(), rainforest.SearchRequest{Term: "kettle"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	rec := resp.Results[0]
	assert.Equal(t, "Kettle", rec["title"])
	assert.Equal(t, "1,204", rec["reviews"])

	price, ok := rec["price"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("149900"), price["value"])

	require.NotNil(t, resp.RequestInfo.CreditsRemaining)
	assert.Equal(t, 41, *resp.RequestInfo.CreditsRemaining)
}

func TestHTTPClient_Search_MissingAPIKey(t *testing.T) {
	t.Parallel()

	client := rainforest.NewHTTPClient("")
	_, err := client.Search(context.Background(), rainforest.SearchRequest{Term: "x"})
	require.ErrorIs(t, err, rainforest.ErrMissingAPIKey)
}

func TestHTTPClient_Search_RedactsKeyInTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := rainforest.NewHTTPClient(
		"super-secret",
		rainforest.WithBaseURL(baseURL),
		rainforest.WithHTTPClient(&http.Client{Timeout: time.Second}),
	)

	_, err := client.Search(context.Background(), rainforest.SearchRequest{Term: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing search request")
	assert.NotContains(t, err.Error(), "super-secret")
	assert.Contains(t, err.Error(), "REDACTED")
}

func TestHTTPClient_Search_RateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"search_results": []}`))
	}))
	defer srv.Close()

	// Rate limiter with daily limit of 1.
	rl := rainforest.NewRateLimiter(100, 10, 1)
	client := rainforest.NewHTTPClient(
		"k",
		rainforest.WithBaseURL(srv.URL),
		rainforest.WithRateLimiter(rl),
	)

	_, err := client.Search(context.Background(), rainforest.SearchRequest{Term: "test"})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), rainforest.SearchRequest{Term: "test"})
	require.ErrorIs(t, err, rainforest.ErrDailyLimitReached)
	assert.Contains(t, err.Error(), "rate limit:")
}

func TestHTTPClient_Domain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "amazon.in", rainforest.NewHTTPClient("k").Domain())
	assert.Equal(t, "amazon.co.uk", rainforest.NewHTTPClient("k", rainforest.WithDomain("amazon.co.uk")).Domain())
}

func TestDecodeSearchResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantItems int
		wantErr   bool
	}{
		{name: "envelope", input: `{"search_results": [{"title": "A"}, {"title": "B"}]}`, wantItems: 2},
		{name: "bare array", input: "  [{\"title\": \"A\"}]\n", wantItems: 1},
		{name: "envelope without results", input: `{"request_info": {}}`, wantItems: 0},
		{name: "empty array", input: `[]`, wantItems: 0},
		{name: "empty document", input: "", wantErr: true},
		{name: "scalar", input: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := rainforest.DecodeSearchResponse([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "parsing search response")
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, resp.Results)
			assert.Len(t, resp.Results, tt.wantItems)
		})
	}
}

func TestHTTPClient_Search_Spans(t *testing.T) {
	t.Parallel()

	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"search_results": []}`))
	}))
	defer srv.Close()

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	c := rainforest.NewHTTPClient("test-key",
		rainforest.WithBaseURL(srv.URL),
		rainforest.WithTracerProvider(tp),
	)

	_, err := c.Search(context.Background(), rainforest.SearchRequest{Term: "kettle"})
	require.NoError(t, err)

	status.Store(http.StatusInternalServerError)
	_, err = c.Search(context.Background(), rainforest.SearchRequest{Term: "kettle"})
	require.Error(t, err)

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, "rainforest.search", s.Name)
		assert.Equal(t, trace.SpanKindClient, s.SpanKind)
	}
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}
