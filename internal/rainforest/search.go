package rainforest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/winning-products/internal/metrics"
	domain "github.com/donaldgifford/winning-products/pkg/types"
)

const (
	defaultBaseURL = "https://api.rainforestapi.com"
	defaultDomain  = "amazon.in"

	endpointSearch  = "search"
	endpointAccount = "account"

	instrumentationName = "github.com/donaldgifford/winning-products/internal/rainforest"
)

// HTTPClient implements Client and AccountFetcher against the Rainforest
// HTTP API. The API key is passed through as a query parameter on every call.
type HTTPClient struct {
	apiKey      string
	baseURL     string
	domain      string
	client      *http.Client
	rateLimiter *RateLimiter
	tracer      trace.Tracer
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithDomain overrides the default Amazon marketplace domain.
func WithDomain(d string) Option {
	return func(c *HTTPClient) {
		c.domain = d
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter that controls per-second and daily
// call limits. When set, every Search() call goes through Wait() first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// WithTracerProvider sets the provider used for upstream call spans. The
// global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *HTTPClient) {
		c.tracer = tp.Tracer(instrumentationName)
	}
}

// NewHTTPClient creates a new Rainforest API client for the given key.
func NewHTTPClient(apiKey string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		domain:  defaultDomain,
		client:  &http.Client{Timeout: 30 * time.Second},
		tracer:  otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Domain returns the default marketplace domain used for searches.
func (c *HTTPClient) Domain() string {
	return c.domain
}

type searchAPIResponse struct {
	RequestInfo   RequestInfo        `json:"request_info"`
	SearchResults []domain.RawRecord `json:"search_results"`
}

// Search implements Client.Search with a single GET against /request.
func (c *HTTPClient) Search(
	ctx context.Context,
	req SearchRequest,
) (*SearchResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.RainforestDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.RainforestDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}

	body, err := c.get(ctx, endpointSearch, "/request", c.searchParams(req))
	if err != nil {
		return nil, err
	}

	resp, err := DecodeSearchResponse(body)
	if err != nil {
		metrics.RainforestRequestsTotal.WithLabelValues(endpointSearch, "decode_error").Inc()
		return nil, err
	}

	if resp.RequestInfo.CreditsRemaining != nil {
		metrics.RainforestCreditsRemaining.Set(float64(*resp.RequestInfo.CreditsRemaining))
	}

	return resp, nil
}

// DecodeSearchResponse parses a search response document. Besides the full
// API envelope it accepts a bare JSON array of result records, the shape
// produced when results are saved on their own. Numbers are kept as
// json.Number so that large integers survive untouched.
func DecodeSearchResponse(data []byte) (*SearchResponse, error) {
	trimmed := bytes.TrimSpace(data)

	var apiResp searchAPIResponse
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var err error
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = dec.Decode(&apiResp.SearchResults)
	} else {
		err = dec.Decode(&apiResp)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	results := apiResp.SearchResults
	if results == nil {
		results = []domain.RawRecord{}
	}

	return &SearchResponse{
		Results:     results,
		RequestInfo: apiResp.RequestInfo,
	}, nil
}

func (c *HTTPClient) searchParams(req SearchRequest) url.Values {
	d := req.Domain
	if d == "" {
		d = c.domain
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("type", "search")
	params.Set("amazon_domain", d)
	params.Set("search_term", req.Term)
	return params
}

// get performs a GET request and returns the body of a 200 response.
func (c *HTTPClient) get(
	ctx context.Context,
	endpoint, path string,
	params url.Values,
) ([]byte, error) {
	u := c.baseURL + path + "?" + params.Encode()

	ctx, span := c.tracer.Start(ctx, "rainforest."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", c.redact(err))
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	metrics.RainforestRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RainforestRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		err = fmt.Errorf("executing %s request: %w", endpoint, c.redact(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RainforestRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RainforestRequestsTotal.WithLabelValues(endpoint, "status_error").Inc()
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return nil, fmt.Errorf(
			"rainforest API error (status %d): %s",
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	metrics.RainforestRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

// redact strips the API key from URLs embedded in transport errors.
func (c *HTTPClient) redact(err error) error {
	var urlErr *url.Error
	if c.apiKey != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(c.apiKey), "REDACTED")
	}
	return err
}
