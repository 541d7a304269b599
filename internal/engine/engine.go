package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/winning-products/internal/metrics"
	"github.com/donaldgifford/winning-products/internal/rainforest"
	"github.com/donaldgifford/winning-products/pkg/normalize"
	score "github.com/donaldgifford/winning-products/pkg/scorer"
	domain "github.com/donaldgifford/winning-products/pkg/types"
)

const (
	// DefaultLimit is the number of search results normalized per query.
	DefaultLimit = 12
	// MaxLimit caps the limit accepted from callers.
	MaxLimit = 100
	// DefaultTop is the size of the top-N view.
	DefaultTop = 8
)

const instrumentationName = "github.com/donaldgifford/winning-products/internal/engine"

// ErrEmptyTerm is returned when a search is attempted without a term.
var ErrEmptyTerm = errors.New("search term is empty")

// Params controls a single search or offline ranking pass. Zero values fall
// back to the engine defaults.
type Params struct {
	Term   string
	Domain string
	Limit  int
	Top    int
	Mode   domain.RankMode
}

// Result is the outcome of one pipeline pass.
type Result struct {
	Mode       domain.RankMode
	Products   []domain.RankedProduct
	Top        []domain.RankedProduct
	Fetched    int
	Normalized int
	Dropped    int

	// CreditsRemaining is reported by the upstream API on live searches.
	CreditsRemaining *int
}

// Engine runs the fetch, normalize and rank pipeline.
type Engine struct {
	client rainforest.Client
	log    *slog.Logger

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	searchDuration metric.Float64Histogram

	limit int
	top   int
	mode  domain.RankMode
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTracerProvider sets the provider used for pipeline spans. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) EngineOption {
	return func(e *Engine) {
		e.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider used for the search duration
// histogram. The global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) EngineOption {
	return func(e *Engine) {
		e.meterProvider = mp
	}
}

// WithLimit sets the default number of results to normalize.
func WithLimit(n int) EngineOption {
	return func(e *Engine) {
		e.limit = n
	}
}

// WithTop sets the default top-N size.
func WithTop(n int) EngineOption {
	return func(e *Engine) {
		e.top = n
	}
}

// WithMode sets the default ranking mode.
func WithMode(m domain.RankMode) EngineOption {
	return func(e *Engine) {
		e.mode = m
	}
}

// NewEngine creates a new Engine. The client may be nil when the engine is
// only used for offline ranking.
func NewEngine(c rainforest.Client, opts ...EngineOption) *Engine {
	eng := &Engine{
		client:         c,
		log:            slog.Default(),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		limit:          DefaultLimit,
		top:            DefaultTop,
		mode:           domain.RankByScore,
	}
	for _, opt := range opts {
		opt(eng)
	}

	eng.tracer = eng.tracerProvider.Tracer(instrumentationName)
	hist, err := eng.meterProvider.Meter(instrumentationName).Float64Histogram(
		"wp.search.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of live search pipeline passes."),
	)
	if err != nil {
		eng.log.Warn("creating search duration histogram", "error", err)
		hist = noop.Float64Histogram{}
	}
	eng.searchDuration = hist

	return eng
}

// Search fetches one page of results for p.Term and ranks them.
func (eng *Engine) Search(ctx context.Context, p Params) (*Result, error) {
	term := strings.TrimSpace(p.Term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	if eng.client == nil {
		return nil, rainforest.ErrMissingAPIKey
	}

	ctx, span := eng.tracer.Start(ctx, "engine.Search", trace.WithAttributes(
		attribute.String("search.term", term),
		attribute.String("search.domain", p.Domain),
	))
	defer span.End()

	start := time.Now()
	resp, err := eng.client.Search(ctx, rainforest.SearchRequest{
		Term:   term,
		Domain: p.Domain,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		eng.searchDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("outcome", "error")))
		return nil, fmt.Errorf("searching %q: %w", term, err)
	}

	eng.log.Info("search results fetched",
		"term", term,
		"domain", p.Domain,
		"results", len(resp.Results),
	)

	res := eng.RankRecords(resp.Results, p)
	res.CreditsRemaining = resp.RequestInfo.CreditsRemaining

	span.SetAttributes(
		attribute.String("rank.mode", string(res.Mode)),
		attribute.Int("records.fetched", res.Fetched),
		attribute.Int("records.normalized", res.Normalized),
		attribute.Int("records.dropped", res.Dropped),
	)
	eng.searchDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("outcome", "ok")))

	return res, nil
}

// RankRecords runs the normalize and rank stages over already-fetched
// records. Only the first limit records are considered.
func (eng *Engine) RankRecords(records []domain.RawRecord, p Params) *Result {
	limit := eng.resolveLimit(p.Limit)
	top := eng.resolveTop(p.Top)
	mode := p.Mode
	if mode == "" {
		mode = eng.mode
	}

	if len(records) > limit {
		records = records[:limit]
	}
	metrics.RecordsFetchedTotal.Add(float64(len(records)))

	products, dropped := normalize.All(records)
	for _, d := range dropped {
		eng.log.Debug("record dropped", "index", d.Index, "reason", d.Err)
		metrics.RecordsDroppedTotal.WithLabelValues(dropReason(d.Err)).Inc()
	}
	metrics.RecordsNormalizedTotal.Add(float64(len(products)))

	ranked := score.Rank(products, mode)
	metrics.RankingPassesTotal.WithLabelValues(string(mode)).Inc()
	if mode == domain.RankByScore {
		for i := range ranked {
			metrics.ScoreDistribution.Observe(ranked[i].Score)
		}
	}

	return &Result{
		Mode:       mode,
		Products:   ranked,
		Top:        score.Top(ranked, top),
		Fetched:    len(records),
		Normalized: len(products),
		Dropped:    len(dropped),
	}
}

func (eng *Engine) resolveLimit(n int) int {
	if n <= 0 {
		n = eng.limit
	}
	if n <= 0 {
		n = DefaultLimit
	}
	return min(n, MaxLimit)
}

func (eng *Engine) resolveTop(n int) int {
	if n <= 0 {
		n = eng.top
	}
	if n <= 0 {
		n = DefaultTop
	}
	return n
}

func dropReason(err error) string {
	if errors.Is(err, normalize.ErrMissingTitle) {
		return "missing_title"
	}
	return "other"
}
