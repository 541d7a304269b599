// Package main implements a mock Rainforest API server for local development.
// It serves canned search results from a JSON fixture and tracks a credit
// balance so the CLI and server can run without a real API key.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

type searchFixture struct {
	SearchResults []json.RawMessage `json:"search_results"`
}

type searchResponse struct {
	RequestInfo   requestInfo       `json:"request_info"`
	SearchResults []json.RawMessage `json:"search_results"`
}

type requestInfo struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	CreditsUsed      int64  `json:"credits_used"`
	CreditsRemaining int64  `json:"credits_remaining"`
}

type itemSummary struct {
	Title string `json:"title"`
}

// credits is the mock account balance. Each search costs one credit.
type credits struct {
	limit   int64
	used    atomic.Int64
	resetAt time.Time
}

func (c *credits) spend() (used, remaining int64, ok bool) {
	for {
		cur := c.used.Load()
		if cur >= c.limit {
			return cur, 0, false
		}
		if c.used.CompareAndSwap(cur, cur+1) {
			return cur + 1, c.limit - cur - 1, true
		}
	}
}

func (c *credits) snapshot() (used, remaining int64) {
	used = c.used.Load()
	return used, max(c.limit-used, 0)
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/search_response.json", "path to search response fixture")
	creditLimit := flag.Int64("credits", 1000, "credits available to the mock account")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "items", len(fixture.SearchResults))

	acct := &credits{limit: *creditLimit, resetAt: time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Rainforest server", "addr", addr, "credits", *creditLimit)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, fixture, acct)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, fixture *searchFixture, acct *credits) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /request", searchHandler(logger, fixture, acct))
	mux.HandleFunc("GET /account", accountHandler(logger, acct))
	return mux
}

func loadFixture(path string) (*searchFixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var resp searchFixture
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &resp, nil
}

// requestLogger logs every request with the api_key query value masked.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("api_key") {
			q.Set("api_key", "REDACTED")
		}
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", q.Encode())
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func failure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"request_info": requestInfo{Success: false, Message: msg},
	})
}

func searchHandler(logger *slog.Logger, fixture *searchFixture, acct *credits) http.HandlerFunc {
	// Pre-parse titles for filtering.
	type indexedItem struct {
		raw   json.RawMessage
		title string
	}
	items := make([]indexedItem, 0, len(fixture.SearchResults))
	for _, raw := range fixture.SearchResults {
		var s itemSummary
		//nolint:errcheck,gosec // fixture data is trusted; title extraction is best-effort
		json.Unmarshal(raw, &s)
		items = append(items, indexedItem{raw: raw, title: strings.ToLower(s.Title)})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") == "" {
			logger.Warn("search request missing api_key")
			failure(w, http.StatusUnauthorized, "api_key is required")
			return
		}
		if t := q.Get("type"); t != "search" {
			failure(w, http.StatusBadRequest, fmt.Sprintf("unsupported request type %q", t))
			return
		}
		if q.Get("amazon_domain") == "" {
			failure(w, http.StatusBadRequest, "amazon_domain is required")
			return
		}

		used, remaining, ok := acct.spend()
		if !ok {
			failure(w, http.StatusPaymentRequired, "no credits remaining")
			return
		}

		// Every word of the search term must appear in the title. Records
		// without a title are always returned so clients exercise dropping.
		words := strings.Fields(strings.ToLower(q.Get("search_term")))
		matched := make([]json.RawMessage, 0, len(items))
		for _, item := range items {
			if item.title == "" || containsAll(item.title, words) {
				matched = append(matched, item.raw)
			}
		}

		writeJSON(w, http.StatusOK, searchResponse{
			RequestInfo: requestInfo{
				Success:          true,
				CreditsUsed:      used,
				CreditsRemaining: remaining,
			},
			SearchResults: matched,
		})
		logger.Info("search",
			"term", q.Get("search_term"),
			"domain", q.Get("amazon_domain"),
			"matched", len(matched),
			"credits_remaining", remaining,
		)
	}
}

func containsAll(title string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(title, w) {
			return false
		}
	}
	return true
}

func accountHandler(logger *slog.Logger, acct *credits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "" {
			logger.Warn("account request missing api_key")
			failure(w, http.StatusUnauthorized, "api_key is required")
			return
		}

		used, remaining := acct.snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"request_info": requestInfo{Success: true},
			"account_info": map[string]any{
				"plan":              "mock",
				"credits_used":      used,
				"credits_limit":     acct.limit,
				"credits_remaining": remaining,
				"credits_reset_at":  acct.resetAt.Format(time.RFC3339),
			},
		})
	}
}
