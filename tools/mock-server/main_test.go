package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestFixture(t *testing.T) *searchFixture {
	t.Helper()
	fixture, err := loadFixture(filepath.Join("testdata", "search_response.json"))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return fixture
}

func newTestCredits(limit int64) *credits {
	return &credits{limit: limit, resetAt: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeSearch(t *testing.T, w *httptest.ResponseRecorder) searchResponse {
	t.Helper()
	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestLoadFixture(t *testing.T) {
	fixture := loadTestFixture(t)
	if len(fixture.SearchResults) == 0 {
		t.Fatal("expected items in fixture")
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := loadFixture(filepath.Join("testdata", "missing.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestSearchHandler_FiltersByTerm(t *testing.T) {
	mux := newMux(testLogger(), loadTestFixture(t), newTestCredits(10))

	w := get(t, mux, "/request?api_key=k&type=search&amazon_domain=amazon.in&search_term=Wireless+Earbuds")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	resp := decodeSearch(t, w)
	if !resp.RequestInfo.Success {
		t.Error("expected success")
	}
	// Six earbud titles plus the untitled record; the kettle is filtered out.
	if got := len(resp.SearchResults); got != 7 {
		t.Errorf("results=%d, want 7", got)
	}
	if resp.RequestInfo.CreditsUsed != 1 || resp.RequestInfo.CreditsRemaining != 9 {
		t.Errorf("credits used=%d remaining=%d, want 1 and 9",
			resp.RequestInfo.CreditsUsed, resp.RequestInfo.CreditsRemaining)
	}
}

func TestSearchHandler_NoMatch(t *testing.T) {
	mux := newMux(testLogger(), loadTestFixture(t), newTestCredits(10))

	w := get(t, mux, "/request?api_key=k&type=search&amazon_domain=amazon.in&search_term=toaster")
	resp := decodeSearch(t, w)
	if got := len(resp.SearchResults); got != 1 {
		t.Errorf("results=%d, want only the untitled record", got)
	}
}

func TestSearchHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		credits    int64
		wantStatus int
	}{
		{
			name:       "missing api key",
			target:     "/request?type=search&amazon_domain=amazon.in&search_term=x",
			credits:    10,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong type",
			target:     "/request?api_key=k&type=product&amazon_domain=amazon.in",
			credits:    10,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing domain",
			target:     "/request?api_key=k&type=search&search_term=x",
			credits:    10,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "out of credits",
			target:     "/request?api_key=k&type=search&amazon_domain=amazon.in&search_term=x",
			credits:    0,
			wantStatus: http.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newMux(testLogger(), loadTestFixture(t), newTestCredits(tt.credits))
			w := get(t, mux, tt.target)
			if w.Code != tt.wantStatus {
				t.Fatalf("status=%d, want %d", w.Code, tt.wantStatus)
			}
			if resp := decodeSearch(t, w); resp.RequestInfo.Success {
				t.Error("expected success=false")
			}
		})
	}
}

func TestAccountHandler(t *testing.T) {
	acct := newTestCredits(5)
	mux := newMux(testLogger(), loadTestFixture(t), acct)

	for range 2 {
		get(t, mux, "/request?api_key=k&type=search&amazon_domain=amazon.in&search_term=kettle")
	}

	w := get(t, mux, "/account?api_key=k")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		AccountInfo struct {
			Plan             string `json:"plan"`
			CreditsUsed      int64  `json:"credits_used"`
			CreditsLimit     int64  `json:"credits_limit"`
			CreditsRemaining int64  `json:"credits_remaining"`
			CreditsResetAt   string `json:"credits_reset_at"`
		} `json:"account_info"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.AccountInfo.CreditsUsed != 2 || resp.AccountInfo.CreditsRemaining != 3 {
		t.Errorf("used=%d remaining=%d, want 2 and 3",
			resp.AccountInfo.CreditsUsed, resp.AccountInfo.CreditsRemaining)
	}
	if resp.AccountInfo.CreditsResetAt != "2026-11-01T00:00:00Z" {
		t.Errorf("credits_reset_at=%s", resp.AccountInfo.CreditsResetAt)
	}
}

func TestAccountHandler_MissingKey(t *testing.T) {
	mux := newMux(testLogger(), loadTestFixture(t), newTestCredits(5))
	if w := get(t, mux, "/account"); w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestCredits_ConcurrentSpend(t *testing.T) {
	acct := newTestCredits(50)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 100 {
		wg.Go(func() {
			if _, _, spent := acct.spend(); spent {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if ok != 50 {
		t.Errorf("successful spends=%d, want 50", ok)
	}
	if used, remaining := acct.snapshot(); used != 50 || remaining != 0 {
		t.Errorf("used=%d remaining=%d, want 50 and 0", used, remaining)
	}
}

func TestRequestLogger_MasksKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := requestLogger(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	get(t, h, "/account?api_key=super-secret")

	if got := buf.String(); got == "" || strings.Contains(got, "super-secret") {
		t.Errorf("log line leaks or is empty: %q", got)
	}
}
