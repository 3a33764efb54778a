package analyst_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/infra/analyst"
	"github.com/samyukta/credit-intelligence-go/internal/infra/resilience"
)

func testRecord() domain.CustomerRecord {
	return domain.CustomerRecord{
		ID:               "C001",
		Name:             "Alice",
		CurrentLimit:     5000,
		RecommendedLimit: 5956,
		Utilization:      0.45,
		PaymentHistory:   85,
		RiskScore:        650,
		Income:           65000,
		SpendingCategory: "Travel",
		LastIncrease:     "12 months ago",
		Opportunity:      domain.TierMedium,
		RateReduction:    0.75,
	}
}

func newClient(baseURL string) *analyst.Client {
	return analyst.NewClient(
		&http.Client{Timeout: 2 * time.Second},
		baseURL,
		"test-key",
		"test-model",
		resilience.NewCircuitBreaker("analyst-test"),
		resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond},
	)
}

func TestAnalyze_Success(t *testing.T) {
	var gotAuth, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			gotPrompt = req.Messages[0].Content
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"1. CREDIT LIMIT STRATEGY..."}}],"usage":{"prompt_tokens":120,"completion_tokens":80,"total_tokens":200}}`)
	}))
	defer srv.Close()

	text, usage, err := newClient(srv.URL).Analyze(context.Background(), testRecord(), domain.MarketSnapshot{PercentChange: 1.2, VolatilityIndex: 18, LongRate: 4.4, Source: domain.SourceLive})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if !strings.Contains(gotPrompt, "Alice") || !strings.Contains(gotPrompt, "MARKET TIMING") {
		t.Errorf("prompt missing customer fields or section headers: %q", gotPrompt)
	}
	if !strings.HasPrefix(text, "1. CREDIT LIMIT STRATEGY") {
		t.Errorf("unexpected text: %q", text)
	}
	if usage.TotalTokens != 200 {
		t.Errorf("expected 200 total tokens, got %d", usage.TotalTokens)
	}
}

func TestAnalyze_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err := newClient(srv.URL).Analyze(context.Background(), testRecord(), domain.MarketSnapshot{})
	if err == nil {
		t.Fatal("expected error")
	}
	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %T", err)
	}
}

func TestAnalyze_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[],"usage":{}}`)
	}))
	defer srv.Close()

	_, _, err := newClient(srv.URL).Analyze(context.Background(), testRecord(), domain.MarketSnapshot{})
	if err == nil {
		t.Fatal("expected error on empty choices")
	}
}
