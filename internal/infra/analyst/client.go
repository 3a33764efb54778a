// Package analyst calls the text-generation collaborator (Groq's
// OpenAI-compatible chat completions API) to produce the free-form
// strategic analysis for one customer. The response text is treated as
// opaque display content; nothing downstream parses its structure.
package analyst

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/infra/resilience"
)

var tracer = otel.Tracer("infra/analyst")

const promptTemplate = `You are a senior credit portfolio strategist. Analyze this customer and the
current market conditions, then respond in exactly four sections titled
"1. CREDIT LIMIT STRATEGY", "2. RISK ASSESSMENT", "3. REVENUE OPPORTUNITY"
and "4. MARKET TIMING".

Customer %s (%s):
- Current limit: $%.0f, recommended limit: $%.0f (%s opportunity)
- Utilization: %.0f%%, payment history score: %d, risk score: %d
- Annual income: $%.0f, primary spending: %s, last increase: %s
- Potential APR reduction: %.1f%%

Market: S&P 500 %+.2f%% today, VIX %.1f, 10Y treasury %.2f%% (%s data).`

// Client calls the chat completions endpoint with retry and circuit
// breaking.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewClient creates an analyst client.
func NewClient(httpClient *http.Client, baseURL, apiKey, model string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		cb:         cb,
		cfg:        cfg,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Analyze renders the prompt for the record and snapshot and returns the
// generated text plus token usage.
func (c *Client) Analyze(ctx context.Context, rec domain.CustomerRecord, m domain.MarketSnapshot) (string, domain.TokenUsage, error) {
	ctx, span := tracer.Start(ctx, "AnalystClient.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", rec.ID))

	prompt := fmt.Sprintf(promptTemplate,
		rec.Name, rec.ID,
		rec.CurrentLimit, rec.RecommendedLimit, rec.Opportunity,
		rec.Utilization*100, rec.PaymentHistory, rec.RiskScore,
		rec.Income, rec.SpendingCategory, rec.LastIncrease,
		rec.RateReduction,
		m.PercentChange, m.VolatilityIndex, m.LongRate, m.Source,
	)

	var chatResp chatResponse

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(chatRequest{
				Model:    c.model,
				Messages: []chatMessage{{Role: "user", Content: prompt}},
			})
			if err != nil {
				return err
			}

			url := c.baseURL + "/chat/completions"
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.apiKey)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("analyst API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&chatResp)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return nil, nil
	})
	if err != nil {
		return "", domain.TokenUsage{}, &domain.ErrExternalService{Service: "analyst", Err: err}
	}

	if len(chatResp.Choices) == 0 {
		return "", domain.TokenUsage{}, &domain.ErrExternalService{
			Service: "analyst",
			Err:     fmt.Errorf("analyst API returned no choices"),
		}
	}

	usage := domain.TokenUsage{
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
		TotalTokens:      chatResp.Usage.TotalTokens,
	}
	return chatResp.Choices[0].Message.Content, usage, nil
}
