// Package market fetches the macro indicators behind the recommendation
// formula: S&P 500 day change, VIX, and the 10Y treasury yield, from the
// Yahoo Finance v8 chart API. Feed failures are absorbed locally: each
// series falls back to a randomized value in a plausible band and the
// snapshot is tagged "simulated". Failures never surface to the user.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/infra/resilience"
	"github.com/samyukta/credit-intelligence-go/internal/port"
)

var tracer = otel.Tracer("infra/market")

const (
	symbolSP500    = "%5EGSPC"
	symbolVIX      = "%5EVIX"
	symbolTreasury = "%5ETNX"

	snapshotKey = "snapshot"
)

// Provider fetches and caches market snapshots. The cache bounds the rate
// of external calls to one fetch per TTL window (5 minutes by default).
type Provider struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	cache      port.Cache[domain.MarketSnapshot]
	logger     *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewProvider creates a market data provider.
func NewProvider(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, cache port.Cache[domain.MarketSnapshot], logger *zap.Logger) *Provider {
	if baseURL == "" {
		baseURL = "https://query2.finance.yahoo.com"
	}
	return &Provider{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		cache:      cache,
		logger:     logger,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Snapshot returns the current market snapshot, served from cache while
// fresh. Only context cancellation is returned as an error.
func (p *Provider) Snapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	if cached, ok := p.cache.Get(snapshotKey); ok {
		return cached, nil
	}
	return p.fetch(ctx)
}

// Refresh discards the cached snapshot and fetches a fresh one.
func (p *Provider) Refresh(ctx context.Context) (domain.MarketSnapshot, error) {
	p.cache.Clear()
	return p.fetch(ctx)
}

func (p *Provider) fetch(ctx context.Context) (domain.MarketSnapshot, error) {
	ctx, span := tracer.Start(ctx, "market.fetch")
	defer span.End()

	var (
		sp500Closes []float64
		vixCloses   []float64
		tnxCloses   []float64
		sp500Err    error
		vixErr      error
		tnxErr      error
	)

	// Fetch the three series concurrently; each absorbs its own failure.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sp500Closes, sp500Err = p.fetchCloses(gCtx, symbolSP500, "2d")
		return nil
	})
	g.Go(func() error {
		vixCloses, vixErr = p.fetchCloses(gCtx, symbolVIX, "1d")
		return nil
	})
	g.Go(func() error {
		tnxCloses, tnxErr = p.fetchCloses(gCtx, symbolTreasury, "1d")
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.MarketSnapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.MarketSnapshot{}, err
	}

	snap := domain.MarketSnapshot{
		AsOf:   time.Now(),
		Source: domain.SourceSimulated,
	}

	// Percent change needs the last two closing values; the S&P series
	// drives the live/simulated tag.
	if sp500Err == nil && len(sp500Closes) >= 2 {
		prev := sp500Closes[len(sp500Closes)-2]
		last := sp500Closes[len(sp500Closes)-1]
		snap.PercentChange = (last - prev) / prev * 100
		snap.Source = domain.SourceLive
	} else {
		snap.PercentChange = p.uniform(-2, 2)
		if sp500Err != nil {
			p.logger.Warn("market: sp500 fetch failed, simulating", zap.Error(sp500Err))
		}
	}

	if vixErr == nil && len(vixCloses) > 0 {
		snap.VolatilityIndex = vixCloses[len(vixCloses)-1]
	} else {
		snap.VolatilityIndex = p.uniform(12, 35)
		if vixErr != nil {
			p.logger.Warn("market: vix fetch failed, simulating", zap.Error(vixErr))
		}
	}

	if tnxErr == nil && len(tnxCloses) > 0 {
		snap.LongRate = tnxCloses[len(tnxCloses)-1]
	} else {
		snap.LongRate = p.uniform(4.2, 5.8)
		if tnxErr != nil {
			p.logger.Warn("market: treasury fetch failed, simulating", zap.Error(tnxErr))
		}
	}

	p.cache.Set(snapshotKey, snap)
	return snap, nil
}

// fetchCloses retrieves the daily closing values for a symbol over the
// given range, with retry and circuit breaking.
func (p *Provider) fetchCloses(ctx context.Context, symbol, window string) ([]float64, error) {
	var closes []float64

	_, err := p.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, p.cfg, func() error {
			url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", p.baseURL, symbol, window)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("User-Agent", "credit-intelligence-engine/1.0")

			resp, err := p.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("market feed returned status %d", resp.StatusCode)
			}

			var raw struct {
				Chart struct {
					Result []struct {
						Indicators struct {
							Quote []struct {
								Close []float64 `json:"close"`
							} `json:"quote"`
						} `json:"indicators"`
					} `json:"result"`
				} `json:"chart"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
				return err
			}
			if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
				return fmt.Errorf("market feed returned no series for %s", symbol)
			}

			closes = closes[:0]
			for _, c := range raw.Chart.Result[0].Indicators.Quote[0].Close {
				if c > 0 {
					closes = append(closes, c)
				}
			}
			if len(closes) == 0 {
				return fmt.Errorf("market feed returned empty series for %s", symbol)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return closes, nil
}

func (p *Provider) uniform(lo, hi float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo + p.rng.Float64()*(hi-lo)
}
