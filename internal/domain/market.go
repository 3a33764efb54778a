package domain

import "time"

// Market data source tags.
const (
	SourceLive      = "live"
	SourceSimulated = "simulated"
)

// MarketSnapshot is a point-in-time read of the macro indicators that nudge
// the recommendation formula. When the external feed is unreachable the
// provider fills the fields with randomized plausible values and tags the
// snapshot as simulated.
type MarketSnapshot struct {
	PercentChange   float64   `json:"sp500_change"`   // S&P 500 day-over-day, percent
	VolatilityIndex float64   `json:"vix_level"`      // VIX close
	LongRate        float64   `json:"treasury_rate"`  // 10Y treasury yield, percent
	AsOf            time.Time `json:"timestamp"`
	Source          string    `json:"data_source"` // "live" or "simulated"
}
