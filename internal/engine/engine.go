// Package engine implements the credit-limit recommendation formula.
// Recommend is a pure function: given the same input and market snapshot it
// always produces the same result. Randomness only ever enters through the
// market provider's simulated fallback, upstream of this package.
package engine

import (
	"math"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
)

// Recommend maps a validated customer submission plus the current market
// snapshot to a recommended limit, opportunity tier and rate-reduction
// estimate. Inputs are assumed pre-validated by the advisor service
// (positive limit, utilization 0-100, scores in range).
func Recommend(in domain.CustomerInput, m domain.MarketSnapshot) domain.Recommendation {
	utilizationDecimal := in.Utilization / 100

	// Low utilization leaves headroom for growth; high utilization shrinks
	// the multiplier, never below 0.5x.
	utilizationFactor := 1.2
	if utilizationDecimal > 0.7 {
		utilizationFactor = math.Max(0.5, 1-utilizationDecimal)
	}

	incomeFactor := math.Min(2.0, in.Income/50000)
	riskFactor := math.Max(0.3, float64(in.RiskScore-300)/550)
	timeFactor := math.Min(1.3, 1+float64(in.MonthsSinceIncrease)/60)

	marketFactor := 1.0
	switch {
	case m.PercentChange > 1:
		marketFactor = 1.1
	case m.PercentChange < -1:
		marketFactor = 0.9
	}

	recommended := math.Round(in.CurrentLimit * utilizationFactor * incomeFactor * riskFactor * timeFactor * marketFactor)
	// The recommendation is never a decrease.
	recommended = math.Max(in.CurrentLimit, recommended)

	increase := (recommended - in.CurrentLimit) / in.CurrentLimit

	// Strict comparisons: exactly 0.30 is Medium, exactly 0.10 is Low.
	tier := domain.TierLow
	switch {
	case increase > 0.30:
		tier = domain.TierHigh
	case increase > 0.10:
		tier = domain.TierMedium
	}

	rateReduction := math.Max(0, float64(in.PaymentHistory-80)*0.05+float64(in.RiskScore-600)*0.01)

	return domain.Recommendation{
		RecommendedLimit: recommended,
		IncreasePercent:  increase,
		Opportunity:      tier,
		RateReduction:    rateReduction,
		RevenueImpact:    (recommended - in.CurrentLimit) * 0.15,
	}
}

// EstimatedCategorySpend derives the single-entry category spend figure
// stored on a new record: a 60% share of the utilized portion of the limit.
func EstimatedCategorySpend(currentLimit, utilizationDecimal float64) float64 {
	return currentLimit * utilizationDecimal * 0.6
}
