package domain

import "time"

// OpportunityTier buckets how large a recommended limit increase is
// relative to the customer's current limit.
type OpportunityTier string

const (
	TierHigh   OpportunityTier = "High"
	TierMedium OpportunityTier = "Medium"
	TierLow    OpportunityTier = "Low"
)

// SpendingCategories is the fixed set of primary spending categories
// accepted on the customer form.
var SpendingCategories = []string{
	"Groceries", "Gas", "Dining", "Travel", "Shopping", "Healthcare", "Business",
}

// ValidSpendingCategory reports whether c is one of SpendingCategories.
func ValidSpendingCategory(c string) bool {
	for _, s := range SpendingCategories {
		if s == c {
			return true
		}
	}
	return false
}

// CustomerInput is the raw form submission for one customer.
// Utilization is the 0-100 percentage as entered, not the stored decimal.
type CustomerInput struct {
	Name                string  `json:"name"`
	CurrentLimit        float64 `json:"currentLimit"`
	Utilization         float64 `json:"utilization"`
	PaymentHistory      int     `json:"paymentHistory"`
	Income              float64 `json:"income"`
	RiskScore           int     `json:"riskScore"`
	MonthsSinceIncrease int     `json:"monthsSinceIncrease"`
	SpendingCategory    string  `json:"spendingCategory"`
}

// CustomerRecord is one portfolio entry. Immutable after creation except for
// MarketContext, which RecalculateAll rewrites in place.
type CustomerRecord struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	CurrentLimit     float64            `json:"current_limit"`
	Utilization      float64            `json:"utilization"` // decimal, [0,1]
	PaymentHistory   int                `json:"payment_history"`
	Income           float64            `json:"income"`
	RiskScore        int                `json:"risk_score"`
	LastIncrease     string             `json:"last_increase"` // "never" or "<n> months ago"
	SpendingCategory string             `json:"spending_category"`
	CategorySpend    map[string]float64 `json:"category_spend"`
	Opportunity      OpportunityTier    `json:"opportunity"`
	RecommendedLimit float64            `json:"recommended_limit"`
	RateReduction    float64            `json:"rate_reduction"`
	RevenueImpact    float64            `json:"revenue_impact"`
	MarketContext    string             `json:"market_context"`
	AddedBy          string             `json:"added_by,omitempty"`
	CreatedAt        time.Time          `json:"timestamp"`
}

// Recommendation is the output of the recommendation formula for one customer.
type Recommendation struct {
	RecommendedLimit float64         `json:"recommended_limit"`
	IncreasePercent  float64         `json:"increase_percent"`
	Opportunity      OpportunityTier `json:"opportunity"`
	RateReduction    float64         `json:"rate_reduction"`
	RevenueImpact    float64         `json:"revenue_impact"`
}
