package domain

// PortfolioSummary aggregates the session's portfolio for the dashboard.
type PortfolioSummary struct {
	TotalCustomers   int                     `json:"total_customers"`
	TotalLimitValue  float64                 `json:"total_limit_value"`
	MeanUtilization  float64                 `json:"mean_utilization"`
	TierCounts       map[OpportunityTier]int `json:"tier_counts"`
	ProcessedCount   int                     `json:"processed_count"`
	ApprovedRevenue  float64                 `json:"approved_revenue_impact"`
	Projection       RevenueProjection       `json:"revenue_projection"`
	Market           *MarketSnapshot         `json:"market,omitempty"`
}

// RevenueProjection is the 6-month revenue chart data derived from the
// cumulative approved revenue impact.
type RevenueProjection struct {
	Months     []string  `json:"months"`
	Baseline   []float64 `json:"baseline"`
	Optimistic []float64 `json:"optimistic"`
}

// TokenUsage reports LLM token consumption for one analysis call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AnalysisResult is the opaque strategy text produced by the
// text-generation collaborator for one customer.
type AnalysisResult struct {
	CustomerID string     `json:"customer_id"`
	Text       string     `json:"text"`
	Cached     bool       `json:"cached"`
	Tokens     TokenUsage `json:"tokens"`
}

// EngineMetrics is the snapshot served by GET /v1/metrics/engine.
type EngineMetrics struct {
	TotalRequests      int64   `json:"total_requests"`
	ErrorRate          float64 `json:"error_rate"`
	CacheHitRate       float64 `json:"cache_hit_rate"`
	AvgTokensPerCall   float64 `json:"avg_tokens_per_call"`
	EstimatedCostUSD   float64 `json:"estimated_cost_usd"`
	RecommendationsHigh   int64 `json:"recommendations_high"`
	RecommendationsMedium int64 `json:"recommendations_medium"`
	RecommendationsLow    int64 `json:"recommendations_low"`
	Period             string  `json:"period"`
}
