package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/engine"
	"github.com/samyukta/credit-intelligence-go/internal/export"
	"github.com/samyukta/credit-intelligence-go/internal/infra/observability"
	"github.com/samyukta/credit-intelligence-go/internal/infra/resilience"
	"github.com/samyukta/credit-intelligence-go/internal/port"
	"github.com/samyukta/credit-intelligence-go/internal/session"
)

var tracer = otel.Tracer("service/advisor")

// Advisor orchestrates the portfolio operations for one request: gate the
// session, read the market snapshot, run the recommendation formula, and
// mutate the session's portfolio store.
type Advisor struct {
	market   port.MarketProvider
	analyst  port.AnalysisGenerator
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAdvisor creates the advisor service with all dependencies injected.
func NewAdvisor(market port.MarketProvider, analyst port.AnalysisGenerator, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *Advisor {
	return &Advisor{
		market:   market,
		analyst:  analyst,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// gate rejects calls without an authenticated session.
func gate(state *session.State) error {
	if state == nil || state.Session == nil || !state.Session.Authenticated {
		return &domain.ErrUnauthorized{Message: "authentication required"}
	}
	return nil
}

// validateInput enforces the form's range constraints before the formula
// ever runs; the formula itself assumes clean input.
func validateInput(in domain.CustomerInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return &domain.ErrValidation{Field: "name", Message: "customer name is required"}
	}
	if in.CurrentLimit <= 0 {
		return &domain.ErrValidation{Field: "currentLimit", Message: "must be a positive amount"}
	}
	if in.Income <= 0 {
		return &domain.ErrValidation{Field: "income", Message: "must be a positive amount"}
	}
	if in.Utilization < 0 || in.Utilization > 100 {
		return &domain.ErrValidation{Field: "utilization", Message: "must be between 0 and 100"}
	}
	if in.PaymentHistory < 0 || in.PaymentHistory > 100 {
		return &domain.ErrValidation{Field: "paymentHistory", Message: "must be between 0 and 100"}
	}
	if in.RiskScore < 300 || in.RiskScore > 850 {
		return &domain.ErrValidation{Field: "riskScore", Message: "must be between 300 and 850"}
	}
	if in.MonthsSinceIncrease < 0 {
		return &domain.ErrValidation{Field: "monthsSinceIncrease", Message: "must not be negative"}
	}
	if !domain.ValidSpendingCategory(in.SpendingCategory) {
		return &domain.ErrValidation{Field: "spendingCategory", Message: "unknown spending category"}
	}
	return nil
}

// AddCustomer validates the submission, computes the recommendation from
// the current market snapshot and appends the record to the session's
// portfolio.
func (a *Advisor) AddCustomer(ctx context.Context, state *session.State, in domain.CustomerInput) (domain.CustomerRecord, error) {
	ctx, span := tracer.Start(ctx, "Advisor.AddCustomer")
	defer span.End()

	start := time.Now()
	defer func() {
		a.metrics.RecordRequestDuration("add_customer", time.Since(start))
	}()

	if err := gate(state); err != nil {
		return domain.CustomerRecord{}, err
	}
	if err := validateInput(in); err != nil {
		return domain.CustomerRecord{}, err
	}
	in.Name = strings.TrimSpace(in.Name)

	snap, err := a.market.Snapshot(ctx)
	if err != nil {
		return domain.CustomerRecord{}, err
	}

	rec := engine.Recommend(in, snap)
	span.SetAttributes(
		attribute.String("customer.name", in.Name),
		attribute.String("recommendation.tier", string(rec.Opportunity)),
	)

	utilizationDecimal := in.Utilization / 100
	lastIncrease := "never"
	if in.MonthsSinceIncrease > 0 {
		lastIncrease = fmt.Sprintf("%d months ago", in.MonthsSinceIncrease)
	}

	addedBy := ""
	if state.Session.Identity != nil {
		addedBy = state.Session.Identity.Email
	}

	record := domain.CustomerRecord{
		Name:             in.Name,
		CurrentLimit:     in.CurrentLimit,
		Utilization:      utilizationDecimal,
		PaymentHistory:   in.PaymentHistory,
		Income:           in.Income,
		RiskScore:        in.RiskScore,
		LastIncrease:     lastIncrease,
		SpendingCategory: in.SpendingCategory,
		CategorySpend: map[string]float64{
			strings.ToLower(in.SpendingCategory): engine.EstimatedCategorySpend(in.CurrentLimit, utilizationDecimal),
		},
		Opportunity:      rec.Opportunity,
		RecommendedLimit: rec.RecommendedLimit,
		RateReduction:    rec.RateReduction,
		RevenueImpact:    rec.RevenueImpact,
		MarketContext:    fmt.Sprintf("Added during %+.1f%% market day", snap.PercentChange),
		AddedBy:          addedBy,
		CreatedAt:        time.Now(),
	}

	stored, err := state.Portfolio.Add(record)
	if err != nil {
		return domain.CustomerRecord{}, err
	}

	a.metrics.IncrRecommendation(rec.Opportunity)
	a.logger.Info("customer added",
		zap.String("customer_id", stored.ID),
		zap.String("tier", string(rec.Opportunity)),
		zap.Float64("recommended_limit", rec.RecommendedLimit),
	)
	return stored, nil
}

// ListCustomers returns the portfolio in insertion order.
func (a *Advisor) ListCustomers(state *session.State) ([]domain.CustomerRecord, error) {
	if err := gate(state); err != nil {
		return nil, err
	}
	return state.Portfolio.Records(), nil
}

// RecentCustomers returns up to n records, newest first.
func (a *Advisor) RecentCustomers(state *session.State, n int) ([]domain.CustomerRecord, error) {
	if err := gate(state); err != nil {
		return nil, err
	}
	return state.Portfolio.Recent(n), nil
}

// GetCustomer returns a single record by id.
func (a *Advisor) GetCustomer(state *session.State, id string) (domain.CustomerRecord, error) {
	if err := gate(state); err != nil {
		return domain.CustomerRecord{}, err
	}
	return state.Portfolio.Get(id)
}

// ClearPortfolio performs the full session reset.
func (a *Advisor) ClearPortfolio(state *session.State) error {
	if err := gate(state); err != nil {
		return err
	}
	state.Portfolio.Clear()
	a.logger.Info("portfolio cleared")
	return nil
}

// RecalculateAll rewrites every record's market context from the current
// snapshot. Recommended limits are left untouched.
func (a *Advisor) RecalculateAll(ctx context.Context, state *session.State) (int, error) {
	ctx, span := tracer.Start(ctx, "Advisor.RecalculateAll")
	defer span.End()

	if err := gate(state); err != nil {
		return 0, err
	}
	snap, err := a.market.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return state.Portfolio.RecalculateAll(snap), nil
}

// Approve records an approval for the given customer. Repeated approvals
// accumulate again; see portfolio.Store.Approve.
func (a *Advisor) Approve(state *session.State, id string) (domain.CustomerRecord, error) {
	if err := gate(state); err != nil {
		return domain.CustomerRecord{}, err
	}
	rec, err := state.Portfolio.Approve(id)
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	a.metrics.IncrApproval()
	a.logger.Info("customer approved",
		zap.String("customer_id", id),
		zap.Float64("revenue_impact", rec.RevenueImpact),
	)
	return rec, nil
}

// Summary aggregates the portfolio plus the 6-month revenue projection.
func (a *Advisor) Summary(ctx context.Context, state *session.State) (*domain.PortfolioSummary, error) {
	ctx, span := tracer.Start(ctx, "Advisor.Summary")
	defer span.End()

	if err := gate(state); err != nil {
		return nil, err
	}

	snap, err := a.market.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	p := state.Portfolio
	return &domain.PortfolioSummary{
		TotalCustomers:  p.Count(),
		TotalLimitValue: p.TotalLimitValue(),
		MeanUtilization: p.MeanUtilization(),
		TierCounts:      p.TierCounts(),
		ProcessedCount:  p.ProcessedCount(),
		ApprovedRevenue: p.ApprovedRevenueImpact(),
		Projection:      projectRevenue(p.ApprovedRevenueImpact()),
		Market:          &snap,
	}, nil
}

// projectRevenue spreads the approved revenue total over a 6-month ramp,
// with a 20% uplift for the optimistic series.
func projectRevenue(total float64) domain.RevenueProjection {
	months := make([]string, 6)
	baseline := make([]float64, 6)
	optimistic := make([]float64, 6)
	for i := 0; i < 6; i++ {
		months[i] = fmt.Sprintf("Month %d", i+1)
		baseline[i] = total * float64(i+1) / 6
		optimistic[i] = total * 1.2 * float64(i+1) / 6
	}
	return domain.RevenueProjection{Months: months, Baseline: baseline, Optimistic: optimistic}
}

// Analysis returns the strategic analysis text for one customer, cached
// per session until the portfolio is cleared. Collaborator failures do not
// touch the store.
func (a *Advisor) Analysis(ctx context.Context, state *session.State, id string) (*domain.AnalysisResult, error) {
	ctx, span := tracer.Start(ctx, "Advisor.Analysis")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", id))

	if err := gate(state); err != nil {
		return nil, err
	}

	rec, err := state.Portfolio.Get(id)
	if err != nil {
		return nil, err
	}

	if text, ok := state.Portfolio.Analysis(id); ok {
		a.metrics.IncrCacheHit("analysis")
		return &domain.AnalysisResult{CustomerID: id, Text: text, Cached: true}, nil
	}
	a.metrics.IncrCacheMiss("analysis")

	snap, err := a.market.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer a.bulkhead.Release()

	start := time.Now()
	text, usage, err := a.analyst.Analyze(ctx, rec, snap)
	a.metrics.RecordRequestDuration("analysis", time.Since(start))
	if err != nil {
		a.metrics.IncrExternalError("analyst")
		a.metrics.IncrRequest("error")
		a.logger.Error("analysis failed",
			zap.String("customer_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	a.metrics.RecordTokens(usage.PromptTokens, usage.CompletionTokens)
	a.metrics.IncrRequest("success")
	state.Portfolio.SetAnalysis(id, text)

	return &domain.AnalysisResult{CustomerID: id, Text: text, Tokens: usage}, nil
}

// MarketSnapshot exposes the current snapshot to the dashboard.
func (a *Advisor) MarketSnapshot(ctx context.Context, state *session.State) (domain.MarketSnapshot, error) {
	if err := gate(state); err != nil {
		return domain.MarketSnapshot{}, err
	}
	return a.market.Snapshot(ctx)
}

// RefreshMarket forces a fresh snapshot, discarding the cache.
func (a *Advisor) RefreshMarket(ctx context.Context, state *session.State) (domain.MarketSnapshot, error) {
	if err := gate(state); err != nil {
		return domain.MarketSnapshot{}, err
	}
	return a.market.Refresh(ctx)
}

// ExportCSV writes the portfolio as CSV.
func (a *Advisor) ExportCSV(state *session.State, w io.Writer) error {
	if err := gate(state); err != nil {
		return err
	}
	return export.WriteCSV(w, state.Portfolio.Records())
}

// ExportXLSX writes the portfolio as an XLSX workbook.
func (a *Advisor) ExportXLSX(state *session.State, w io.Writer) error {
	if err := gate(state); err != nil {
		return err
	}
	return export.WriteXLSX(w, state.Portfolio.Records())
}
