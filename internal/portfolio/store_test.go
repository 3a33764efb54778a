package portfolio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/portfolio"
)

func record(name string, limit float64, tier domain.OpportunityTier) domain.CustomerRecord {
	return domain.CustomerRecord{
		Name:          name,
		CurrentLimit:  limit,
		Utilization:   0.45,
		Opportunity:   tier,
		RevenueImpact: 150,
	}
}

func TestStore_AddAssignsDenseIDs(t *testing.T) {
	s := portfolio.NewStore()

	first, err := s.Add(record("Alice", 5000, domain.TierMedium))
	require.NoError(t, err)
	second, err := s.Add(record("Bob", 3000, domain.TierLow))
	require.NoError(t, err)

	assert.Equal(t, "C001", first.ID)
	assert.Equal(t, "C002", second.ID)
}

func TestStore_DuplicateNameRejected(t *testing.T) {
	s := portfolio.NewStore()

	_, err := s.Add(record("Alice", 5000, domain.TierMedium))
	require.NoError(t, err)

	_, err = s.Add(record("Alice", 9000, domain.TierHigh))
	var dup *domain.ErrDuplicate
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Alice", dup.Name)
	assert.Equal(t, 1, s.Count(), "store must be left unchanged")

	// Case-sensitive: "alice" is a different customer.
	_, err = s.Add(record("alice", 9000, domain.TierHigh))
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Count())
}

func TestStore_IDCounterResetsAfterClear(t *testing.T) {
	s := portfolio.NewStore()

	_, _ = s.Add(record("Alice", 5000, domain.TierMedium))
	_, _ = s.Add(record("Bob", 3000, domain.TierLow))
	s.Clear()

	rec, err := s.Add(record("Carol", 4000, domain.TierLow))
	require.NoError(t, err)
	assert.Equal(t, "C001", rec.ID)
}

func TestStore_ClearIsFullReset(t *testing.T) {
	s := portfolio.NewStore()

	rec, err := s.Add(record("Alice", 5000, domain.TierMedium))
	require.NoError(t, err)
	_, err = s.Approve(rec.ID)
	require.NoError(t, err)
	s.SetAnalysis(rec.ID, "strategy text")

	s.Clear()

	assert.Zero(t, s.Count())
	assert.Zero(t, s.ProcessedCount())
	assert.Zero(t, s.ApprovedRevenueImpact())
	_, ok := s.Analysis(rec.ID)
	assert.False(t, ok, "cached analyses must be dropped on clear")
}

func TestStore_ApproveDoubleCounts(t *testing.T) {
	s := portfolio.NewStore()

	rec, err := s.Add(record("Alice", 5000, domain.TierMedium))
	require.NoError(t, err)

	_, err = s.Approve(rec.ID)
	require.NoError(t, err)
	_, err = s.Approve(rec.ID)
	require.NoError(t, err)

	// Approval is not idempotent: repeating it accumulates again.
	assert.Equal(t, 2, s.ProcessedCount())
	assert.InDelta(t, 300, s.ApprovedRevenueImpact(), 1e-9)
}

func TestStore_ApproveUnknownID(t *testing.T) {
	s := portfolio.NewStore()

	_, err := s.Approve("C999")
	var notFound *domain.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestStore_RecalculateAllTouchesOnlyMarketContext(t *testing.T) {
	s := portfolio.NewStore()

	rec, err := s.Add(record("Alice", 5000, domain.TierMedium))
	require.NoError(t, err)

	n := s.RecalculateAll(domain.MarketSnapshot{PercentChange: -1.4})
	assert.Equal(t, 1, n)

	updated, err := s.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated during -1.4% market day", updated.MarketContext)
	assert.Equal(t, rec.RecommendedLimit, updated.RecommendedLimit)
	assert.Equal(t, rec.Opportunity, updated.Opportunity)
}

func TestStore_Aggregates(t *testing.T) {
	s := portfolio.NewStore()

	assert.Zero(t, s.MeanUtilization(), "empty store averages to 0, not an error")
	assert.Zero(t, s.TotalLimitValue())

	a := record("Alice", 5000, domain.TierHigh)
	a.Utilization = 0.2
	b := record("Bob", 3000, domain.TierHigh)
	b.Utilization = 0.6
	c := record("Carol", 2000, domain.TierLow)
	c.Utilization = 0.4

	for _, r := range []domain.CustomerRecord{a, b, c} {
		_, err := s.Add(r)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, s.Count())
	assert.InDelta(t, 10000, s.TotalLimitValue(), 1e-9)
	assert.InDelta(t, 0.4, s.MeanUtilization(), 1e-9)
	assert.Equal(t, 2, s.CountByTier(domain.TierHigh))
	assert.Equal(t, 0, s.CountByTier(domain.TierMedium))
	assert.Equal(t, 1, s.CountByTier(domain.TierLow))

	counts := s.TierCounts()
	assert.Equal(t, 2, counts[domain.TierHigh])
	assert.Equal(t, 1, counts[domain.TierLow])
}

func TestStore_RecentNewestFirst(t *testing.T) {
	s := portfolio.NewStore()
	for _, name := range []string{"A", "B", "C", "D"} {
		_, err := s.Add(record(name, 1000, domain.TierLow))
		require.NoError(t, err)
	}

	recent := s.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "D", recent[0].Name)
	assert.Equal(t, "C", recent[1].Name)
	assert.Equal(t, "B", recent[2].Name)

	assert.Len(t, s.Recent(10), 4)
}
