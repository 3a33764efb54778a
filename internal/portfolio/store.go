// Package portfolio holds the session-scoped, in-memory customer portfolio.
// State lives for one interactive session only; there is no persistence
// across process restarts and no sharing between sessions.
package portfolio

import (
	"fmt"
	"sync"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
)

// Store is an ordered, append-only (plus clear-all) collection of customer
// records with derived session counters. Safe for concurrent use, although
// each session normally drives it from a single request at a time.
type Store struct {
	mu       sync.RWMutex
	records  []domain.CustomerRecord
	byName   map[string]struct{}
	analyses map[string]string // customer id -> cached strategy text

	processedCount  int
	approvedRevenue float64
}

// NewStore creates an empty portfolio store.
func NewStore() *Store {
	return &Store{
		byName:   make(map[string]struct{}),
		analyses: make(map[string]string),
	}
}

// Add assigns the next dense id ("C" + zero-padded size+1) and appends the
// record. It fails with ErrDuplicate when a customer with the same name
// (exact, case-sensitive) already exists, leaving the store unchanged.
// Ids are not stable across Clear: the counter derives from current size.
func (s *Store) Add(rec domain.CustomerRecord) (domain.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[rec.Name]; exists {
		return domain.CustomerRecord{}, &domain.ErrDuplicate{Name: rec.Name}
	}

	rec.ID = fmt.Sprintf("C%03d", len(s.records)+1)
	s.records = append(s.records, rec)
	s.byName[rec.Name] = struct{}{}
	return rec, nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (domain.CustomerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.CustomerRecord{}, &domain.ErrNotFound{Resource: "customer", ID: id}
}

// Records returns a copy of all records in insertion order.
func (s *Store) Records() []domain.CustomerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CustomerRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(n int) []domain.CustomerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]domain.CustomerRecord, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// Clear empties the store and resets every derived session counter: the
// processed count, the cumulative approved revenue impact and all cached
// analysis texts. A full reset, not merely an empty list.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.byName = make(map[string]struct{})
	s.analyses = make(map[string]string)
	s.processedCount = 0
	s.approvedRevenue = 0
}

// RecalculateAll rewrites each record's market context annotation from the
// given snapshot. No other field is touched; in particular the recommended
// limit is NOT recomputed.
func (s *Store) RecalculateAll(m domain.MarketSnapshot) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		s.records[i].MarketContext = fmt.Sprintf("Updated during %+.1f%% market day", m.PercentChange)
	}
	return len(s.records)
}

// Approve increments the processed-customer counter and accumulates the
// record's estimated revenue impact into the running projection total.
// The record itself is not mutated. Approval is deliberately not
// idempotent: approving the same id twice double-counts revenue, matching
// the dashboard's original behavior.
func (s *Store) Approve(id string) (domain.CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == id {
			s.processedCount++
			s.approvedRevenue += r.RevenueImpact
			return r, nil
		}
	}
	return domain.CustomerRecord{}, &domain.ErrNotFound{Resource: "customer", ID: id}
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// TotalLimitValue sums the current limits of all records.
func (s *Store) TotalLimitValue() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, r := range s.records {
		total += r.CurrentLimit
	}
	return total
}

// MeanUtilization averages the stored utilization decimals; 0 when empty.
func (s *Store) MeanUtilization() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range s.records {
		sum += r.Utilization
	}
	return sum / float64(len(s.records))
}

// CountByTier counts records in the given opportunity tier.
func (s *Store) CountByTier(tier domain.OpportunityTier) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.records {
		if r.Opportunity == tier {
			n++
		}
	}
	return n
}

// TierCounts returns counts for all three tiers.
func (s *Store) TierCounts() map[domain.OpportunityTier]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[domain.OpportunityTier]int{
		domain.TierHigh:   0,
		domain.TierMedium: 0,
		domain.TierLow:    0,
	}
	for _, r := range s.records {
		counts[r.Opportunity]++
	}
	return counts
}

// ProcessedCount returns how many approvals have been recorded.
func (s *Store) ProcessedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processedCount
}

// ApprovedRevenueImpact returns the cumulative approved revenue total.
func (s *Store) ApprovedRevenueImpact() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvedRevenue
}

// SetAnalysis caches the strategy text for a customer id.
func (s *Store) SetAnalysis(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[id] = text
}

// Analysis returns the cached strategy text for a customer id, if any.
func (s *Store) Analysis(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.analyses[id]
	return text, ok
}
