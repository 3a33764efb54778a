// Package port defines the interfaces between the core services and the
// external collaborators, so services can be tested with mocks.
package port

import (
	"context"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
)

// MarketProvider supplies the current market snapshot. Implementations
// absorb feed failures by falling back to simulated values, so Snapshot only
// errors on context cancellation.
type MarketProvider interface {
	Snapshot(ctx context.Context) (domain.MarketSnapshot, error)
	// Refresh discards any cached snapshot before fetching.
	Refresh(ctx context.Context) (domain.MarketSnapshot, error)
}

// AnalysisGenerator is the text-generation collaborator producing the
// free-form strategy analysis for one customer. The returned text is opaque
// to the core.
type AnalysisGenerator interface {
	Analyze(ctx context.Context, rec domain.CustomerRecord, m domain.MarketSnapshot) (string, domain.TokenUsage, error)
}

// OAuthProvider is the external identity collaborator (authorization-code
// flow). The core never performs the OAuth network calls itself.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	UserInfo(ctx context.Context, accessToken string) (*domain.Identity, error)
}

// Cache is a generic TTL key/value cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Clear()
}
