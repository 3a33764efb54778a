// Package session owns the per-user session lifecycle: creation after a
// successful OAuth exchange (or demo bypass), signed bearer tokens,
// 24-hour expiry, and destruction on logout. Each session carries its own
// portfolio store; nothing is shared across sessions.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/portfolio"
)

// State bundles everything scoped to one session: the auth context and the
// portfolio it owns. Destroying a session drops the whole state object.
type State struct {
	Session   *domain.Session
	Portfolio *portfolio.Store
}

// Claims are the custom claims embedded in session tokens.
type Claims struct {
	SID   string `json:"sid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues and validates session tokens and tracks live session state.
type Manager struct {
	secret      []byte
	ttl         time.Duration
	adminEmails map[string]bool
	logger      *zap.Logger

	mu     sync.RWMutex
	states map[string]*State
}

// NewManager creates a session manager.
func NewManager(secret string, ttl time.Duration, adminEmails []string, logger *zap.Logger) *Manager {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[e] = true
	}
	return &Manager{
		secret:      []byte(secret),
		ttl:         ttl,
		adminEmails: admins,
		logger:      logger,
		states:      make(map[string]*State),
	}
}

// IsAdmin reports whether the email is on the admin allowlist.
func (m *Manager) IsAdmin(email string) bool {
	return m.adminEmails[email]
}

// Create promotes an identity to an authenticated session with a fresh
// portfolio store, and returns the signed bearer token for it.
func (m *Manager) Create(identity *domain.Identity) (*State, string, error) {
	now := time.Now()
	sess := &domain.Session{
		ID:            uuid.New().String(),
		Authenticated: true,
		Identity:      identity,
		LoginTime:     now,
		IsAdmin:       m.IsAdmin(identity.Email),
	}

	claims := Claims{
		SID:   sess.ID,
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "credit-intelligence-engine",
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	state := &State{
		Session:   sess,
		Portfolio: portfolio.NewStore(),
	}

	m.mu.Lock()
	m.states[sess.ID] = state
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("email", identity.Email),
		zap.Bool("is_admin", sess.IsAdmin),
	)
	return state, token, nil
}

// FromToken validates a bearer token and returns the live session state.
// Expired sessions are destroyed on sight and reported as unauthorized.
func (m *Manager) FromToken(tokenString string) (*State, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		// An expired token still identifies its session; drop the state so
		// nothing session-scoped outlives the 24-hour window.
		if errors.Is(err, jwt.ErrTokenExpired) {
			if claims, ok := token.Claims.(*Claims); ok && claims.SID != "" {
				m.Destroy(claims.SID)
			}
			return nil, &domain.ErrUnauthorized{Message: "session expired"}
		}
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired session token"}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, &domain.ErrUnauthorized{Message: "invalid session claims"}
	}

	m.mu.RLock()
	state, exists := m.states[claims.SID]
	m.mu.RUnlock()
	if !exists {
		return nil, &domain.ErrUnauthorized{Message: "session not found"}
	}

	if state.Session.Expired(m.ttl, time.Now()) {
		m.Destroy(claims.SID)
		return nil, &domain.ErrUnauthorized{Message: "session expired"}
	}
	return state, nil
}

// Destroy removes the session and everything scoped to it, including the
// portfolio and cached analyses.
func (m *Manager) Destroy(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.states[sid]; ok {
		delete(m.states, sid)
		m.logger.Info("session destroyed", zap.String("session_id", sid))
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}
