package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/port"
	"github.com/samyukta/credit-intelligence-go/internal/session"
)

var authTracer = otel.Tracer("service/auth")

// LoginStart is the response to GET /v1/auth/login.
type LoginStart struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// LoginResult carries the session token issued after a completed login.
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expires_in"`
	Session   *domain.Session `json:"session"`
}

// Auth drives the login flows: the OAuth authorization-code exchange and
// the demo bypass. It never talks to Google directly; that's the provider's
// job.
type Auth struct {
	provider port.OAuthProvider
	sessions *session.Manager
	states   port.Cache[string] // pending anti-forgery state tokens
	ttl      time.Duration
	demoAuth bool
	logger   *zap.Logger
}

// NewAuth creates the auth service. provider may be nil when only demo
// auth is configured.
func NewAuth(provider port.OAuthProvider, sessions *session.Manager, states port.Cache[string], ttl time.Duration, demoAuth bool, logger *zap.Logger) *Auth {
	return &Auth{
		provider: provider,
		sessions: sessions,
		states:   states,
		ttl:      ttl,
		demoAuth: demoAuth,
		logger:   logger,
	}
}

// BeginLogin generates an anti-forgery state token and builds the
// authorization URL for the browser redirect.
func (s *Auth) BeginLogin(ctx context.Context) (*LoginStart, error) {
	_, span := authTracer.Start(ctx, "Auth.BeginLogin")
	defer span.End()

	if s.provider == nil {
		return nil, &domain.ErrUnauthorized{Message: "OAuth login is not configured"}
	}

	state := uuid.NewString()
	s.states.Set(state, state)

	return &LoginStart{
		AuthURL: s.provider.AuthURL(state),
		State:   state,
	}, nil
}

// CompleteLogin verifies the returned state, exchanges the code for a
// token, fetches the profile, and promotes the result to an authenticated
// session. Any failing step aborts the attempt and discards all partial
// state.
func (s *Auth) CompleteLogin(ctx context.Context, state, code string) (*LoginResult, error) {
	ctx, span := authTracer.Start(ctx, "Auth.CompleteLogin")
	defer span.End()

	if s.provider == nil {
		return nil, &domain.ErrUnauthorized{Message: "OAuth login is not configured"}
	}

	if _, ok := s.states.Get(state); !ok {
		return nil, &domain.ErrAuthFlow{Step: "state check", Err: errors.New("invalid state parameter")}
	}
	// One-shot: a state token never validates twice.
	s.states.Delete(state)

	accessToken, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("oauth exchange failed", zap.Error(err))
		return nil, &domain.ErrAuthFlow{Step: "token exchange", Err: err}
	}

	identity, err := s.provider.UserInfo(ctx, accessToken)
	if err != nil {
		s.logger.Warn("oauth profile fetch failed", zap.Error(err))
		return nil, &domain.ErrAuthFlow{Step: "profile fetch", Err: err}
	}
	if identity.Email == "" {
		return nil, &domain.ErrAuthFlow{Step: "profile fetch", Err: errors.New("profile has no email")}
	}

	st, token, err := s.sessions.Create(identity)
	if err != nil {
		return nil, &domain.ErrAuthFlow{Step: "session create", Err: err}
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: int(s.ttl.Seconds()),
		Session:   st.Session,
	}, nil
}

// DemoLogin creates an authenticated demo session when the bypass is
// enabled.
func (s *Auth) DemoLogin(ctx context.Context) (*LoginResult, error) {
	_, span := authTracer.Start(ctx, "Auth.DemoLogin")
	defer span.End()

	if !s.demoAuth {
		return nil, &domain.ErrUnauthorized{Message: "demo login is disabled"}
	}

	st, token, err := s.sessions.Create(&domain.Identity{
		Name:  "Demo User",
		Email: "demo@localhost",
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: int(s.ttl.Seconds()),
		Session:   st.Session,
	}, nil
}

// Logout destroys the session and everything scoped to it.
func (s *Auth) Logout(state *session.State) {
	if state == nil || state.Session == nil {
		return
	}
	s.sessions.Destroy(state.Session.ID)
}

// SessionFromToken resolves a bearer token into live session state.
func (s *Auth) SessionFromToken(token string) (*session.State, error) {
	return s.sessions.FromToken(token)
}
