package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/infra/cache"
	"github.com/samyukta/credit-intelligence-go/internal/port"
	"github.com/samyukta/credit-intelligence-go/internal/service"
	"github.com/samyukta/credit-intelligence-go/internal/session"
)

type mockOAuth struct {
	exchangeErr error
	userInfoErr error
	identity    *domain.Identity
}

func (m *mockOAuth) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockOAuth) Exchange(_ context.Context, _ string) (string, error) {
	if m.exchangeErr != nil {
		return "", m.exchangeErr
	}
	return "access-token", nil
}

func (m *mockOAuth) UserInfo(_ context.Context, _ string) (*domain.Identity, error) {
	if m.userInfoErr != nil {
		return nil, m.userInfoErr
	}
	return m.identity, nil
}

func newAuth(provider port.OAuthProvider, demoAuth bool) (*service.Auth, *session.Manager) {
	mgr := session.NewManager("test-secret", 24*time.Hour, []string{"admin@example.com"}, zap.NewNop())
	svc := service.NewAuth(provider, mgr, cache.New[string](10*time.Minute), 24*time.Hour, demoAuth, zap.NewNop())
	return svc, mgr
}

func TestLoginFlow_Success(t *testing.T) {
	provider := &mockOAuth{identity: &domain.Identity{Name: "Admin", Email: "admin@example.com"}}
	svc, _ := newAuth(provider, false)

	start, err := svc.BeginLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if start.State == "" {
		t.Fatal("expected a state token")
	}

	result, err := svc.CompleteLogin(context.Background(), start.State, "auth-code")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Session.Authenticated {
		t.Error("expected authenticated session")
	}
	if !result.Session.IsAdmin {
		t.Error("allowlisted email must be admin")
	}

	state, err := svc.SessionFromToken(result.Token)
	if err != nil {
		t.Fatal(err)
	}
	if state.Session.Identity.Email != "admin@example.com" {
		t.Errorf("unexpected identity: %+v", state.Session.Identity)
	}
}

func TestCompleteLogin_InvalidState(t *testing.T) {
	svc, mgr := newAuth(&mockOAuth{identity: &domain.Identity{Email: "x@example.com"}}, false)

	_, err := svc.CompleteLogin(context.Background(), "forged-state", "code")
	var flow *domain.ErrAuthFlow
	if !errors.As(err, &flow) {
		t.Fatalf("expected ErrAuthFlow, got %v", err)
	}
	if mgr.Count() != 0 {
		t.Error("no session may be created on a failed login")
	}
}

func TestCompleteLogin_StateIsSingleUse(t *testing.T) {
	provider := &mockOAuth{identity: &domain.Identity{Email: "x@example.com"}}
	svc, _ := newAuth(provider, false)

	start, err := svc.BeginLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteLogin(context.Background(), start.State, "code"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteLogin(context.Background(), start.State, "code"); err == nil {
		t.Fatal("state token must not validate twice")
	}
}

func TestCompleteLogin_ExchangeFailureDiscardsState(t *testing.T) {
	provider := &mockOAuth{exchangeErr: errors.New("bad code")}
	svc, mgr := newAuth(provider, false)

	start, err := svc.BeginLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.CompleteLogin(context.Background(), start.State, "code")
	var flow *domain.ErrAuthFlow
	if !errors.As(err, &flow) {
		t.Fatalf("expected ErrAuthFlow, got %v", err)
	}
	if flow.Step != "token exchange" {
		t.Errorf("expected failure at token exchange, got %s", flow.Step)
	}
	if mgr.Count() != 0 {
		t.Error("partial session state must be discarded")
	}
}

func TestCompleteLogin_ProfileFetchFailure(t *testing.T) {
	provider := &mockOAuth{userInfoErr: errors.New("profile unavailable")}
	svc, mgr := newAuth(provider, false)

	start, _ := svc.BeginLogin(context.Background())
	_, err := svc.CompleteLogin(context.Background(), start.State, "code")
	var flow *domain.ErrAuthFlow
	if !errors.As(err, &flow) {
		t.Fatalf("expected ErrAuthFlow, got %v", err)
	}
	if mgr.Count() != 0 {
		t.Error("partial session state must be discarded")
	}
}

func TestDemoLogin(t *testing.T) {
	svc, _ := newAuth(nil, true)

	result, err := svc.DemoLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Session.Authenticated {
		t.Error("demo session must be authenticated")
	}
	if result.Session.IsAdmin {
		t.Error("demo session must not be admin")
	}
}

func TestDemoLogin_Disabled(t *testing.T) {
	svc, _ := newAuth(nil, false)

	_, err := svc.DemoLogin(context.Background())
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogout_DestroysSession(t *testing.T) {
	svc, mgr := newAuth(nil, true)

	result, err := svc.DemoLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	state, err := svc.SessionFromToken(result.Token)
	if err != nil {
		t.Fatal(err)
	}

	svc.Logout(state)

	if _, err := svc.SessionFromToken(result.Token); err == nil {
		t.Error("token must be rejected after logout")
	}
	if mgr.Count() != 0 {
		t.Error("session state must be gone")
	}
}

func TestBeginLogin_WithoutProvider(t *testing.T) {
	svc, _ := newAuth(nil, true)

	if _, err := svc.BeginLogin(context.Background()); err == nil {
		t.Fatal("expected error when OAuth is not configured")
	}
}
