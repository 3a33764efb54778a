package handler

import (
	"net/http"

	"github.com/samyukta/credit-intelligence-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Authentication
// ============================================================

func authLoginHandler(authSvc *service.Auth, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/auth/login")
		defer span.End()

		start, err := authSvc.BeginLogin(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, start)
	}
}

func authCallbackHandler(authSvc *service.Auth, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/auth/callback")
		defer span.End()

		state := r.URL.Query().Get("state")
		code := r.URL.Query().Get("code")
		if state == "" || code == "" {
			writeError(w, http.StatusBadRequest, "missing state or code parameter")
			return
		}

		result, err := authSvc.CompleteLogin(ctx, state, code)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		logger.Info("login completed",
			zap.String("email", result.Session.Identity.Email),
			zap.Bool("is_admin", result.Session.IsAdmin),
		)
		writeJSON(w, http.StatusOK, result)
	}
}

func authDemoHandler(authSvc *service.Auth, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/demo")
		defer span.End()

		result, err := authSvc.DemoLogin(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func authLogoutHandler(authSvc *service.Auth, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		state := StateFromContext(r.Context())
		authSvc.Logout(state)

		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

func authMeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/auth/me")
		defer span.End()

		state := StateFromContext(r.Context())
		if state == nil || state.Session == nil {
			writeError(w, http.StatusUnauthorized, "no active session")
			return
		}

		writeJSON(w, http.StatusOK, state.Session)
	}
}
