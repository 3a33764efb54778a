package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/samyukta/credit-intelligence-go/internal/service"
	"github.com/samyukta/credit-intelligence-go/internal/session"
	"go.uber.org/zap"
)

type contextKey string

const sessionStateKey contextKey = "sessionState"

// SessionMiddleware validates Bearer session tokens and injects the
// caller's session state into the request context.
func SessionMiddleware(authSvc *service.Auth, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "authentication token not provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			state, err := authSvc.SessionFromToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), sessionStateKey, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StateFromContext extracts the authenticated session state from context.
func StateFromContext(ctx context.Context) *session.State {
	v, _ := ctx.Value(sessionStateKey).(*session.State)
	return v
}
