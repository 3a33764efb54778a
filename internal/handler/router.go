package handler

import (
	"net/http"
	"time"

	"github.com/samyukta/credit-intelligence-go/internal/infra/observability"
	"github.com/samyukta/credit-intelligence-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except the login endpoints requires a session token.
func NewRouter(advisor *service.Advisor, authSvc *service.Auth, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Engine metrics
		// GET /v1/metrics/engine
		// =============================================
		r.Get("/metrics/engine", engineMetricsHandler(metrics, logger))

		// =============================================
		// 2. Authentication
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Get("/login", authLoginHandler(authSvc, logger))
			r.Get("/callback", authCallbackHandler(authSvc, logger))
			r.Post("/demo", authDemoHandler(authSvc, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(SessionMiddleware(authSvc, logger))
				r.Post("/logout", authLogoutHandler(authSvc, logger))
				r.Get("/me", authMeHandler(logger))
			})
		})

		// =============================================
		// 3. Session-scoped API (protected)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(authSvc, logger))

			// Market snapshot
			r.Get("/market", marketHandler(advisor, logger))
			r.Post("/market/refresh", marketRefreshHandler(advisor, logger))

			// Customers
			r.Post("/customers", addCustomerHandler(advisor, logger))
			r.Get("/customers", listCustomersHandler(advisor, logger))
			r.Delete("/customers", clearPortfolioHandler(advisor, logger))
			r.Post("/customers/recalculate", recalculateHandler(advisor, logger))
			r.Get("/customers/{customerId}", getCustomerHandler(advisor, logger))
			r.Post("/customers/{customerId}/approve", approveHandler(advisor, logger))
			r.Post("/customers/{customerId}/analysis", analysisHandler(advisor, logger))

			// Portfolio
			r.Get("/portfolio/summary", portfolioSummaryHandler(advisor, logger))

			// Export
			r.Get("/export/csv", exportCSVHandler(advisor, logger))
			r.Get("/export/xlsx", exportXLSXHandler(advisor, logger))
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

var startTime = time.Now()

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "healthy",
			"service":        "credit-intelligence-engine",
			"uptime_seconds": int64(time.Since(startTime).Seconds()),
			"checked_at":     time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func engineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/engine")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetEngineSnapshot())
	}
}
