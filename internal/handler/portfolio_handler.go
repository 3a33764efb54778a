package handler

import (
	"net/http"

	"github.com/samyukta/credit-intelligence-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Portfolio analytics
// ============================================================

func portfolioSummaryHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/portfolio/summary")
		defer span.End()

		summary, err := advisor.Summary(ctx, StateFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}
