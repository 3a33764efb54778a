package handler

import (
	"net/http"

	"github.com/samyukta/credit-intelligence-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Market snapshot
// ============================================================

func marketHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/market")
		defer span.End()

		snapshot, err := advisor.MarketSnapshot(ctx, StateFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}

func marketRefreshHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/market/refresh")
		defer span.End()

		snapshot, err := advisor.RefreshMarket(ctx, StateFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}
