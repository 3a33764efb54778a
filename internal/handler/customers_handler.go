package handler

import (
	"encoding/json"
	"net/http"

	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Customers
// ============================================================

func addCustomerHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/customers")
		defer span.End()

		var in domain.CustomerInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		record, err := advisor.AddCustomer(ctx, StateFromContext(ctx), in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, record)
	}
}

func listCustomersHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers")
		defer span.End()

		state := StateFromContext(ctx)

		var records []domain.CustomerRecord
		var err error
		if n := parseRecent(r); n > 0 {
			records, err = advisor.RecentCustomers(state, n)
		} else {
			records, err = advisor.ListCustomers(state)
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"customers": records,
			"count":     len(records),
		})
	}
}

func getCustomerHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}")
		defer span.End()

		record, err := advisor.GetCustomer(StateFromContext(ctx), chi.URLParam(r, "customerId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

func clearPortfolioHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/customers")
		defer span.End()

		if err := advisor.ClearPortfolio(StateFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func recalculateHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/customers/recalculate")
		defer span.End()

		updated, err := advisor.RecalculateAll(ctx, StateFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
	}
}

func approveHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/customers/{customerId}/approve")
		defer span.End()

		record, err := advisor.Approve(StateFromContext(ctx), chi.URLParam(r, "customerId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		logger.Info("recommendation approved",
			zap.String("customer_id", record.ID),
			zap.Float64("revenue_impact", record.RevenueImpact),
		)
		writeJSON(w, http.StatusOK, record)
	}
}

func analysisHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/customers/{customerId}/analysis")
		defer span.End()

		result, err := advisor.Analysis(ctx, StateFromContext(ctx), chi.URLParam(r, "customerId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
