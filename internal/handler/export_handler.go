package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/samyukta/credit-intelligence-go/internal/export"
	"github.com/samyukta/credit-intelligence-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Portfolio export
// ============================================================

func exportCSVHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/export/csv")
		defer span.End()

		// Render into a buffer first so a failure can still become a
		// JSON error instead of a truncated download.
		var buf bytes.Buffer
		if err := advisor.ExportCSV(StateFromContext(ctx), &buf); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename("csv", time.Now())))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

func exportXLSXHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/export/xlsx")
		defer span.End()

		var buf bytes.Buffer
		if err := advisor.ExportXLSX(StateFromContext(ctx), &buf); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename("xlsx", time.Now())))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
