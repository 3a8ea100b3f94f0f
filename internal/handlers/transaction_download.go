package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GlennEligio/dn-tx/internal/excel"
	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/services"
)

// TransactionExporter defines the interface that the service must implement.
type TransactionExporter interface {
	ListForExport(ctx context.Context, creatorUsername string, after, before time.Time) ([]models.Transaction, error)
}

// DownloadTransactionErrorResponse represents an error response for the download endpoint
// swagger:model DownloadTransactionErrorResponse
type DownloadTransactionErrorResponse struct {
	// Error message
	// default: Invalid query parameters
	Error string `json:"error"`
}

// NewDownloadTransactionsHandler returns an HTTP handler that exports the
// authenticated account's transactions as an Excel workbook.
// @Summary Download transactions as Excel
// @Description Exports every transaction of the authenticated account within the date range as a multi-sheet Excel workbook, one sheet per transaction type.
// @Tags transactions
// @Produce application/octet-stream
// @Param afterDate query string false "Lower completion-date bound, RFC3339"
// @Param beforeDate query string false "Upper completion-date bound, RFC3339"
// @Success 200 {file} file "Excel workbook"
// @Failure 400 {object} handlers.DownloadTransactionErrorResponse "Invalid query parameters"
// @Failure 401 {object} handlers.DownloadTransactionErrorResponse "Unauthorized"
// @Router /transactions/download [get]
// @Security BearerAuth
func NewDownloadTransactionsHandler(svc TransactionExporter, tokenGetter TransactionTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(DownloadTransactionErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(DownloadTransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		after, before, err := parseDateRange(r.URL.Query().Get("afterDate"), r.URL.Query().Get("beforeDate"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(DownloadTransactionErrorResponse{Error: "Invalid date bound, expected RFC3339"})
			return
		}

		transactions, err := svc.ListForExport(ctx, claims.Username, after, before)
		if err != nil {
			if errors.Is(err, services.ErrAccountNotFound) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(DownloadTransactionErrorResponse{Error: "Unauthorized"})
				return
			}
			logger.Log.Errorw("failed to list transactions for export", "username", claims.Username, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(DownloadTransactionErrorResponse{Error: "Internal server error"})
			return
		}

		buf, err := excel.Encode(transactions)
		if err != nil {
			logger.Log.Errorw("failed to encode transactions workbook", "username", claims.Username, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(DownloadTransactionErrorResponse{Error: "Internal server error"})
			return
		}

		filename := fmt.Sprintf("Transaction %s.xlsx", time.Now().Format("Jan 2, 2006"))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			logger.Log.Errorw("failed to write workbook response", "error", err)
		}
	}
}
