package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/GlennEligio/dn-tx/internal/excel"
	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/services"
	"github.com/GlennEligio/dn-tx/internal/validation"
)

const maxUploadSize = 10 << 20 // 10 MiB

// TransactionReconciler defines the interface that the service must implement.
type TransactionReconciler interface {
	Reconcile(ctx context.Context, creatorUsername string, batch []models.Transaction, overwrite bool) (int, error)
}

// UploadTransactionResponse represents a successful upload response
// swagger:model UploadTransactionResponse
type UploadTransactionResponse struct {
	// Number of transactions created or overwritten
	// default: 3
	TransactionsAffected int `json:"transactionsAffected"`
}

// UploadTransactionErrorResponse represents an error response for the upload endpoint
// swagger:model UploadTransactionErrorResponse
type UploadTransactionErrorResponse struct {
	// Error message
	// default: Malformed workbook
	Error string `json:"error"`

	// Field-level constraint failures, present on validation errors
	Violations []validation.Violation `json:"violations,omitempty"`
}

// NewUploadTransactionsHandler returns an HTTP handler that merges an
// uploaded Excel workbook into the authenticated account's transactions.
// The whole batch is applied or none of it is.
// @Summary Upload transactions from Excel
// @Description Reads a multi-sheet Excel workbook and reconciles its rows against storage. Unknown ids are created; known ids are overwritten only when overwrite is set. Rows owned by another account reject the whole upload.
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel workbook"
// @Param overwrite query bool false "Overwrite existing transactions" default(false)
// @Success 200 {object} handlers.UploadTransactionResponse "Upload applied"
// @Failure 400 {object} handlers.UploadTransactionErrorResponse "Malformed workbook or constraint violations"
// @Failure 401 {object} handlers.UploadTransactionErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.UploadTransactionErrorResponse "Workbook touches another account's transactions"
// @Router /transactions/upload [post]
// @Security BearerAuth
func NewUploadTransactionsHandler(svc TransactionReconciler, tokenGetter TransactionTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			logger.Log.Errorw("failed to parse multipart form", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Invalid multipart form"})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Missing file"})
			return
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Expected an .xlsx workbook"})
			return
		}

		batch, err := excel.Decode(file)
		if err != nil {
			logger.Log.Warnw("failed to decode workbook", "filename", header.Filename, "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Malformed workbook: " + err.Error()})
			return
		}

		// Every row must name the acting account as its creator; a blank
		// creator cell rejects the batch too, before any database work.
		for i := range batch {
			if batch[i].Creator.Username != claims.Username {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Workbook contains transactions of another account"})
				return
			}
		}

		overwrite := strings.EqualFold(r.URL.Query().Get("overwrite"), "true")

		affected, err := svc.Reconcile(ctx, claims.Username, batch, overwrite)
		if err != nil {
			var violations validation.Violations
			switch {
			case errors.As(err, &violations):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(UploadTransactionErrorResponse{
					Error:      "Invalid transaction in workbook",
					Violations: violations,
				})
			case errors.Is(err, services.ErrForbidden):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Workbook touches another account's transactions"})
			case errors.Is(err, services.ErrAccountNotFound):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Unauthorized"})
			default:
				logger.Log.Errorw("failed to reconcile workbook", "filename", header.Filename, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(UploadTransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(UploadTransactionResponse{TransactionsAffected: affected})
	}
}
