package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/services"
	"github.com/GlennEligio/dn-tx/internal/validation"
)

// TransactionUpdater defines the interface that the service must implement.
type TransactionUpdater interface {
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	Update(ctx context.Context, id string, src *models.Transaction) (*models.Transaction, error)
}

// UpdateTransactionErrorResponse represents an error response for transaction updates
// swagger:model UpdateTransactionErrorResponse
type UpdateTransactionErrorResponse struct {
	// Error message
	// default: Transaction not found
	Error string `json:"error"`

	// Field-level constraint failures, present on validation errors
	Violations []validation.Violation `json:"violations,omitempty"`
}

// NewUpdateTransactionHandler returns an HTTP handler for updating a transaction.
// @Summary Update a transaction
// @Description Overwrites the mutable fields of a transaction. Only the owning account can update it; the creator and type never change.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction id"
// @Param request body handlers.TransactionRequest true "New transaction contents"
// @Success 200 {object} handlers.TransactionResponse "Transaction updated"
// @Failure 400 {object} handlers.UpdateTransactionErrorResponse "Invalid request body or constraint violations"
// @Failure 401 {object} handlers.UpdateTransactionErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.UpdateTransactionErrorResponse "Owned by another account"
// @Failure 404 {object} handlers.UpdateTransactionErrorResponse "Transaction not found"
// @Router /transactions/{id} [put]
// @Security BearerAuth
func NewUpdateTransactionHandler(svc TransactionUpdater, tokenGetter TransactionTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		id := chi.URLParam(r, "id")

		existing, err := svc.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, services.ErrTransactionNotFound) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: "Transaction not found"})
				return
			}
			logger.Log.Errorw("failed to get transaction", "transaction_id", id, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: "Internal server error"})
			return
		}
		if existing.Creator.Username != claims.Username {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: "Transaction belongs to another account"})
			return
		}

		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode transaction request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: "Invalid request body"})
			return
		}

		src, err := req.toTransaction()
		if err != nil {
			logger.Log.Warnw("invalid transaction type", "type", req.Type, "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: err.Error()})
			return
		}

		updated, err := svc.Update(ctx, id, src)
		if err != nil {
			var violations validation.Violations
			switch {
			case errors.As(err, &violations):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{
					Error:      "Invalid transaction",
					Violations: violations,
				})
			case errors.Is(err, services.ErrTransactionNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: "Transaction not found"})
			default:
				logger.Log.Errorw("failed to update transaction", "transaction_id", id, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(UpdateTransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(newTransactionResponse(updated))
	}
}
