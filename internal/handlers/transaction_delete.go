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
)

// TransactionDeleter defines the interface that the service must implement.
type TransactionDeleter interface {
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// DeleteTransactionErrorResponse represents an error response for transaction deletion
// swagger:model DeleteTransactionErrorResponse
type DeleteTransactionErrorResponse struct {
	// Error message
	// default: Transaction not found
	Error string `json:"error"`
}

// NewDeleteTransactionHandler returns an HTTP handler for deleting a transaction.
// @Summary Delete a transaction
// @Description Removes a transaction. Only the owning account can delete it.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction id"
// @Success 204 "Transaction deleted"
// @Failure 401 {object} handlers.DeleteTransactionErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.DeleteTransactionErrorResponse "Owned by another account"
// @Failure 404 {object} handlers.DeleteTransactionErrorResponse "Transaction not found"
// @Router /transactions/{id} [delete]
// @Security BearerAuth
func NewDeleteTransactionHandler(svc TransactionDeleter, tokenGetter TransactionTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(DeleteTransactionErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(DeleteTransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		id := chi.URLParam(r, "id")

		existing, err := svc.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, services.ErrTransactionNotFound) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(DeleteTransactionErrorResponse{Error: "Transaction not found"})
				return
			}
			logger.Log.Errorw("failed to get transaction", "transaction_id", id, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(DeleteTransactionErrorResponse{Error: "Internal server error"})
			return
		}
		if existing.Creator.Username != claims.Username {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(DeleteTransactionErrorResponse{Error: "Transaction belongs to another account"})
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			logger.Log.Errorw("failed to delete transaction", "transaction_id", id, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(DeleteTransactionErrorResponse{Error: "Internal server error"})
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
