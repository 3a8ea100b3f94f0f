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

// TransactionGetter defines the interface that the service must implement.
type TransactionGetter interface {
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
}

// GetTransactionErrorResponse represents an error response for fetching a transaction
// swagger:model GetTransactionErrorResponse
type GetTransactionErrorResponse struct {
	// Error message
	// default: Transaction not found
	Error string `json:"error"`
}

// NewGetTransactionHandler returns an HTTP handler for fetching one transaction by id.
// @Summary Get a transaction
// @Description Returns the transaction with the given id. Only the owning account can read it.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction id"
// @Success 200 {object} handlers.TransactionResponse "Transaction found"
// @Failure 401 {object} handlers.GetTransactionErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.GetTransactionErrorResponse "Owned by another account"
// @Failure 404 {object} handlers.GetTransactionErrorResponse "Transaction not found"
// @Router /transactions/{id} [get]
// @Security BearerAuth
func NewGetTransactionHandler(svc TransactionGetter, tokenGetter TransactionTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(GetTransactionErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(GetTransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		id := chi.URLParam(r, "id")

		tx, err := svc.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, services.ErrTransactionNotFound) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(GetTransactionErrorResponse{Error: "Transaction not found"})
				return
			}
			logger.Log.Errorw("failed to get transaction", "transaction_id", id, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(GetTransactionErrorResponse{Error: "Internal server error"})
			return
		}

		if tx.Creator.Username != claims.Username {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(GetTransactionErrorResponse{Error: "Transaction belongs to another account"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(newTransactionResponse(tx))
	}
}
