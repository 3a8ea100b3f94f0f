package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/services"
)

// TransactionSearcher defines the interface that the service must implement.
type TransactionSearcher interface {
	GetByUsernameAndID(ctx context.Context, username, id string) (*models.Transaction, error)
}

// SearchTransactionErrorResponse represents an error response for the search endpoint
// swagger:model SearchTransactionErrorResponse
type SearchTransactionErrorResponse struct {
	// Error message
	// default: Transaction not found
	Error string `json:"error"`
}

// NewSearchTransactionHandler returns an HTTP handler that looks up a
// transaction by actor username plus transaction id.
// @Summary Search a transaction
// @Description Returns the transaction matching both the actor username and the transaction id.
// @Tags transactions
// @Produce json
// @Param username query string true "Actor username recorded on the transaction"
// @Param tx_id query string true "Transaction id"
// @Success 200 {object} handlers.TransactionResponse "Transaction found"
// @Failure 400 {object} handlers.SearchTransactionErrorResponse "Missing query parameters"
// @Failure 404 {object} handlers.SearchTransactionErrorResponse "Transaction not found"
// @Router /transactions/search [get]
func NewSearchTransactionHandler(svc TransactionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		username := r.URL.Query().Get("username")
		id := r.URL.Query().Get("tx_id")
		if username == "" || id == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SearchTransactionErrorResponse{Error: "username and tx_id are required"})
			return
		}

		tx, err := svc.GetByUsernameAndID(ctx, username, id)
		if err != nil {
			if errors.Is(err, services.ErrTransactionNotFound) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(SearchTransactionErrorResponse{Error: "Transaction not found"})
				return
			}
			logger.Log.Errorw("failed to search transaction", "username", username, "transaction_id", id, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(SearchTransactionErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(newTransactionResponse(tx))
	}
}
