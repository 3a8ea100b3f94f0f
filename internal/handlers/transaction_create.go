package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/services"
	"github.com/GlennEligio/dn-tx/internal/validation"
)

// TransactionCreator defines the interface that the service must implement.
type TransactionCreator interface {
	Create(ctx context.Context, creatorUsername string, tx *models.Transaction) (*models.Transaction, error)
}

// CreateTransactionErrorResponse represents an error response for transaction creation
// swagger:model CreateTransactionErrorResponse
type CreateTransactionErrorResponse struct {
	// Error message
	// default: Invalid request body
	Error string `json:"error"`

	// Field-level constraint failures, present on validation errors
	Violations []validation.Violation `json:"violations,omitempty"`
}

// NewCreateTransactionHandler returns an HTTP handler for creating a transaction.
// @Summary Create a transaction
// @Description Creates a new transaction owned by the authenticated account. Line items are interpreted per the declared type; every constraint violation is reported, not just the first.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body handlers.TransactionRequest true "Transaction to create"
// @Success 201 {object} handlers.TransactionResponse "Transaction created"
// @Failure 400 {object} handlers.CreateTransactionErrorResponse "Invalid request body or constraint violations"
// @Failure 401 {object} handlers.CreateTransactionErrorResponse "Unauthorized"
// @Router /transactions [post]
// @Security BearerAuth
func NewCreateTransactionHandler(svc TransactionCreator, tokenGetter TransactionTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(CreateTransactionErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(CreateTransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode transaction request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CreateTransactionErrorResponse{Error: "Invalid request body"})
			return
		}

		tx, err := req.toTransaction()
		if err != nil {
			logger.Log.Warnw("invalid transaction type", "type", req.Type, "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CreateTransactionErrorResponse{Error: err.Error()})
			return
		}

		saved, err := svc.Create(ctx, claims.Username, tx)
		if err != nil {
			var violations validation.Violations
			switch {
			case errors.As(err, &violations):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(CreateTransactionErrorResponse{
					Error:      "Invalid transaction",
					Violations: violations,
				})
			case errors.Is(err, services.ErrAccountNotFound):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(CreateTransactionErrorResponse{Error: "Unauthorized"})
			default:
				logger.Log.Errorw("failed to create transaction", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(CreateTransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(newTransactionResponse(saved))
	}
}
