package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/services"
)

// TransactionLister defines the interface that the service must implement.
type TransactionLister interface {
	ListByCreator(ctx context.Context, creatorUsername string, types []models.TransactionType, after, before time.Time, pageNumber, pageSize int) ([]models.Transaction, int64, error)
}

// TransactionPageResponse represents one page of transactions
// swagger:model TransactionPageResponse
type TransactionPageResponse struct {
	// Transactions on this page, newest first
	Transactions []TransactionResponse `json:"transactions"`

	// Total matching transactions across all pages
	TotalTransactions int64 `json:"totalTransactions"`

	// Total number of pages
	TotalPages int64 `json:"totalPages"`

	// Current page number, 1-based
	PageNumber int `json:"pageNumber"`

	// Page size
	PageSize int `json:"pageSize"`
}

// ListTransactionErrorResponse represents an error response for the list endpoint
// swagger:model ListTransactionErrorResponse
type ListTransactionErrorResponse struct {
	// Error message
	// default: Invalid query parameters
	Error string `json:"error"`
}

// NewListTransactionsHandler returns an HTTP handler listing the
// authenticated account's transactions, filtered and paged.
// @Summary List own transactions
// @Description Returns one page of the authenticated account's transactions, optionally filtered by type and completion date, newest first.
// @Tags transactions
// @Produce json
// @Param type query []string false "Transaction type filter, repeatable" collectionFormat(multi)
// @Param afterDate query string false "Lower completion-date bound, RFC3339"
// @Param beforeDate query string false "Upper completion-date bound, RFC3339"
// @Param pageNumber query int false "Page number, 1-based" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Success 200 {object} handlers.TransactionPageResponse "Page of transactions"
// @Failure 400 {object} handlers.ListTransactionErrorResponse "Invalid query parameters"
// @Failure 401 {object} handlers.ListTransactionErrorResponse "Unauthorized"
// @Router /transactions [get]
// @Security BearerAuth
func NewListTransactionsHandler(svc TransactionLister, tokenGetter TransactionTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ListTransactionErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ListTransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		query := r.URL.Query()

		var types []models.TransactionType
		for _, raw := range query["type"] {
			t, err := models.ParseTransactionType(raw)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ListTransactionErrorResponse{Error: "Unknown transaction type: " + raw})
				return
			}
			types = append(types, t)
		}

		after, before, err := parseDateRange(query.Get("afterDate"), query.Get("beforeDate"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ListTransactionErrorResponse{Error: "Invalid date bound, expected RFC3339"})
			return
		}

		pageNumber := parsePositiveInt(query.Get("pageNumber"), 1)
		pageSize := parsePositiveInt(query.Get("pageSize"), 10)

		transactions, total, err := svc.ListByCreator(ctx, claims.Username, types, after, before, pageNumber, pageSize)
		if err != nil {
			if errors.Is(err, services.ErrAccountNotFound) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(ListTransactionErrorResponse{Error: "Unauthorized"})
				return
			}
			logger.Log.Errorw("failed to list transactions", "username", claims.Username, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ListTransactionErrorResponse{Error: "Internal server error"})
			return
		}

		totalPages := total / int64(pageSize)
		if total%int64(pageSize) != 0 {
			totalPages++
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TransactionPageResponse{
			Transactions:      newTransactionResponses(transactions),
			TotalTransactions: total,
			TotalPages:        totalPages,
			PageNumber:        pageNumber,
			PageSize:          pageSize,
		})
	}
}

// parseDateRange parses optional RFC3339 bounds; an absent lower bound is
// open, an absent upper bound means now.
func parseDateRange(afterRaw, beforeRaw string) (after, before time.Time, err error) {
	before = time.Now()
	if afterRaw != "" {
		if after, err = time.Parse(time.RFC3339, afterRaw); err != nil {
			return
		}
	}
	if beforeRaw != "" {
		if before, err = time.Parse(time.RFC3339, beforeRaw); err != nil {
			return
		}
	}
	return
}

func parsePositiveInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
