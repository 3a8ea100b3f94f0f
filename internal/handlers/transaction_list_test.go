package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlennEligio/dn-tx/internal/models"
)

func TestListTransactionsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transactions := []models.Transaction{
		{
			ID:       "tx-2",
			Username: "buyer42",
			Creator:  models.Account{Username: "glenneligio"},
			Type:     models.TypeGoldToPhp,
			Items: []models.TransactionItem{
				models.GoldToPhpItem{Name: "Juan", PhpPaid: 500, GoldPerPhp: 30, MethodOfPayment: "GCash"},
			},
		},
		{
			ID:       "tx-1",
			Username: "buyer43",
			Creator:  models.Account{Username: "glenneligio"},
			Type:     models.TypeGoldToPhp,
			Items: []models.TransactionItem{
				models.GoldToPhpItem{Name: "Pedro", PhpPaid: 250, GoldPerPhp: 28, MethodOfPayment: "PayPal"},
			},
		},
	}

	t.Run("success with defaults", func(t *testing.T) {
		svc := NewMockTransactionLister(ctrl)
		svc.EXPECT().
			ListByCreator(gomock.Any(), "glenneligio", gomock.Nil(), gomock.Any(), gomock.Any(), 1, 10).
			Return(transactions, int64(12), nil)

		handler := NewListTransactionsHandler(svc, authedTokener(ctrl, "glenneligio"))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp TransactionPageResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Transactions, 2)
		assert.EqualValues(t, 12, resp.TotalTransactions)
		assert.EqualValues(t, 2, resp.TotalPages)
		assert.Equal(t, 1, resp.PageNumber)
		assert.Equal(t, 10, resp.PageSize)
	})

	t.Run("type and date filters forwarded", func(t *testing.T) {
		after := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
		before := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)

		svc := NewMockTransactionLister(ctrl)
		svc.EXPECT().
			ListByCreator(gomock.Any(), "glenneligio",
				[]models.TransactionType{models.TypeCcToGold, models.TypeItemToGold},
				after, before, 2, 5).
			Return(nil, int64(0), nil)

		handler := NewListTransactionsHandler(svc, authedTokener(ctrl, "glenneligio"))
		target := "/api/v1/transactions?type=CC2GOLD&type=ITEM2GOLD" +
			"&afterDate=2023-03-01T00:00:00Z&beforeDate=2023-04-01T00:00:00Z" +
			"&pageNumber=2&pageSize=5"
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		svc := NewMockTransactionLister(ctrl)

		handler := NewListTransactionsHandler(svc, authedTokener(ctrl, "glenneligio"))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?type=GOLD2USD", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad date bound", func(t *testing.T) {
		svc := NewMockTransactionLister(ctrl)

		handler := NewListTransactionsHandler(svc, authedTokener(ctrl, "glenneligio"))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?afterDate=yesterday", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthorized", func(t *testing.T) {
		svc := NewMockTransactionLister(ctrl)
		tokener := NewMockTransactionTokener(ctrl)
		tokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).
			Return("", assert.AnError)

		handler := NewListTransactionsHandler(svc, tokener)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
