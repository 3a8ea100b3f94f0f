package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/services"
)

func TestSearchTransactionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	found := &models.Transaction{
		ID:       "tx-1",
		Username: "buyer42",
		Creator:  models.Account{Username: "glenneligio"},
		Type:     models.TypeItemToGold,
		Items: []models.TransactionItem{
			models.ItemToGoldItem{ItemName: "Sword", ItemQuantity: 3, ItemPriceInGold: 12.5},
		},
	}

	t.Run("success", func(t *testing.T) {
		svc := NewMockTransactionSearcher(ctrl)
		svc.EXPECT().GetByUsernameAndID(gomock.Any(), "buyer42", "tx-1").Return(found, nil)

		handler := NewSearchTransactionHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/search?username=buyer42&tx_id=tx-1", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp TransactionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "tx-1", resp.ID)
		assert.Equal(t, "glenneligio", resp.CreatorUsername)
		require.Len(t, resp.TransactionItems, 1)
	})

	t.Run("missing query parameters", func(t *testing.T) {
		svc := NewMockTransactionSearcher(ctrl)

		handler := NewSearchTransactionHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/search?username=buyer42", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewMockTransactionSearcher(ctrl)
		svc.EXPECT().GetByUsernameAndID(gomock.Any(), "buyer42", "missing").
			Return(nil, services.ErrTransactionNotFound)

		handler := NewSearchTransactionHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/search?username=buyer42&tx_id=missing", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("service failure", func(t *testing.T) {
		svc := NewMockTransactionSearcher(ctrl)
		svc.EXPECT().GetByUsernameAndID(gomock.Any(), "buyer42", "tx-1").
			Return(nil, errors.New("db down"))

		handler := NewSearchTransactionHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/search?username=buyer42&tx_id=tx-1", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
