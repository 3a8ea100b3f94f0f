package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlennEligio/dn-tx/internal/jwt"
	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/validation"
)

func authedTokener(ctrl *gomock.Controller, username string) *MockTransactionTokener {
	tokener := NewMockTransactionTokener(ctrl)
	tokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("token123", nil).AnyTimes()
	tokener.EXPECT().GetClaims(gomock.Any(), "token123").
		Return(&jwt.Claims{UserID: uuid.New(), Username: username}, nil).AnyTimes()
	return tokener
}

func TestCreateTransactionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	validBody := map[string]interface{}{
		"username": "buyer42",
		"type":     "GOLD2PHP",
		"transactionItems": []map[string]interface{}{
			{"name": "Juan", "phpPaid": 500, "goldPerPhp": 30, "methodOfPayment": "GCash"},
		},
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := NewMockTransactionCreator(ctrl)
		mockSvc.EXPECT().
			Create(gomock.Any(), "glenneligio", gomock.Any()).
			DoAndReturn(func(_ interface{}, _ string, tx *models.Transaction) (*models.Transaction, error) {
				assert.Equal(t, "buyer42", tx.Username)
				assert.Equal(t, models.TypeGoldToPhp, tx.Type)
				require.Len(t, tx.Items, 1)

				tx.ID = "tx-new"
				tx.Creator = models.Account{Username: "glenneligio"}
				return tx, nil
			})

		handler := NewCreateTransactionHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		b, _ := json.Marshal(validBody)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBuffer(b))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp TransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "tx-new", resp.ID)
		assert.Equal(t, "glenneligio", resp.CreatorUsername)
		assert.Equal(t, "GOLD2PHP", resp.Type)
	})

	t.Run("unauthorized", func(t *testing.T) {
		mockSvc := NewMockTransactionCreator(ctrl)
		tokener := NewMockTransactionTokener(ctrl)
		tokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("", assert.AnError)

		handler := NewCreateTransactionHandler(mockSvc, tokener)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString("{}"))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		mockSvc := NewMockTransactionCreator(ctrl)
		handler := NewCreateTransactionHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		body := map[string]interface{}{
			"username":         "buyer42",
			"type":             "GOLD2USD",
			"transactionItems": []map[string]interface{}{{"name": "Juan"}},
		}
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBuffer(b))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown type with no items", func(t *testing.T) {
		// the type gate itself must reject, even when there is no item
		// for the conversion to trip on
		mockSvc := NewMockTransactionCreator(ctrl)
		handler := NewCreateTransactionHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		body := map[string]interface{}{
			"username":         "buyer42",
			"type":             "GOLD2USD",
			"transactionItems": []map[string]interface{}{},
		}
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBuffer(b))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation violations are reported", func(t *testing.T) {
		mockSvc := NewMockTransactionCreator(ctrl)
		mockSvc.EXPECT().
			Create(gomock.Any(), "glenneligio", gomock.Any()).
			Return(nil, validation.Violations{
				{Field: "transactionItems[0].phpPaid", Message: "must be positive"},
				{Field: "username", Message: "must not be blank"},
			})

		handler := NewCreateTransactionHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		b, _ := json.Marshal(validBody)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBuffer(b))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp CreateTransactionErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Violations, 2)
	})
}
