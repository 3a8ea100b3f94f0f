package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlennEligio/dn-tx/internal/excel"
	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/services"
)

func workbookUploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func encodedBatch(t *testing.T, creatorUsername string) []byte {
	t.Helper()

	buf, err := excel.Encode([]models.Transaction{{
		ID:           "tx-up-1",
		Username:     "buyer42",
		Creator:      models.Account{Username: creatorUsername},
		DateFinished: time.Date(2023, 5, 14, 9, 30, 0, 0, time.UTC),
		Type:         models.TypeGoldToPhp,
		Items: []models.TransactionItem{
			models.GoldToPhpItem{Name: "Juan", PhpPaid: 500, GoldPerPhp: 30, MethodOfPayment: "GCash"},
		},
	}})
	require.NoError(t, err)
	return buf.Bytes()
}

func TestUploadTransactionsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("success", func(t *testing.T) {
		mockSvc := NewMockTransactionReconciler(ctrl)
		mockSvc.EXPECT().
			Reconcile(gomock.Any(), "glenneligio", gomock.Any(), true).
			DoAndReturn(func(_ interface{}, _ string, batch []models.Transaction, _ bool) (int, error) {
				require.Len(t, batch, 1)
				assert.Equal(t, "tx-up-1", batch[0].ID)
				return 1, nil
			})

		handler := NewUploadTransactionsHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		req := workbookUploadRequest(t,
			"/api/v1/transactions/upload?overwrite=true",
			"batch.xlsx", encodedBatch(t, "glenneligio"))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp UploadTransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.TransactionsAffected)
	})

	t.Run("workbook of another account is rejected before any write", func(t *testing.T) {
		mockSvc := NewMockTransactionReconciler(ctrl)
		// Reconcile must never run

		handler := NewUploadTransactionsHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		req := workbookUploadRequest(t,
			"/api/v1/transactions/upload",
			"batch.xlsx", encodedBatch(t, "someone_else"))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("blank creator cell is rejected before any write", func(t *testing.T) {
		mockSvc := NewMockTransactionReconciler(ctrl)
		// Reconcile must never run

		handler := NewUploadTransactionsHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		req := workbookUploadRequest(t,
			"/api/v1/transactions/upload",
			"batch.xlsx", encodedBatch(t, ""))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("stored ownership conflicts map to 403", func(t *testing.T) {
		mockSvc := NewMockTransactionReconciler(ctrl)
		mockSvc.EXPECT().
			Reconcile(gomock.Any(), "glenneligio", gomock.Any(), true).
			Return(0, services.ErrForbidden)

		handler := NewUploadTransactionsHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		req := workbookUploadRequest(t,
			"/api/v1/transactions/upload?overwrite=true",
			"batch.xlsx", encodedBatch(t, "glenneligio"))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-xlsx filename is rejected", func(t *testing.T) {
		mockSvc := NewMockTransactionReconciler(ctrl)

		handler := NewUploadTransactionsHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		req := workbookUploadRequest(t,
			"/api/v1/transactions/upload",
			"batch.csv", []byte("a,b,c"))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed workbook is rejected", func(t *testing.T) {
		mockSvc := NewMockTransactionReconciler(ctrl)

		handler := NewUploadTransactionsHandler(mockSvc, authedTokener(ctrl, "glenneligio"))

		req := workbookUploadRequest(t,
			"/api/v1/transactions/upload",
			"batch.xlsx", []byte("not a workbook"))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
