package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/GlennEligio/dn-tx/internal/services"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		mockSetup    func(m *MockLoginer)
		expectedCode int
		expectedBody map[string]string
	}{
		{
			name: "success",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "john", "secret").
					Return("token123", nil)
			},
			expectedCode: 200,
			expectedBody: map[string]string{"token": "token123"},
		},
		{
			name: "invalid credentials",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "john", "secret").
					Return("", services.ErrInvalidCredentials)
			},
			expectedCode: 401,
			expectedBody: map[string]string{"error": "Invalid username or password"},
		},
		{
			name: "unknown account",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "john", "secret").
					Return("", services.ErrUserDoesNotExist)
			},
			expectedCode: 401,
			expectedBody: map[string]string{"error": "Invalid username or password"},
		},
		{
			name: "internal server error",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "john", "secret").
					Return("", errors.New("database failure"))
			},
			expectedCode: 500,
			expectedBody: map[string]string{"error": "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockLoginer(ctrl)
			tt.mockSetup(mockSvc)

			handler := NewLoginHandler(mockSvc)

			b, _ := json.Marshal(map[string]string{"username": "john", "password": "secret"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/login", bytes.NewBuffer(b))
			rec := httptest.NewRecorder()

			handler(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)

			var got map[string]string
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.expectedBody, got)
		})
	}
}
