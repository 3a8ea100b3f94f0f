package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GlennEligio/dn-tx/internal/models"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	tests := []struct {
		name      string
		mockSetup func(reader *MockAccountReader, writer *MockAccountWriter)
		wantErr   error
	}{
		{
			name: "success",
			mockSetup: func(reader *MockAccountReader, writer *MockAccountWriter) {
				reader.EXPECT().
					GetByUsernameOrEmail(ctx, "john", "john@example.com").
					Return(nil, nil)
				writer.EXPECT().
					Save(ctx, gomock.Any()).
					DoAndReturn(func(_ context.Context, account *models.Account) error {
						assert.Equal(t, "john", account.Username)
						assert.Equal(t, "John Doe", account.FullName)
						assert.Equal(t, "john@example.com", account.Email)
						assert.Equal(t, models.AccountTypeUser, account.AccountType)
						assert.NotEqual(t, uuid.Nil, account.AccountID)
						assert.False(t, account.DateRegistered.IsZero())
						// the password is stored hashed, never in the clear
						assert.NotEqual(t, "secret", account.PasswordHash)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("secret")))
						return nil
					})
			},
		},
		{
			name: "already exists",
			mockSetup: func(reader *MockAccountReader, writer *MockAccountWriter) {
				reader.EXPECT().
					GetByUsernameOrEmail(ctx, "john", "john@example.com").
					Return(&models.Account{Username: "john"}, nil)
			},
			wantErr: ErrUserAlreadyExists,
		},
		{
			name: "reader failure",
			mockSetup: func(reader *MockAccountReader, writer *MockAccountWriter) {
				reader.EXPECT().
					GetByUsernameOrEmail(ctx, "john", "john@example.com").
					Return(nil, errors.New("database failure"))
			},
			wantErr: errors.New("database failure"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewMockAccountReader(ctrl)
			writer := NewMockAccountWriter(ctrl)
			jwtGen := NewMockJWTGenerator(ctrl)
			tt.mockSetup(reader, writer)

			svc := NewAuthService(reader, writer, jwtGen)
			err := svc.Register(ctx, "john", "secret", "John Doe", "john@example.com")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	account := &models.Account{AccountID: accountID, Username: "john", PasswordHash: string(hash)}

	t.Run("success", func(t *testing.T) {
		reader := NewMockAccountReader(ctrl)
		writer := NewMockAccountWriter(ctrl)
		jwtGen := NewMockJWTGenerator(ctrl)

		reader.EXPECT().GetByUsernameOrEmail(ctx, "john", "").Return(account, nil)
		jwtGen.EXPECT().Generate(ctx, accountID, "john").Return("token123", nil)

		svc := NewAuthService(reader, writer, jwtGen)
		token, err := svc.Login(ctx, "john", "secret")
		require.NoError(t, err)
		assert.Equal(t, "token123", token)
	})

	t.Run("unknown account", func(t *testing.T) {
		reader := NewMockAccountReader(ctrl)
		writer := NewMockAccountWriter(ctrl)
		jwtGen := NewMockJWTGenerator(ctrl)

		reader.EXPECT().GetByUsernameOrEmail(ctx, "ghost", "").Return(nil, nil)

		svc := NewAuthService(reader, writer, jwtGen)
		_, err := svc.Login(ctx, "ghost", "secret")
		assert.ErrorIs(t, err, ErrUserDoesNotExist)
	})

	t.Run("wrong password", func(t *testing.T) {
		reader := NewMockAccountReader(ctrl)
		writer := NewMockAccountWriter(ctrl)
		jwtGen := NewMockJWTGenerator(ctrl)

		reader.EXPECT().GetByUsernameOrEmail(ctx, "john", "").Return(account, nil)

		svc := NewAuthService(reader, writer, jwtGen)
		_, err := svc.Login(ctx, "john", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
