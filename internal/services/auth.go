package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
)

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrUserDoesNotExist   = errors.New("username does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AccountReader defines read-only operations for accounts.
type AccountReader interface {
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.Account, error)
}

// AccountWriter defines write operations for accounts.
type AccountWriter interface {
	Save(ctx context.Context, account *models.Account) error
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID, username string) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	reader AccountReader
	writer AccountWriter
	jwt    JWTGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader AccountReader, writer AccountWriter, jwt JWTGenerator) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
	}
}

// Register registers a new account.
func (svc *AuthService) Register(ctx context.Context, username, password, fullName, email string) error {
	account, err := svc.reader.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		logger.Log.Errorw("failed to check account exists", "err", err)
		return err
	}
	if account != nil {
		logger.Log.Errorw("account already exists", "username", username, "email", email)
		return ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	newAccount := &models.Account{
		AccountID:      uuid.New(),
		Username:       username,
		FullName:       fullName,
		Email:          email,
		PasswordHash:   string(hashedPassword),
		AccountType:    models.AccountTypeUser,
		DateRegistered: time.Now(),
	}
	if err := svc.writer.Save(ctx, newAccount); err != nil {
		logger.Log.Errorw("failed to save account", "err", err)
		return err
	}

	return nil
}

// Login authenticates an account and returns a JWT token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	account, err := svc.reader.GetByUsernameOrEmail(ctx, username, "")
	if err != nil {
		logger.Log.Errorw("failed to get account", "err", err)
		return "", err
	}
	if account == nil {
		logger.Log.Errorw("account does not exist", "username", username)
		return "", ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, account.AccountID, account.Username)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}
