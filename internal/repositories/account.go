package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/middlewares"
	"github.com/GlennEligio/dn-tx/internal/models"
)

type AccountReadRepository struct {
	db *sqlx.DB
}

func NewAccountReadRepository(db *sqlx.DB) *AccountReadRepository {
	return &AccountReadRepository{db: db}
}

// GetByUsername returns the account with the given username, or nil when no
// such account exists.
func (r *AccountReadRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	const query = `
		SELECT account_id, username, full_name, email, password_hash,
		       account_type, date_registered, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`

	var account models.Account
	err := sqlx.GetContext(ctx, r.queryer(ctx), &account, query, username)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// GetByUsernameOrEmail returns the first account matching either value, or
// nil when none matches. Used for registration uniqueness checks.
func (r *AccountReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.Account, error) {
	const query = `
		SELECT account_id, username, full_name, email, password_hash,
		       account_type, date_registered, created_at, updated_at
		FROM accounts
		WHERE username = $1 OR email = $2
		LIMIT 1
	`

	var account models.Account
	err := sqlx.GetContext(ctx, r.queryer(ctx), &account, query, username, email)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *AccountReadRepository) queryer(ctx context.Context) sqlx.QueryerContext {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

type AccountWriteRepository struct {
	db *sqlx.DB
}

func NewAccountWriteRepository(db *sqlx.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

// Save inserts a new account.
func (r *AccountWriteRepository) Save(ctx context.Context, account *models.Account) error {
	const query = `
		INSERT INTO accounts (account_id, username, full_name, email, password_hash, account_type, date_registered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	args := []any{
		account.AccountID, account.Username, account.FullName, account.Email,
		account.PasswordHash, account.AccountType, account.DateRegistered,
	}

	res, err := r.execer(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{account.Username, account.Email},
		"result", rowsAffected,
		"error", err,
	)

	return err
}

func (r *AccountWriteRepository) execer(ctx context.Context) sqlx.ExecerContext {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}
