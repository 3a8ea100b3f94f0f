package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/middlewares"
	"github.com/GlennEligio/dn-tx/internal/models"
)

const transactionSelect = `
	SELECT t.transaction_id, t.username, t.creator_id, a.username AS creator_username,
	       t.date_finished, t.reversed, t.type, t.items, t.file_attachments,
	       t.created_at, t.updated_at
	FROM transactions t
	JOIN accounts a ON a.account_id = t.creator_id
`

type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// GetByID returns the transaction with the given id, or nil when absent.
func (r *TransactionReadRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := transactionSelect + ` WHERE t.transaction_id = $1`

	var row models.TransactionDB
	err := sqlx.GetContext(ctx, r.queryer(ctx), &row, query, id)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return row.ToTransaction()
}

// GetByUsernameAndID returns the transaction matching both the actor
// username and the id, or nil when absent.
func (r *TransactionReadRepository) GetByUsernameAndID(ctx context.Context, username, id string) (*models.Transaction, error) {
	query := transactionSelect + ` WHERE t.username = $1 AND t.transaction_id = $2`

	var row models.TransactionDB
	err := sqlx.GetContext(ctx, r.queryer(ctx), &row, query, username, id)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, id},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return row.ToTransaction()
}

// ListByCreator returns one page of the creator's transactions filtered by
// type and completion date, newest first, along with the unpaged total.
func (r *TransactionReadRepository) ListByCreator(
	ctx context.Context,
	creatorID uuid.UUID,
	types []models.TransactionType,
	after, before time.Time,
	pageNumber, pageSize int,
) ([]models.Transaction, int64, error) {
	typeCodes := make([]string, 0, len(types))
	for _, t := range types {
		typeCodes = append(typeCodes, string(t))
	}

	countQuery, countArgs, err := sqlx.In(`
		SELECT COUNT(*)
		FROM transactions t
		WHERE t.creator_id = ? AND t.type IN (?) AND t.date_finished BETWEEN ? AND ?
	`, creatorID, typeCodes, after, before)
	if err != nil {
		return nil, 0, err
	}
	countQuery = sqlx.Rebind(sqlx.DOLLAR, countQuery)

	var total int64
	if err := sqlx.GetContext(ctx, r.queryer(ctx), &total, countQuery, countArgs...); err != nil {
		logger.Log.Errorw("failed to count transactions", "creator_id", creatorID, "error", err)
		return nil, 0, err
	}

	query, args, err := sqlx.In(transactionSelect+`
		WHERE t.creator_id = ? AND t.type IN (?) AND t.date_finished BETWEEN ? AND ?
		ORDER BY t.date_finished DESC
		LIMIT ? OFFSET ?
	`, creatorID, typeCodes, after, before, pageSize, (pageNumber-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var rows []models.TransactionDB
	err = sqlx.SelectContext(ctx, r.queryer(ctx), &rows, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", len(rows),
		"error", err,
	)

	if err != nil {
		return nil, 0, err
	}

	transactions, err := toTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// ListByCreatorAndDateRange returns every transaction of the creator whose
// completion date falls in the range, newest first.
func (r *TransactionReadRepository) ListByCreatorAndDateRange(
	ctx context.Context,
	creatorID uuid.UUID,
	after, before time.Time,
) ([]models.Transaction, error) {
	query := transactionSelect + `
		WHERE t.creator_id = $1 AND t.date_finished BETWEEN $2 AND $3
		ORDER BY t.date_finished DESC
	`

	var rows []models.TransactionDB
	err := sqlx.SelectContext(ctx, r.queryer(ctx), &rows, query, creatorID, after, before)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{creatorID, after, before},
		"result", len(rows),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return toTransactions(rows)
}

func (r *TransactionReadRepository) queryer(ctx context.Context) sqlx.QueryerContext {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

type TransactionWriteRepository struct {
	db *sqlx.DB
}

func NewTransactionWriteRepository(db *sqlx.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

// Save upserts the transaction as a single statement, so a row is either
// fully written or not at all. A transaction without an id gets one here;
// the id is stable afterwards.
func (r *TransactionWriteRepository) Save(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	items, err := models.MarshalItems(tx.Items)
	if err != nil {
		return nil, err
	}
	attachments, err := json.Marshal(tx.FileAttachments)
	if err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO transactions (transaction_id, username, creator_id, date_finished, reversed, type, items, file_attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (transaction_id) DO UPDATE
		SET username = EXCLUDED.username,
		    date_finished = EXCLUDED.date_finished,
		    reversed = EXCLUDED.reversed,
		    items = EXCLUDED.items,
		    file_attachments = EXCLUDED.file_attachments,
		    updated_at = NOW()
	`
	args := []any{
		tx.ID, tx.Username, tx.Creator.AccountID, tx.DateFinished,
		tx.Reversed, string(tx.Type), items, attachments,
	}

	res, err := r.execer(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{tx.ID, tx.Username, tx.Creator.AccountID, tx.Type},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Delete removes the transaction with the given id.
func (r *TransactionWriteRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM transactions WHERE transaction_id = $1`

	res, err := r.execer(ctx).ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", query,
		"args", []any{id},
		"result", rowsAffected,
		"error", err,
	)

	return err
}

func (r *TransactionWriteRepository) execer(ctx context.Context) sqlx.ExecerContext {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func toTransactions(rows []models.TransactionDB) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].ToTransaction()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, nil
}
