package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
)

var (
	// ErrTransactionNotFound is returned when no transaction matches the requested id.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrAccountNotFound is returned when a referenced creator account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrForbidden is returned when an operation touches a transaction owned by another account.
	ErrForbidden = errors.New("transaction belongs to another account")
)

// AccountResolver resolves usernames to accounts.
type AccountResolver interface {
	Resolve(ctx context.Context, username string) (*models.Account, error)
}

// TransactionReader defines read-only operations for transactions.
type TransactionReader interface {
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	GetByUsernameAndID(ctx context.Context, username, id string) (*models.Transaction, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, types []models.TransactionType, after, before time.Time, pageNumber, pageSize int) ([]models.Transaction, int64, error)
	ListByCreatorAndDateRange(ctx context.Context, creatorID uuid.UUID, after, before time.Time) ([]models.Transaction, error)
}

// TransactionWriter defines write operations for transactions.
type TransactionWriter interface {
	Save(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// TransactionValidator checks a transaction against the domain constraints.
type TransactionValidator interface {
	ValidateTransaction(tx *models.Transaction) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// TransactionService handles transaction CRUD, reconciliation and audit publishing.
type TransactionService struct {
	resolver    AccountResolver
	readRepo    TransactionReader
	writeRepo   TransactionWriter
	validator   TransactionValidator
	kafkaWriter KafkaWriter
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	resolver AccountResolver,
	readRepo TransactionReader,
	writeRepo TransactionWriter,
	validator TransactionValidator,
	kafkaWriter KafkaWriter,
) *TransactionService {
	return &TransactionService{
		resolver:    resolver,
		readRepo:    readRepo,
		writeRepo:   writeRepo,
		validator:   validator,
		kafkaWriter: kafkaWriter,
	}
}

// publishEvent publishes a transaction audit event to Kafka.
func (s *TransactionService) publishEvent(ctx context.Context, action string, tx *models.Transaction) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "transaction_id", tx.ID)
		return
	}

	event := models.TransactionEvent{
		EventID:         uuid.NewString(),
		Action:          action,
		TransactionID:   tx.ID,
		Type:            string(tx.Type),
		CreatorUsername: tx.Creator.Username,
		Timestamp:       time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal event for Kafka", "transaction_id", tx.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(tx.ID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish event to Kafka", "transaction_id", tx.ID, "error", err)
	} else {
		logger.Log.Infow("Event published to Kafka", "transaction_id", tx.ID, "action", action)
	}
}

// Create validates and stores a new transaction owned by creatorUsername.
// A zero DateFinished defaults to the current time.
func (s *TransactionService) Create(ctx context.Context, creatorUsername string, tx *models.Transaction) (*models.Transaction, error) {
	creator, err := s.resolver.Resolve(ctx, creatorUsername)
	if err != nil {
		logger.Log.Errorw("failed to resolve creator", "username", creatorUsername, "error", err)
		return nil, err
	}
	if creator == nil {
		return nil, ErrAccountNotFound
	}

	tx.Creator = *creator
	if tx.DateFinished.IsZero() {
		tx.DateFinished = time.Now()
	}

	if err := s.validator.ValidateTransaction(tx); err != nil {
		return nil, err
	}

	saved, err := s.writeRepo.Save(ctx, tx)
	if err != nil {
		logger.Log.Errorw("failed to save transaction", "error", err)
		return nil, err
	}

	s.publishEvent(ctx, models.EventTransactionCreated, saved)

	return saved, nil
}

// Update overwrites the mutable fields of an existing transaction. The
// creator and the type are fixed at creation and never change.
func (s *TransactionService) Update(ctx context.Context, id string, src *models.Transaction) (*models.Transaction, error) {
	existing, err := s.readRepo.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get transaction", "transaction_id", id, "error", err)
		return nil, err
	}
	if existing == nil {
		return nil, ErrTransactionNotFound
	}

	existing.Update(src)

	if err := s.validator.ValidateTransaction(existing); err != nil {
		return nil, err
	}

	saved, err := s.writeRepo.Save(ctx, existing)
	if err != nil {
		logger.Log.Errorw("failed to save transaction", "transaction_id", id, "error", err)
		return nil, err
	}

	s.publishEvent(ctx, models.EventTransactionUpdated, saved)

	return saved, nil
}

// Delete removes a transaction by id.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, err := s.readRepo.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get transaction", "transaction_id", id, "error", err)
		return err
	}
	if existing == nil {
		return ErrTransactionNotFound
	}

	if err := s.writeRepo.Delete(ctx, id); err != nil {
		logger.Log.Errorw("failed to delete transaction", "transaction_id", id, "error", err)
		return err
	}

	s.publishEvent(ctx, models.EventTransactionDeleted, existing)

	return nil
}

// GetByID returns a single transaction by id.
func (s *TransactionService) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.readRepo.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get transaction", "transaction_id", id, "error", err)
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

// GetByUsernameAndID returns a single transaction matching both the actor
// username and the id.
func (s *TransactionService) GetByUsernameAndID(ctx context.Context, username, id string) (*models.Transaction, error) {
	tx, err := s.readRepo.GetByUsernameAndID(ctx, username, id)
	if err != nil {
		logger.Log.Errorw("failed to get transaction", "username", username, "transaction_id", id, "error", err)
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

// ListByCreator returns one page of the creator's transactions plus the
// unpaged total, newest first.
func (s *TransactionService) ListByCreator(
	ctx context.Context,
	creatorUsername string,
	types []models.TransactionType,
	after, before time.Time,
	pageNumber, pageSize int,
) ([]models.Transaction, int64, error) {
	creator, err := s.resolver.Resolve(ctx, creatorUsername)
	if err != nil {
		return nil, 0, err
	}
	if creator == nil {
		return nil, 0, ErrAccountNotFound
	}

	if len(types) == 0 {
		types = models.TransactionTypes
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	return s.readRepo.ListByCreator(ctx, creator.AccountID, types, after, before, pageNumber, pageSize)
}

// ListForExport returns every transaction of the creator within the date
// range, newest first.
func (s *TransactionService) ListForExport(ctx context.Context, creatorUsername string, after, before time.Time) ([]models.Transaction, error) {
	creator, err := s.resolver.Resolve(ctx, creatorUsername)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrAccountNotFound
	}

	return s.readRepo.ListByCreatorAndDateRange(ctx, creator.AccountID, after, before)
}

// Reconcile merges a batch of transactions into storage on behalf of
// creatorUsername and returns how many rows were written. A transaction
// whose id is unknown is created; a known id is rewritten only when
// overwrite is set. Touching a transaction owned by another account
// aborts the whole batch with ErrForbidden.
func (s *TransactionService) Reconcile(ctx context.Context, creatorUsername string, batch []models.Transaction, overwrite bool) (int, error) {
	affected := 0

	for i := range batch {
		incoming := &batch[i]

		existing, err := s.readRepo.GetByID(ctx, incoming.ID)
		if err != nil {
			logger.Log.Errorw("failed to get transaction", "transaction_id", incoming.ID, "error", err)
			return 0, err
		}

		if existing == nil {
			if _, err := s.Create(ctx, creatorUsername, incoming); err != nil {
				return 0, err
			}
			affected++
			continue
		}

		if !overwrite {
			continue
		}

		if existing.Creator.Username != creatorUsername {
			logger.Log.Errorw("transaction owned by another account",
				"transaction_id", incoming.ID,
				"owner", existing.Creator.Username,
				"requested_by", creatorUsername,
			)
			return 0, ErrForbidden
		}

		if _, err := s.Update(ctx, incoming.ID, incoming); err != nil {
			return 0, err
		}
		affected++
	}

	return affected, nil
}
