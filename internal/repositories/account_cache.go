package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
)

// AccountCacheRepository provides cached account lookups using Redis
type AccountCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached accounts
}

// NewAccountCacheRepository creates a new repository instance with optional TTL
func NewAccountCacheRepository(client *redis.Client, expiration time.Duration) *AccountCacheRepository {
	return &AccountCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// GetByUsername fetches a cached account by username
func (r *AccountCacheRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	key := fmt.Sprintf("account:%s", username)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", val,
			"error", err,
		)
		if err == redis.Nil {
			return nil, fmt.Errorf("account not found in cache for %s", username)
		}
		return nil, err
	}

	var account models.Account
	if err := json.Unmarshal([]byte(val), &account); err != nil {
		logger.Log.Infow(
			"key", key,
			"value", val,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", account.AccountID,
		"error", nil,
	)

	return &account, nil
}

// Set caches an account in Redis with expiration
func (r *AccountCacheRepository) Set(ctx context.Context, account *models.Account) error {
	key := fmt.Sprintf("account:%s", account.Username)

	val, err := json.Marshal(account)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, key, val, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}
