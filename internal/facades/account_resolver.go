package facades

import (
	"context"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
)

// AccountReader fetches accounts from storage.
type AccountReader interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}

// AccountCache caches accounts by username.
type AccountCache interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	Set(ctx context.Context, account *models.Account) error
}

// AccountResolverFacade resolves usernames to accounts, consulting the
// cache before storage. Cache failures degrade to storage reads.
type AccountResolverFacade struct {
	reader AccountReader
	cache  AccountCache
}

// NewAccountResolverFacade creates a new facade over storage and cache.
func NewAccountResolverFacade(reader AccountReader, cache AccountCache) *AccountResolverFacade {
	return &AccountResolverFacade{reader: reader, cache: cache}
}

// Resolve returns the account with the given username, or nil when no
// such account exists.
func (f *AccountResolverFacade) Resolve(ctx context.Context, username string) (*models.Account, error) {
	if f.cache != nil {
		if account, err := f.cache.GetByUsername(ctx, username); err == nil {
			return account, nil
		}
	}

	account, err := f.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to resolve account", "username", username, "error", err)
		return nil, err
	}
	if account == nil {
		return nil, nil
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, account); err != nil {
			logger.Log.Errorw("failed to cache account", "username", username, "error", err)
		}
	}

	return account, nil
}
