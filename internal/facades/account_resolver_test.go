package facades

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlennEligio/dn-tx/internal/models"
	"github.com/GlennEligio/dn-tx/internal/repositories"
)

func newTestCache(t *testing.T) *repositories.AccountCacheRepository {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return repositories.NewAccountCacheRepository(client, time.Minute)
}

func TestAccountResolverFacade_Resolve(t *testing.T) {
	ctx := context.Background()

	account := &models.Account{
		AccountID:   uuid.New(),
		Username:    "glenneligio",
		FullName:    "Glenn Eligio",
		Email:       "glenn@example.com",
		AccountType: models.AccountTypeUser,
	}

	t.Run("miss reads storage and populates cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		reader := NewMockAccountReader(ctrl)
		reader.EXPECT().GetByUsername(gomock.Any(), "glenneligio").Return(account, nil).Times(1)

		facade := NewAccountResolverFacade(reader, newTestCache(t))

		got, err := facade.Resolve(ctx, "glenneligio")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, account.AccountID, got.AccountID)

		// second resolve is served from the cache, reader not called again
		cached, err := facade.Resolve(ctx, "glenneligio")
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, account.Username, cached.Username)
	})

	t.Run("unknown username yields nil without caching", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		reader := NewMockAccountReader(ctrl)
		reader.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil).Times(2)

		facade := NewAccountResolverFacade(reader, newTestCache(t))

		got, err := facade.Resolve(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)

		// nothing cached, storage consulted again
		got, err = facade.Resolve(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		reader := NewMockAccountReader(ctrl)
		reader.EXPECT().GetByUsername(gomock.Any(), "glenneligio").Return(nil, errors.New("db down"))

		facade := NewAccountResolverFacade(reader, newTestCache(t))

		got, err := facade.Resolve(ctx, "glenneligio")
		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("cache failure degrades to storage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		reader := NewMockAccountReader(ctrl)
		reader.EXPECT().GetByUsername(gomock.Any(), "glenneligio").Return(account, nil)

		cache := NewMockAccountCache(ctrl)
		cache.EXPECT().GetByUsername(gomock.Any(), "glenneligio").Return(nil, errors.New("redis down"))
		cache.EXPECT().Set(gomock.Any(), account).Return(errors.New("redis down"))

		facade := NewAccountResolverFacade(reader, cache)

		got, err := facade.Resolve(ctx, "glenneligio")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, account.Username, got.Username)
	})

	t.Run("nil cache reads storage directly", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		reader := NewMockAccountReader(ctrl)
		reader.EXPECT().GetByUsername(gomock.Any(), "glenneligio").Return(account, nil)

		facade := NewAccountResolverFacade(reader, nil)

		got, err := facade.Resolve(ctx, "glenneligio")
		require.NoError(t, err)
		require.NotNil(t, got)
	})
}

func TestAccountCacheRepository(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	account := &models.Account{
		AccountID:    uuid.New(),
		Username:     "glenneligio",
		FullName:     "Glenn Eligio",
		Email:        "glenn@example.com",
		PasswordHash: "$2a$10$hash",
		AccountType:  models.AccountTypeUser,
	}

	_, err := cache.GetByUsername(ctx, "glenneligio")
	assert.Error(t, err)

	require.NoError(t, cache.Set(ctx, account))

	got, err := cache.GetByUsername(ctx, "glenneligio")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, account.AccountID, got.AccountID)
	// password hashes never enter the cache
	assert.Empty(t, got.PasswordHash)
}
