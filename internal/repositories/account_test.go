package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/GlennEligio/dn-tx/internal/models"
)

func setupPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)

	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		account_id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		account_type TEXT NOT NULL DEFAULT 'USER',
		date_registered TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		creator_id UUID NOT NULL REFERENCES accounts (account_id),
		date_finished TIMESTAMPTZ NOT NULL,
		reversed BOOLEAN NOT NULL DEFAULT FALSE,
		type TEXT NOT NULL,
		items JSONB NOT NULL DEFAULT '[]',
		file_attachments JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		container.Terminate(context.Background())
	}
	return db, cleanup
}

func newTestAccount(username string) *models.Account {
	return &models.Account{
		AccountID:      uuid.New(),
		Username:       username,
		FullName:       "Glenn Eligio",
		Email:          username + "@example.com",
		PasswordHash:   "$2a$10$hash",
		AccountType:    models.AccountTypeUser,
		DateRegistered: time.Now().UTC().Truncate(time.Second),
	}
}

func TestAccountRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	readRepo := NewAccountReadRepository(db)
	writeRepo := NewAccountWriteRepository(db)

	account := newTestAccount("glenneligio")
	require.NoError(t, writeRepo.Save(ctx, account))

	t.Run("get by username", func(t *testing.T) {
		got, err := readRepo.GetByUsername(ctx, "glenneligio")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, account.AccountID, got.AccountID)
		assert.Equal(t, account.Email, got.Email)
	})

	t.Run("unknown username yields nil", func(t *testing.T) {
		got, err := readRepo.GetByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get by username or email", func(t *testing.T) {
		byEmail, err := readRepo.GetByUsernameOrEmail(ctx, "someone", account.Email)
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, account.AccountID, byEmail.AccountID)

		none, err := readRepo.GetByUsernameOrEmail(ctx, "ghost", "ghost@example.com")
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		dup := newTestAccount("glenneligio")
		dup.Email = "other@example.com"
		assert.Error(t, writeRepo.Save(ctx, dup))
	})
}
