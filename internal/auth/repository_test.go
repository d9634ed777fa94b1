package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "password", "created_at"}

func setupMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPostgresRepository(mock), mock
}

func TestPostgresRepository_CreateUser(t *testing.T) {
	repo, mock := setupMockRepo(t)
	defer mock.Close()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("alice", "a@x.com", "hash").
			WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow("u1", "alice", "a@x.com", "hash", now))

		u, err := repo.CreateUser(context.Background(), "alice", "a@x.com", "hash")
		require.NoError(t, err)
		assert.Equal(t, User{ID: "u1", Username: "alice", Email: "a@x.com", PasswordHash: "hash", CreatedAt: now}, u)
	})

	t.Run("UniqueViolation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("alice", "a@x.com", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.CreateUser(context.Background(), "alice", "a@x.com", "hash")
		assert.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("OtherError", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("alice", "a@x.com", "hash").
			WillReturnError(errors.New("conn closed"))

		_, err := repo.CreateUser(context.Background(), "alice", "a@x.com", "hash")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateUser)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Find(t *testing.T) {
	repo, mock := setupMockRepo(t)
	defer mock.Close()
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM users WHERE email = \\$1").
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow("u1", "alice", "a@x.com", "hash", now))

	u, err := repo.FindUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	mock.ExpectQuery("SELECT .* FROM users WHERE id::text = \\$1").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS pgcrypto").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, AutoMigrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
