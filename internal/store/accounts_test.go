package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsCreateAndAuthenticate(t *testing.T) {
	clock := &fakeClock{current: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	s := openTestStore(t, WithClock(clock.Now), WithIDGenerator(sequentialIDs("acc")))
	ctx := context.Background()

	created, err := s.Accounts.Create(ctx, "alice", " alice@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", created.ID)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.NotContains(t, created.PasswordDigest, "secret1")

	got, err := s.Accounts.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestAccountsStoreDigestOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Accounts.Create(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	var digest string
	require.NoError(t, s.db.QueryRow(`SELECT password_digest FROM accounts WHERE username = ?`, "alice").Scan(&digest))
	assert.NotEqual(t, "secret1", digest)
	assert.Contains(t, digest, "$argon2id$")
}

func TestAccountsRejectDuplicateUsername(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Accounts.Create(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.Accounts.Create(ctx, "alice", "other@example.com", "another1")
	require.ErrorIs(t, err, ErrUsernameTaken)

	// The original password still works.
	_, err = s.Accounts.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
}

func TestAccountsInvalidCredentials(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Accounts.Create(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.Accounts.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Accounts.Authenticate(ctx, "bob", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Accounts.Authenticate(ctx, "Alice", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db, WithPasswordParams(fastParams), WithIDGenerator(sequentialIDs("id"))), mock
}

func TestAccountsCreateDBError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+accounts`).
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.Accounts.Create(context.Background(), "alice", "alice@example.com", "secret1")
	require.ErrorIs(t, err, ErrStore)
	assert.Regexp(t, regexp.MustCompile(`insert account: disk I/O error`), err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsAuthenticateDBError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*username.*FROM\s+accounts\s+WHERE\s+username\s*=\s*\?`).
		WithArgs("alice").
		WillReturnError(errors.New("database is locked"))

	_, err := s.Accounts.Authenticate(context.Background(), "alice", "secret1")
	require.ErrorIs(t, err, ErrStore)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsAuthenticateCorruptDigest(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_digest", "created_at"}).
		AddRow("acc-1", "alice", "alice@example.com", "not-a-digest", int64(0))
	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+accounts`).WithArgs("alice").WillReturnRows(rows)

	_, err := s.Accounts.Authenticate(context.Background(), "alice", "secret1")
	require.ErrorIs(t, err, ErrStore)
}
