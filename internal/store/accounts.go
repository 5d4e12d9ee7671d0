package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/password"
)

// Accounts persists user accounts. Passwords are stored only as argon2id digests.
type Accounts struct {
	db     DBTX
	now    func() time.Time
	newID  func() string
	params password.Params
	logger *zap.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// Create registers a new account. ErrUsernameTaken is returned when the
// username already exists.
func (a *Accounts) Create(ctx context.Context, username, email, plain string) (*Account, error) {
	digest, err := password.HashWith(a.params, plain)
	if err != nil {
		return nil, storeFailure("hash password", err)
	}

	account := &Account{
		ID:             a.newID(),
		Username:       username,
		Email:          strings.TrimSpace(email),
		PasswordDigest: digest,
		CreatedAt:      a.now().UTC(),
	}

	query := `INSERT INTO accounts (id, username, email, password_digest, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err = a.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Email, account.PasswordDigest, account.CreatedAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, storeFailure("insert account", err)
	}

	a.logger.Debug("account created", zap.String("account_id", account.ID))

	return account, nil
}

// Authenticate returns the account when username and password match. Unknown
// usernames and wrong passwords both yield ErrInvalidCredentials.
func (a *Accounts) Authenticate(ctx context.Context, username, plain string) (*Account, error) {
	query := `SELECT id, username, email, password_digest, created_at
		FROM accounts
		WHERE username = ?`

	var (
		account Account
		created int64
	)
	err := a.db.QueryRowContext(ctx, query, username).
		Scan(&account.ID, &account.Username, &account.Email, &account.PasswordDigest, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Spend the same hashing work as a real check.
			_, _ = password.Verify(plain, a.dummy())
			return nil, ErrInvalidCredentials
		}
		return nil, storeFailure("select account", err)
	}

	ok, err := password.Verify(plain, account.PasswordDigest)
	if err != nil {
		return nil, storeFailure("verify password", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	account.CreatedAt = time.Unix(0, created).UTC()

	return &account, nil
}

func (a *Accounts) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyDigest, _ = password.HashWith(a.params, "resume-matcher")
	})
	return a.dummyDigest
}
