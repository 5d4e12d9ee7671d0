package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spigell/resume-matcher/internal/password"
	"github.com/spigell/resume-matcher/internal/store/migrations"
)

const driverName = "sqlite"

// DBTX is the subset of *sql.DB and *sql.Tx used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle and exposes the account and history repositories.
type Store struct {
	db       *sql.DB
	Accounts *Accounts
	History  *History
}

type options struct {
	now    func() time.Time
	newID  func() string
	params password.Params
	logger *zap.Logger
}

type Option func(*options)

// WithClock overrides the time source used for created_at values.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how record and account identifiers are generated.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithPasswordParams overrides the password hashing cost.
func WithPasswordParams(p password.Params) Option {
	return func(o *options) { o.params = p }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// DSN builds a modernc sqlite data source name with foreign keys enforced.
func DSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open opens or creates the database at path and applies pending migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrStore)
	}

	db, err := sql.Open(driverName, DSN(path))
	if err != nil {
		return nil, storeFailure("open database", err)
	}
	// A single connection serialises writers; sqlite allows only one anyway.
	db.SetMaxOpenConns(1)

	s := New(db, opts...)
	if err := Migrate(ctx, db, s.Accounts.logger); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// New wraps an already opened database without running migrations.
func New(db *sql.DB, opts ...Option) *Store {
	o := options{
		now:    time.Now,
		newID:  uuid.NewString,
		params: password.DefaultParams,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		db:       db,
		Accounts: &Accounts{db: db, now: o.now, newID: o.newID, params: o.params, logger: o.logger},
		History:  &History{db: db, now: o.now, newID: o.newID, logger: o.logger},
	}
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{logger.Sugar()})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return storeFailure("set migration dialect", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return storeFailure("apply migrations", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// gooseLogger routes migration output to the debug log.
type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.Debugf(strings.TrimSpace(format), v...)
}
