package postgres

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/courselane/courselane/internal/config"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
)

type txKey struct{}

// IClient is the database access boundary used by repositories.
// Writer and Reader return the ambient transaction when one is open on
// the context, so repository code is transaction-agnostic.
type IClient interface {
	Writer(ctx context.Context) *gorm.DB
	Reader(ctx context.Context) *gorm.DB
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type client struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewClient opens the postgres connection pool described by cfg
func NewClient(cfg *config.Configuration, log *logger.Logger) (IClient, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		// Surfaces unique-constraint conflicts as gorm.ErrDuplicatedKey,
		// which the grant ledger relies on for purchase idempotency.
		TranslateError: true,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to access the underlying sql connection pool").
			Mark(ierr.ErrDatabase)
	}
	sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	return &client{db: db, log: log}, nil
}

// NewClientWithDB wraps an already-open gorm handle; used by migrations
// and tests that manage the connection themselves.
func NewClientWithDB(db *gorm.DB, log *logger.Logger) IClient {
	return &client{db: db, log: log}
}

func (c *client) Writer(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return c.db.WithContext(ctx)
}

func (c *client) Reader(ctx context.Context) *gorm.DB {
	return c.Writer(ctx)
}

// WithTx runs fn inside a transaction. Nested calls reuse the ambient
// transaction rather than opening a second one.
func (c *client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
