package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DBTX is the query surface repositories depend on, satisfied by both
// *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Config holds database connection settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnectAttempts int
}

// Open connects to Postgres and waits for it to become reachable. The
// startup ping retries with exponential backoff so the service survives
// a database that is still coming up; request-path queries never retry.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("storage: empty dsn")
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 5
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	notify := func(err error, next time.Duration) {
		if logger != nil {
			logger.Printf("storage: db ping failed: %v (retrying in %s)", err, next)
		}
	}

	if _, err := backoff.Retry(ctx, func() (bool, error) {
		if err := db.PingContext(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(attempts)), backoff.WithNotify(notify)); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping database: %w", err)
	}
	return db, nil
}
