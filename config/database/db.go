package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"creatorhub/config"
	"creatorhub/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
)

const (
	pingAttempts = 5
	pingInterval = 2 * time.Second
)

// Connect opens the pool and pings it until the database answers, retrying
// a few times for DNS or network blips.
func Connect(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := ping(ctx, db, backoff.NewConstantBackOff(pingInterval)); err != nil {
		db.Close()
		return nil, err
	}
	logger.Sugar.Info("Successfully connected to the database")
	return db, nil
}

func ping(ctx context.Context, db *sql.DB, b backoff.BackOff) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(b, pingAttempts-1), ctx)
	err := backoff.RetryNotify(func() error {
		return db.PingContext(ctx)
	}, policy, func(err error, d time.Duration) {
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", d, err)
	})
	if err != nil {
		return fmt.Errorf("could not connect to database after %d attempts: %w", pingAttempts, err)
	}
	return nil
}
