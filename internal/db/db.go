package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"hoctap-backend/internal/logger"
)

const (
	pingAttempts = 10
	pingDelay    = 3 * time.Second
)

// Open connects to Postgres through the pgx stdlib driver and waits for the
// server to answer, retrying while a freshly started database warms up.
func Open(ctx context.Context, dsn string, log *logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	var pingErr error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr = db.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			return db, nil
		}
		log.Warn("database not ready", "attempt", attempt, "max", pingAttempts, "error", pingErr)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(pingDelay):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", pingAttempts, pingErr)
}
