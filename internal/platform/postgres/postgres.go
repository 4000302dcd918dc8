// Package postgres opens the shared sql.DB pool used by the persistent stores.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the pgx driver under database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"veilcredit/internal/platform/config"
)

// Open connects, pings, and returns a pool with conservative limits.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}
