package database

import (
	"context"
	"database/sql"
	"fmt"

	"creatorhub/pkg/logger"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          UUID PRIMARY KEY,
		user_id     TEXT NOT NULL,
		title       TEXT NOT NULL,
		content     TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS projects_user_updated_idx ON projects (user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS scheduled_posts (
		id             UUID PRIMARY KEY,
		user_id        TEXT NOT NULL,
		project_id     UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		project_title  TEXT NOT NULL,
		platform       TEXT NOT NULL,
		schedule_date  TIMESTAMPTZ NOT NULL,
		status         TEXT NOT NULL DEFAULT 'scheduled',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS scheduled_posts_user_date_idx ON scheduled_posts (user_id, schedule_date ASC)`,
}

// Migrate creates the tables the store needs. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	logger.Sugar.Infof("Applied %d schema statements", len(migrations))
	return nil
}
