package repository

import (
	"context"
	"database/sql"
	"time"

	"creatorhub/internal/schedule/model"
	"creatorhub/pkg/logger"
)

type ScheduleRepository struct {
	DB *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, p *model.ScheduledPost) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO scheduled_posts (id, user_id, project_id, project_title, platform, schedule_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at`,
		p.ID, p.UserID, p.ProjectID, p.ProjectTitle, p.Platform, p.ScheduleDate, p.Status,
	).Scan(&p.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to schedule post: %v", err)
	}
	return err
}

// ListByUser returns the user's posts, soonest first.
func (r *ScheduleRepository) ListByUser(ctx context.Context, userID string) ([]model.ScheduledPost, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, project_id, project_title, platform, schedule_date, status, created_at
		FROM scheduled_posts WHERE user_id = $1 ORDER BY schedule_date ASC`,
		userID,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to list scheduled posts for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	posts := []model.ScheduledPost{}
	for rows.Next() {
		var p model.ScheduledPost
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProjectID, &p.ProjectTitle, &p.Platform, &p.ScheduleDate, &p.Status, &p.CreatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan scheduled post row: %v", err)
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Update applies the non-nil fields. projectTitle travels with projectID.
func (r *ScheduleRepository) Update(ctx context.Context, id, userID string, projectID, projectTitle, platform *string, scheduleDate *time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET project_id = COALESCE($1, project_id), project_title = COALESCE($2, project_title),
			platform = COALESCE($3, platform), schedule_date = COALESCE($4, schedule_date)
		WHERE id = $5 AND user_id = $6`,
		projectID, projectTitle, platform, scheduleDate, id, userID,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to update scheduled post %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ScheduleRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM scheduled_posts WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete scheduled post %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}
