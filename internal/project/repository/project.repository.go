package repository

import (
	"context"
	"database/sql"

	"creatorhub/internal/project/model"
	"creatorhub/pkg/logger"
)

type ProjectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO projects (id, user_id, title, content, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`,
		p.ID, p.UserID, p.Title, p.Content, p.Type,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create project: %v", err)
	}
	return err
}

// Get returns sql.ErrNoRows when the project does not exist or belongs to
// someone else.
func (r *ProjectRepository) Get(ctx context.Context, id, userID string) (*model.Project, error) {
	var p model.Project
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, type, created_at, updated_at FROM projects WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Sugar.Errorf("Failed to get project %s: %v", id, err)
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, title, content, type, created_at, updated_at FROM projects WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to list projects for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Type, &p.CreatedAt, &p.UpdatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan project row: %v", err)
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const updateProjectSQL = `
		UPDATE projects
		SET title = COALESCE($1, title), content = COALESCE($2, content), type = COALESCE($3, type), updated_at = NOW()
		WHERE id = $4 AND user_id = $5`

// Update applies the non-nil fields and bumps updated_at. It returns the
// number of projects changed and, on a rename, the number of scheduled posts
// whose copied title was brought along in the same transaction.
func (r *ProjectRepository) Update(ctx context.Context, id, userID string, req model.UpdateProjectRequest) (int64, int64, error) {
	if req.Title == nil {
		result, err := r.DB.ExecContext(ctx, updateProjectSQL, req.Title, req.Content, req.Type, id, userID)
		if err != nil {
			logger.Sugar.Errorf("Failed to update project %s: %v", id, err)
			return 0, 0, err
		}
		rows, err := result.RowsAffected()
		return rows, 0, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateProjectSQL, req.Title, req.Content, req.Type, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update project %s: %v", id, err)
		return 0, 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil || rows == 0 {
		return rows, 0, err
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE scheduled_posts SET project_title = $1 WHERE project_id = $2 AND user_id = $3`,
		*req.Title, id, userID,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to retitle posts for project %s: %v", id, err)
		return 0, 0, err
	}
	retitled, err := result.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return rows, retitled, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM projects WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete project %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}

// SaveDraft stores content typed in a live session.
func (r *ProjectRepository) SaveDraft(ctx context.Context, userID, projectID, content string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE projects SET content = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		content, projectID, userID,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to save draft for project %s: %v", projectID, err)
	}
	return err
}
