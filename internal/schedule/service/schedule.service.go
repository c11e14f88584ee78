package service

import (
	"context"
	"database/sql"
	"errors"

	projectmodel "creatorhub/internal/project/model"
	"creatorhub/internal/schedule/model"
	"creatorhub/internal/schedule/repository"
	"creatorhub/socket"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("scheduled post not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidPlatform = errors.New("invalid platform: must be Twitter, Facebook, Instagram or LinkedIn")
	ErrMissingDate     = errors.New("schedule_date is required")
	ErrEmptyUpdate     = errors.New("nothing to update")
)

// ProjectLookup resolves the project a post is scheduled from.
type ProjectLookup interface {
	Get(ctx context.Context, id, userID string) (*projectmodel.Project, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID, topic string)
}

type ScheduleService struct {
	Repo     *repository.ScheduleRepository
	Projects ProjectLookup
	Hub      Notifier
}

func NewScheduleService(repo *repository.ScheduleRepository, projects ProjectLookup, hub Notifier) *ScheduleService {
	return &ScheduleService{Repo: repo, Projects: projects, Hub: hub}
}

func (s *ScheduleService) SchedulePost(ctx context.Context, userID string, req model.CreatePostRequest) (*model.ScheduledPost, error) {
	if !model.ValidPlatform(req.Platform) {
		return nil, ErrInvalidPlatform
	}
	if req.ScheduleDate.IsZero() {
		return nil, ErrMissingDate
	}
	project, err := s.lookupProject(ctx, req.ProjectID, userID)
	if err != nil {
		return nil, err
	}

	post := &model.ScheduledPost{
		ID:           uuid.NewString(),
		UserID:       userID,
		ProjectID:    project.ID,
		ProjectTitle: project.Title,
		Platform:     req.Platform,
		ScheduleDate: req.ScheduleDate.UTC(),
		Status:       model.StatusScheduled,
	}
	if err := s.Repo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.Hub.Notify(ctx, userID, socket.TopicScheduled)
	return post, nil
}

func (s *ScheduleService) GetPosts(ctx context.Context, userID string) ([]model.ScheduledPost, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *ScheduleService) UpdatePost(ctx context.Context, id, userID string, req model.UpdatePostRequest) error {
	if req.Empty() {
		return ErrEmptyUpdate
	}
	if !projectmodel.ValidID(id) {
		return ErrNotFound
	}
	if req.Platform != nil && !model.ValidPlatform(*req.Platform) {
		return ErrInvalidPlatform
	}
	if req.ScheduleDate != nil && req.ScheduleDate.IsZero() {
		return ErrMissingDate
	}

	var projectTitle *string
	if req.ProjectID != nil {
		project, err := s.lookupProject(ctx, *req.ProjectID, userID)
		if err != nil {
			return err
		}
		projectTitle = &project.Title
	}

	rows, err := s.Repo.Update(ctx, id, userID, req.ProjectID, projectTitle, req.Platform, req.ScheduleDate)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.Hub.Notify(ctx, userID, socket.TopicScheduled)
	return nil
}

func (s *ScheduleService) DeletePost(ctx context.Context, id, userID string) error {
	if !projectmodel.ValidID(id) {
		return ErrNotFound
	}
	rows, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.Hub.Notify(ctx, userID, socket.TopicScheduled)
	return nil
}

func (s *ScheduleService) lookupProject(ctx context.Context, projectID, userID string) (*projectmodel.Project, error) {
	if !projectmodel.ValidID(projectID) {
		return nil, ErrProjectNotFound
	}
	project, err := s.Projects.Get(ctx, projectID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	return project, err
}
