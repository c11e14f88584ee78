package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"creatorhub/internal/project/model"
	"creatorhub/internal/project/repository"
	"creatorhub/socket"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrNotFound    = errors.New("project not found")
	ErrInvalidType = errors.New("invalid project type")
	ErrEmptyUpdate = errors.New("nothing to update")
)

const snippetLength = 100

// Notifier pushes fresh listings to live sessions.
type Notifier interface {
	Notify(ctx context.Context, userID, topic string)
	DiscardDraft(userID, projectID string)
}

type ProjectService struct {
	Repo *repository.ProjectRepository
	Hub  Notifier
}

func NewProjectService(repo *repository.ProjectRepository, hub Notifier) *ProjectService {
	return &ProjectService{Repo: repo, Hub: hub}
}

func (s *ProjectService) CreateProject(ctx context.Context, userID string, req model.CreateProjectRequest) (*model.Project, error) {
	if !model.ValidType(req.Type) {
		return nil, ErrInvalidType
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle(req.Type)
	}

	p := &model.Project{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Content: req.Content,
		Type:    req.Type,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.Hub.Notify(ctx, userID, socket.TopicProjects)
	return p, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id, userID string) (*model.Project, error) {
	if !model.ValidID(id) {
		return nil, ErrNotFound
	}
	p, err := s.Repo.Get(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// GetProjects lists the user's projects, most recently edited first.
func (s *ProjectService) GetProjects(ctx context.Context, userID string) ([]model.Project, error) {
	projects, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Snippet = Snippet(projects[i].Content)
	}
	return projects, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id, userID string, req model.UpdateProjectRequest) error {
	if req.Empty() {
		return ErrEmptyUpdate
	}
	if !model.ValidID(id) {
		return ErrNotFound
	}
	if req.Type != nil && !model.ValidType(*req.Type) {
		return ErrInvalidType
	}
	rows, retitled, err := s.Repo.Update(ctx, id, userID, req)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	if req.Content != nil {
		s.Hub.DiscardDraft(userID, id)
	}
	s.Hub.Notify(ctx, userID, socket.TopicProjects)
	if retitled > 0 {
		s.Hub.Notify(ctx, userID, socket.TopicScheduled)
	}
	return nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id, userID string) error {
	if !model.ValidID(id) {
		return ErrNotFound
	}
	rows, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.Hub.DiscardDraft(userID, id)
	s.Hub.Notify(ctx, userID, socket.TopicProjects)
	// Posts scheduled from the project are removed by the foreign key.
	s.Hub.Notify(ctx, userID, socket.TopicScheduled)
	return nil
}

// DefaultTitle names a project created without a title, e.g. "Untitled Sermon".
func DefaultTitle(projectType string) string {
	return "Untitled " + cases.Title(language.English).String(projectType)
}

// Snippet flattens content to a single line preview.
func Snippet(content string) string {
	res := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(res) > snippetLength {
		return string([]rune(res)[:snippetLength]) + "..."
	}
	return res
}
