// Package service implements the studio's AI features on top of the
// generation client and the project store.
package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"creatorhub/internal/gemini"
	projectmodel "creatorhub/internal/project/model"
	"creatorhub/internal/studio/model"
	"creatorhub/pkg/logger"

	"google.golang.org/genai"
)

var (
	ErrNoPreset   = errors.New("no preset for project type")
	ErrEmptyInput = errors.New("input is empty")
)

// maxBookTopic bounds the text sent for book recommendations.
const maxBookTopic = 3000

const bookPrompt = `You are a librarian and theologian for "Ancient Truths, Modern Times". Based on the following topic or content, recommend 3-5 highly relevant and authoritative books (titles and authors) from an Ethiopian Orthodox Tewahedo or broader Patristic perspective for further reading. Return a JSON object with a 'books' array, where each item has 'title' and 'author'.

Topic/Content:
`

var bookSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"books": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":  {Type: genai.TypeString},
					"author": {Type: genai.TypeString},
				},
				Required: []string{"title", "author"},
			},
		},
	},
	Required: []string{"books"},
}

// Generator is the part of the AI client the studio uses.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (gemini.TextResult, error)
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema, out any) (gemini.TextResult, error)
	AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (gemini.TextResult, error)
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (gemini.Image, error)
	Synthesize(ctx context.Context, text, voice string) (gemini.Speech, error)
}

// ProjectCreator stores generated drafts.
type ProjectCreator interface {
	CreateProject(ctx context.Context, userID string, req projectmodel.CreateProjectRequest) (*projectmodel.Project, error)
}

type StudioService struct {
	AI       Generator
	Projects ProjectCreator
	Presets  *Catalog
}

func NewStudioService(ai Generator, projects ProjectCreator, presets *Catalog) *StudioService {
	return &StudioService{AI: ai, Projects: projects, Presets: presets}
}

func (s *StudioService) Text(ctx context.Context, prompt string) (gemini.TextResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return gemini.TextResult{}, ErrEmptyInput
	}
	return s.AI.GenerateText(ctx, prompt)
}

func (s *StudioService) Vision(ctx context.Context, prompt string, image []byte, mimeType string) (gemini.TextResult, error) {
	if strings.TrimSpace(prompt) == "" || len(image) == 0 {
		return gemini.TextResult{}, ErrEmptyInput
	}
	return s.AI.AnalyzeImage(ctx, prompt, image, mimeType)
}

func (s *StudioService) Image(ctx context.Context, prompt, aspectRatio string) (gemini.Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return gemini.Image{}, ErrEmptyInput
	}
	return s.AI.GenerateImage(ctx, prompt, aspectRatio)
}

func (s *StudioService) Speech(ctx context.Context, text, voice string) (gemini.Speech, error) {
	if strings.TrimSpace(text) == "" {
		return gemini.Speech{}, ErrEmptyInput
	}
	return s.AI.Synthesize(ctx, text, voice)
}

// RecommendBooks never fails: any error is logged and yields an empty list.
func (s *StudioService) RecommendBooks(ctx context.Context, topic string) []model.Book {
	topic = truncateRunes(strings.TrimSpace(topic), maxBookTopic)
	if topic == "" {
		return []model.Book{}
	}

	var out struct {
		Books []model.Book `json:"books"`
	}
	if _, err := s.AI.GenerateJSON(ctx, bookPrompt+topic+"\n", bookSchema, &out); err != nil {
		logger.Sugar.Errorf("Failed to get book recommendations: %v", err)
		return []model.Book{}
	}
	if out.Books == nil {
		return []model.Book{}
	}
	return out.Books
}

// CreateDraft generates content from the preset for projectType and saves it
// as a new project titled after the topic.
func (s *StudioService) CreateDraft(ctx context.Context, userID, projectType, topic string) (*model.Draft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyInput
	}
	prompt, err := s.Presets.Render(projectType, topic)
	if err != nil {
		return nil, err
	}

	res, err := s.AI.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	project, err := s.Projects.CreateProject(ctx, userID, projectmodel.CreateProjectRequest{
		Title:   topic,
		Content: res.Text,
		Type:    projectType,
	})
	if err != nil {
		return nil, err
	}
	return &model.Draft{Project: project, Truncated: res.Truncated}, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
