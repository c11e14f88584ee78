package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"creatorhub/internal/gemini"
	projectmodel "creatorhub/internal/project/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeAI struct {
	text      gemini.TextResult
	jsonOut   string
	err       error
	prompts   []string
	schema    *genai.Schema
	imageArgs []string
}

func (f *fakeAI) GenerateText(_ context.Context, prompt string) (gemini.TextResult, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func (f *fakeAI) GenerateJSON(_ context.Context, prompt string, schema *genai.Schema, out any) (gemini.TextResult, error) {
	f.prompts = append(f.prompts, prompt)
	f.schema = schema
	if f.err != nil {
		return gemini.TextResult{}, f.err
	}
	return gemini.TextResult{Text: f.jsonOut}, json.Unmarshal([]byte(f.jsonOut), out)
}

func (f *fakeAI) AnalyzeImage(_ context.Context, prompt string, _ []byte, mimeType string) (gemini.TextResult, error) {
	f.prompts = append(f.prompts, prompt)
	f.imageArgs = append(f.imageArgs, mimeType)
	return f.text, f.err
}

func (f *fakeAI) GenerateImage(_ context.Context, prompt, aspectRatio string) (gemini.Image, error) {
	f.prompts = append(f.prompts, prompt)
	f.imageArgs = append(f.imageArgs, aspectRatio)
	return gemini.Image{Data: []byte{1}, MIMEType: "image/png"}, f.err
}

func (f *fakeAI) Synthesize(_ context.Context, text, voice string) (gemini.Speech, error) {
	f.prompts = append(f.prompts, text)
	return gemini.Speech{Voice: voice}, f.err
}

type fakeProjects struct {
	got *projectmodel.CreateProjectRequest
	err error
}

func (f *fakeProjects) CreateProject(_ context.Context, userID string, req projectmodel.CreateProjectRequest) (*projectmodel.Project, error) {
	f.got = &req
	if f.err != nil {
		return nil, f.err
	}
	return &projectmodel.Project{ID: "p1", UserID: userID, Title: req.Title, Content: req.Content, Type: req.Type}, nil
}

func newService(t *testing.T, ai *fakeAI, projects *fakeProjects) *StudioService {
	t.Helper()
	presets, err := LoadCatalog()
	require.NoError(t, err)
	return NewStudioService(ai, projects, presets)
}

func TestRecommendBooks(t *testing.T) {
	ai := &fakeAI{jsonOut: `{"books":[{"title":"On the Incarnation","author":"Athanasius"}]}`}
	s := newService(t, ai, nil)

	books := s.RecommendBooks(context.Background(), "  The Nicene Creed  ")
	require.Len(t, books, 1)
	assert.Equal(t, "Athanasius", books[0].Author)
	require.Len(t, ai.prompts, 1)
	assert.True(t, strings.HasSuffix(ai.prompts[0], "The Nicene Creed\n"))
	assert.Equal(t, genai.TypeObject, ai.schema.Type)
	assert.Equal(t, genai.TypeArray, ai.schema.Properties["books"].Type)
}

func TestRecommendBooks_TruncatesTopic(t *testing.T) {
	ai := &fakeAI{jsonOut: `{"books":[]}`}
	s := newService(t, ai, nil)

	s.RecommendBooks(context.Background(), strings.Repeat("ሀ", maxBookTopic+50))
	require.Len(t, ai.prompts, 1)
	topic := strings.TrimSuffix(strings.TrimPrefix(ai.prompts[0], bookPrompt), "\n")
	assert.Equal(t, maxBookTopic, utf8.RuneCountInString(topic))
}

func TestRecommendBooks_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		ai    *fakeAI
		topic string
	}{
		{"api failure", &fakeAI{err: &gemini.Error{Kind: gemini.KindRetriesExhausted}}, "Fasting"},
		{"missing books", &fakeAI{jsonOut: `{}`}, "Fasting"},
		{"blank topic", &fakeAI{}, "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books := newService(t, tt.ai, nil).RecommendBooks(context.Background(), tt.topic)
			assert.NotNil(t, books)
			assert.Empty(t, books)
		})
	}
}

func TestCreateDraft(t *testing.T) {
	ai := &fakeAI{text: gemini.TextResult{Text: "# Lent\n...", Truncated: true}}
	projects := &fakeProjects{}
	s := newService(t, ai, projects)

	draft, err := s.CreateDraft(context.Background(), "u1", "devotional", " Lent ")
	require.NoError(t, err)
	assert.True(t, draft.Truncated)
	assert.Equal(t, "p1", draft.Project.ID)
	assert.Equal(t, projectmodel.CreateProjectRequest{Title: "Lent", Content: "# Lent\n...", Type: "devotional"}, *projects.got)
	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "Lent")
}

func TestCreateDraft_Failures(t *testing.T) {
	s := newService(t, &fakeAI{}, &fakeProjects{})
	_, err := s.CreateDraft(context.Background(), "u1", "blog", "")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = s.CreateDraft(context.Background(), "u1", "poem", "x")
	assert.ErrorIs(t, err, ErrNoPreset)

	projects := &fakeProjects{}
	s = newService(t, &fakeAI{err: &gemini.Error{Kind: gemini.KindContentBlocked}}, projects)
	_, err = s.CreateDraft(context.Background(), "u1", "blog", "x")
	assert.ErrorIs(t, err, gemini.ErrContentBlocked)
	assert.Nil(t, projects.got, "nothing is stored when generation fails")

	s = newService(t, &fakeAI{text: gemini.TextResult{Text: "ok"}}, &fakeProjects{err: errors.New("db down")})
	_, err = s.CreateDraft(context.Background(), "u1", "blog", "x")
	assert.EqualError(t, err, "db down")
}

func TestPassThroughValidation(t *testing.T) {
	ai := &fakeAI{}
	s := newService(t, ai, nil)
	ctx := context.Background()

	_, err := s.Text(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = s.Vision(ctx, "describe", nil, "image/png")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = s.Image(ctx, "", "1:1")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = s.Speech(ctx, "", "Kore")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, ai.prompts)

	_, err = s.Image(ctx, "an icon", "16:9")
	require.NoError(t, err)
	speech, err := s.Speech(ctx, "Peace be with you", "Puck")
	require.NoError(t, err)
	assert.Equal(t, "Puck", speech.Voice)
	assert.Equal(t, []string{"16:9"}, ai.imageArgs)
}
