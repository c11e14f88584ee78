package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	projectmodel "creatorhub/internal/project/model"
	"creatorhub/internal/schedule/model"
	"creatorhub/internal/schedule/repository"
	"creatorhub/internal/schedule/service"
	"creatorhub/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProjects map[string]string

func (s stubProjects) Get(_ context.Context, id, userID string) (*projectmodel.Project, error) {
	title, ok := s[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &projectmodel.Project{ID: id, UserID: userID, Title: title}, nil
}

type nopHub struct{}

func (nopHub) Notify(context.Context, string, string) {}

func newHandler(t *testing.T) (*ScheduleHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	projects := stubProjects{"5a9c3e1f-2b4d-4a6e-8c0f-1d3b5f7a9c2e": "Feast of the Cross"}
	return NewScheduleHandler(service.NewScheduleService(repository.NewScheduleRepository(db), projects, nopHub{})), mock
}

func authed(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, "u1"))
}

func TestSchedulePostHandler(t *testing.T) {
	h, mock := newHandler(t)
	when := time.Date(2026, 9, 27, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO scheduled_posts").
		WithArgs(sqlmock.AnyArg(), "u1", "5a9c3e1f-2b4d-4a6e-8c0f-1d3b5f7a9c2e", "Feast of the Cross", "Instagram", when, model.StatusScheduled).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	body := `{"project_id":"5a9c3e1f-2b4d-4a6e-8c0f-1d3b5f7a9c2e","platform":"Instagram","schedule_date":"2026-09-27T09:00:00Z"}`
	rec := httptest.NewRecorder()
	h.SchedulePost(rec, authed(httptest.NewRequest(http.MethodPost, "/api/scheduled/create", strings.NewReader(body))))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got model.ScheduledPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Feast of the Cross", got.ProjectTitle)
	assert.Equal(t, model.StatusScheduled, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulePostHandler_Rejects(t *testing.T) {
	h, _ := newHandler(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"bad platform", `{"project_id":"5a9c3e1f-2b4d-4a6e-8c0f-1d3b5f7a9c2e","platform":"MySpace","schedule_date":"2026-09-27T09:00:00Z"}`, http.StatusBadRequest},
		{"no date", `{"project_id":"5a9c3e1f-2b4d-4a6e-8c0f-1d3b5f7a9c2e","platform":"Twitter"}`, http.StatusBadRequest},
		{"unknown project", `{"project_id":"nope","platform":"Twitter","schedule_date":"2026-09-27T09:00:00Z"}`, http.StatusNotFound},
		{"missing project", `{"project_id":"00000000-0000-4000-8000-000000000000","platform":"Twitter","schedule_date":"2026-09-27T09:00:00Z"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.SchedulePost(rec, authed(httptest.NewRequest(http.MethodPost, "/api/scheduled/create", strings.NewReader(tt.body))))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetPostsHandler(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("FROM scheduled_posts WHERE user_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "project_id", "project_title", "platform", "schedule_date", "status", "created_at"}))

	rec := httptest.NewRecorder()
	h.GetPosts(rec, authed(httptest.NewRequest(http.MethodGet, "/api/scheduled", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePostHandler(t *testing.T) {
	h, mock := newHandler(t)
	platform := "LinkedIn"
	mock.ExpectExec("UPDATE scheduled_posts").
		WithArgs(nil, nil, platform, nil, "9e8d7c6b-5a4f-4e3d-a2c1-b0a9f8e7d6c5", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	h.UpdatePost(rec, authed(httptest.NewRequest(http.MethodPut, "/api/scheduled/update?postId=9e8d7c6b-5a4f-4e3d-a2c1-b0a9f8e7d6c5", strings.NewReader(`{"platform":"LinkedIn"}`))))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdatePost(rec, authed(httptest.NewRequest(http.MethodPut, "/api/scheduled/update", strings.NewReader(`{}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdatePost(rec, authed(httptest.NewRequest(http.MethodPut, "/api/scheduled/update?postId=9e8d7c6b-5a4f-4e3d-a2c1-b0a9f8e7d6c5", strings.NewReader(`{}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "nothing to update")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePostHandler(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectExec("DELETE FROM scheduled_posts").
		WithArgs("1f2e3d4c-5b6a-4978-8a6b-5c4d3e2f1a0b", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := httptest.NewRecorder()
	h.DeletePost(rec, authed(httptest.NewRequest(http.MethodDelete, "/api/scheduled/delete?postId=1f2e3d4c-5b6a-4978-8a6b-5c4d3e2f1a0b", nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.DeletePost(rec, authed(httptest.NewRequest(http.MethodGet, "/api/scheduled/delete?postId=9e8d7c6b-5a4f-4e3d-a2c1-b0a9f8e7d6c5", nil)))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.DeletePost(rec, authed(httptest.NewRequest(http.MethodDelete, "/api/scheduled/delete?postId=s1", nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
