package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"creatorhub/internal/project/model"
	"creatorhub/internal/project/repository"
	"creatorhub/internal/project/service"
	"creatorhub/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHub struct{}

func (nopHub) Notify(context.Context, string, string) {}
func (nopHub) DiscardDraft(string, string)            {}

func newHandler(t *testing.T) (*ProjectHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProjectHandler(service.NewProjectService(repository.NewProjectRepository(db), nopHub{})), mock
}

func authed(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, userID))
}

func TestCreateProjectHandler(t *testing.T) {
	h, mock := newHandler(t)
	now := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery("INSERT INTO projects").
		WithArgs(sqlmock.AnyArg(), "u1", "Easter Sunday", "He is risen", "sermon").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	body := `{"title":"Easter Sunday","content":"He is risen","type":"sermon"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/projects/create", strings.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	h.CreateProject(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Easter Sunday", got.Title)
	assert.Equal(t, "u1", got.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProjectHandler_BadRequests(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.CreateProject(rec, authed(httptest.NewRequest(http.MethodGet, "/api/projects/create", nil), "u1"))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.CreateProject(rec, authed(httptest.NewRequest(http.MethodPost, "/api/projects/create", strings.NewReader("{")), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.CreateProject(rec, authed(httptest.NewRequest(http.MethodPost, "/api/projects/create", strings.NewReader(`{"type":"poem"}`)), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid project type")
}

const projectID = "3f1c2b9e-8a4d-4c6e-9b7a-2d5e1f0a6c33"

func TestGetProjectHandler(t *testing.T) {
	h, mock := newHandler(t)
	now := time.Now().UTC().Truncate(time.Second)

	rec := httptest.NewRecorder()
	h.GetProject(rec, authed(httptest.NewRequest(http.MethodGet, "/api/projects/get", nil), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.GetProject(rec, authed(httptest.NewRequest(http.MethodGet, "/api/projects/get?projectId=abc", nil), "u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
		WithArgs(projectID, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "type", "created_at", "updated_at"}))
	rec = httptest.NewRecorder()
	h.GetProject(rec, authed(httptest.NewRequest(http.MethodGet, "/api/projects/get?projectId="+projectID, nil), "u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "project not found")

	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
		WithArgs(projectID, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "type", "created_at", "updated_at"}).
			AddRow(projectID, "u1", "Advent", "Come", "devotional", now, now))
	rec = httptest.NewRecorder()
	h.GetProject(rec, authed(httptest.NewRequest(http.MethodGet, "/api/projects/get?projectId="+projectID, nil), "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Advent", got.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProjectHandler(t *testing.T) {
	h, mock := newHandler(t)
	url := "/api/projects/update?projectId=" + projectID

	rec := httptest.NewRecorder()
	h.UpdateProject(rec, authed(httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{}`)), "u1"))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateProject(rec, authed(httptest.NewRequest(http.MethodPut, "/api/projects/update", strings.NewReader(`{"content":"x"}`)), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateProject(rec, authed(httptest.NewRequest(http.MethodPut, url, strings.NewReader(`{}`)), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "nothing to update")

	rec = httptest.NewRecorder()
	h.UpdateProject(rec, authed(httptest.NewRequest(http.MethodPut, url, strings.NewReader(`{"type":"poem"}`)), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateProject(rec, authed(httptest.NewRequest(http.MethodPut, "/api/projects/update?projectId=p1", strings.NewReader(`{"content":"x"}`)), "u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mock.ExpectExec("UPDATE projects").
		WithArgs(nil, "x", nil, projectID, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rec = httptest.NewRecorder()
	h.UpdateProject(rec, authed(httptest.NewRequest(http.MethodPut, url, strings.NewReader(`{"content":"x"}`)), "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProjectHandler(t *testing.T) {
	h, mock := newHandler(t)

	rec := httptest.NewRecorder()
	h.DeleteProject(rec, authed(httptest.NewRequest(http.MethodDelete, "/api/projects/delete", nil), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mock.ExpectExec("DELETE FROM projects").WithArgs(projectID, "u1").WillReturnResult(sqlmock.NewResult(0, 0))
	rec = httptest.NewRecorder()
	h.DeleteProject(rec, authed(httptest.NewRequest(http.MethodDelete, "/api/projects/delete?projectId="+projectID, nil), "u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mock.ExpectExec("DELETE FROM projects").WithArgs(projectID, "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	rec = httptest.NewRecorder()
	h.DeleteProject(rec, authed(httptest.NewRequest(http.MethodDelete, "/api/projects/delete?projectId="+projectID, nil), "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProjectsHandler_DatabaseError(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM projects").WillReturnError(sqlmock.ErrCancelled)

	rec := httptest.NewRecorder()
	h.GetProjects(rec, authed(httptest.NewRequest(http.MethodGet, "/api/projects", nil), "u1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Database error")
}
