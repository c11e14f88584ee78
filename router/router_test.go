package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"creatorhub/config"
	"creatorhub/internal/gemini"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "router-secret"

func newServer(t *testing.T, api http.HandlerFunc) (*httptest.Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)
	gcfg := gemini.DefaultConfig("test-key")
	gcfg.BaseURL = upstream.URL
	ai := gemini.New(gcfg)

	cfg := config.Default()
	cfg.Server.JWTSecret = secret
	handler, hub, err := Setup(&cfg, db, ai)
	require.NoError(t, err)
	require.NotNil(t, hub)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, mock
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + s
}

func do(t *testing.T, method, url, auth, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSetup_RequiresAuth(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/api/projects", "/api/scheduled", "/api/ai/voices", "/ws"} {
		resp := do(t, http.MethodGet, srv.URL+path, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestSetup_ProjectsListing(t *testing.T) {
	srv, mock := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, user_id, title, content, type, created_at, updated_at FROM projects").
		WithArgs("user-7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "type", "created_at", "updated_at"}).
			AddRow("p1", "user-7", "Fasting", "Body text", "blog", now, now))

	resp := do(t, http.MethodGet, srv.URL+"/api/projects", bearer(t, "user-7"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Fasting", got[0]["title"])
	assert.Equal(t, "Body text", got[0]["snippet"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_TextThroughClient(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Selam"}]},"finishReason":"STOP"}]}`))
	})

	resp := do(t, http.MethodPost, srv.URL+"/api/ai/text", bearer(t, "u1"), `{"prompt":"Say hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Selam", got["text"])
}

func TestSetup_Healthz(t *testing.T) {
	srv, mock := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	mock.ExpectPing()

	resp := do(t, http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_CORSPreflight(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {})

	resp := do(t, http.MethodOptions, srv.URL+"/api/projects", "", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
