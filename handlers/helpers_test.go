package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"annah-server/middleware"
	"annah-server/store"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv   *httptest.Server
	store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	middleware.SetSecret("test-secret")

	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	authHandler := NewAuthHandler(s)
	taskHandler := NewTaskHandler(s)
	eventHandler := NewEventHandler(s)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/me", middleware.AuthMiddleware(http.HandlerFunc(authHandler.Me)))
	mux.Handle("GET /api/tasks", middleware.AuthMiddleware(http.HandlerFunc(taskHandler.List)))
	mux.Handle("POST /api/tasks", middleware.AuthMiddleware(http.HandlerFunc(taskHandler.Create)))
	mux.Handle("PATCH /api/tasks/{id}/complete", middleware.AuthMiddleware(http.HandlerFunc(taskHandler.Complete)))
	mux.Handle("GET /api/events", middleware.AuthMiddleware(http.HandlerFunc(eventHandler.List)))
	mux.Handle("POST /api/events", middleware.AuthMiddleware(http.HandlerFunc(eventHandler.Create)))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: s}
}

// newUser registers a user through the store and returns a bearer token.
func (e *testEnv) newUser(t *testing.T, username string) (userID, token string) {
	t.Helper()
	user, err := e.store.CreateUser(username, "hunter22")
	require.NoError(t, err)
	token, err = middleware.GenerateToken(user.ID)
	require.NoError(t, err)
	return user.ID, token
}

// do issues a JSON request; token may be empty for unauthenticated calls.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
