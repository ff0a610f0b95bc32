package tasks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/rbac"
)

func newTestRouter(repo *memRepository) chi.Router {
	store := &fakeRuleStore{rules: map[string]rbac.Rule{
		"10/task": {Read: true, Create: true, Update: true, Delete: true},
		"20/task": {ReadAll: true, Create: true, UpdateAll: true, DeleteAll: true},
	}}
	enf := rbac.NewEnforcer(store, nil, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo, enf), rbac.Middleware{Enforcer: enf})

	r := chi.NewRouter()
	r.Route("/tasks", h.MountRoutes)
	return r
}

func doAs(router chi.Router, p auth.Principal, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), p))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestPatchAcceptsPartialPayload(t *testing.T) {
	repo := newMemRepository()
	router := newTestRouter(repo)
	_, err := repo.Create(context.Background(), Task{Title: "original", Description: "keep me", OwnerID: 1})
	require.NoError(t, err)

	res := doAs(router, member(1, viewerRole), http.MethodPatch, "/tasks/1", `{"title":"renamed"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var task Task
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &task))
	assert.Equal(t, "renamed", task.Title)
	assert.Equal(t, "keep me", task.Description)
}

func TestPutRequiresFullPayload(t *testing.T) {
	repo := newMemRepository()
	router := newTestRouter(repo)
	_, err := repo.Create(context.Background(), Task{Title: "original", OwnerID: 1})
	require.NoError(t, err)

	res := doAs(router, member(1, viewerRole), http.MethodPut, "/tasks/1", `{"description":"no title"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestPatchForeignTaskForbidden(t *testing.T) {
	repo := newMemRepository()
	router := newTestRouter(repo)
	_, err := repo.Create(context.Background(), Task{Title: "theirs", OwnerID: 2})
	require.NoError(t, err)

	res := doAs(router, member(1, viewerRole), http.MethodPatch, "/tasks/1", `{"title":"hijacked"}`)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestCollectionGateCoversSubtree(t *testing.T) {
	repo := newMemRepository()
	router := newTestRouter(repo)

	res := doAs(router, auth.Anonymous(), http.MethodGet, "/tasks/", "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = doAs(router, member(1, 77), http.MethodGet, "/tasks/", "")
	assert.Equal(t, http.StatusForbidden, res.Code)
}
