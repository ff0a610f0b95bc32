package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/rbac"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

type memRepository struct {
	tasks  map[int64]Task
	nextID int64
}

func newMemRepository() *memRepository {
	return &memRepository{tasks: make(map[int64]Task), nextID: 1}
}

func (r *memRepository) List(ctx context.Context) ([]Task, error) {
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (r *memRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memRepository) Get(ctx context.Context, id int64) (Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, shared.ErrNotFound
	}
	return t, nil
}

func (r *memRepository) Create(ctx context.Context, task Task) (Task, error) {
	task.ID = r.nextID
	r.nextID++
	r.tasks[task.ID] = task
	return task, nil
}

func (r *memRepository) Update(ctx context.Context, task Task) (Task, error) {
	if _, ok := r.tasks[task.ID]; !ok {
		return Task{}, shared.ErrNotFound
	}
	r.tasks[task.ID] = task
	return task, nil
}

func (r *memRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := r.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeRuleStore struct {
	rules map[string]rbac.Rule
	err   error
}

func (s *fakeRuleStore) GetRule(ctx context.Context, roleID int64, resource string) (rbac.Rule, error) {
	if s.err != nil {
		return rbac.Rule{}, s.err
	}
	rule, ok := s.rules[fmt.Sprintf("%d/%s", roleID, resource)]
	if !ok {
		return rbac.Rule{}, rbac.ErrRuleNotFound
	}
	return rule, nil
}

const (
	viewerRole  = int64(10)
	managerRole = int64(20)
)

func newTestService(repo Repository) *Service {
	store := &fakeRuleStore{rules: map[string]rbac.Rule{
		"10/task": {Read: true, Create: true, Update: true, Delete: true},
		"20/task": {ReadAll: true, Create: true, UpdateAll: true, DeleteAll: true},
	}}
	return NewService(repo, rbac.NewEnforcer(store, nil, nil))
}

func member(id int64, roleID int64) auth.Principal {
	return auth.Authenticated(auth.Account{ID: id, RoleID: roleID, IsActive: true})
}

func seedTasks(t *testing.T, repo *memRepository) {
	t.Helper()
	for _, task := range []Task{
		{Title: "mine", OwnerID: 1},
		{Title: "also mine", OwnerID: 1},
		{Title: "someone else's", OwnerID: 2},
	} {
		_, err := repo.Create(context.Background(), task)
		require.NoError(t, err)
	}
}

func TestListScopedToOwner(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	seedTasks(t, repo)

	got, err := svc.List(context.Background(), member(1, viewerRole))
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, task := range got {
		assert.Equal(t, int64(1), task.OwnerID)
	}
}

func TestListSpansAllWithReadAll(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	seedTasks(t, repo)

	got, err := svc.List(context.Background(), member(3, managerRole))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListAnonymous(t *testing.T) {
	svc := newTestService(newMemRepository())

	_, err := svc.List(context.Background(), auth.Anonymous())
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestCreateStampsOwner(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)

	task, err := svc.Create(context.Background(), member(7, viewerRole), "write tests", "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), task.OwnerID)
	assert.NotZero(t, task.ID)
}

func TestGetForbiddenOnForeignTask(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	seedTasks(t, repo)

	_, err := svc.Get(context.Background(), member(1, viewerRole), 3)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	task, err := svc.Get(context.Background(), member(1, viewerRole), 1)
	require.NoError(t, err)
	assert.Equal(t, "mine", task.Title)
}

func TestGetMissingTask(t *testing.T) {
	svc := newTestService(newMemRepository())

	_, err := svc.Get(context.Background(), member(1, viewerRole), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateOwnershipRules(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	seedTasks(t, repo)

	updated, err := svc.Update(context.Background(), member(1, viewerRole), 1, "renamed", "with notes")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, int64(1), updated.OwnerID)

	_, err = svc.Update(context.Background(), member(1, viewerRole), 3, "hijacked", "")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	updated, err = svc.Update(context.Background(), member(9, managerRole), 3, "managed", "")
	require.NoError(t, err)
	assert.Equal(t, "managed", updated.Title)
	assert.Equal(t, int64(2), updated.OwnerID, "update must not reassign ownership")
}

func TestPatchPreservesUnsetFields(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	_, err := repo.Create(context.Background(), Task{Title: "original", Description: "keep me", OwnerID: 1})
	require.NoError(t, err)

	title := "renamed"
	patched, err := svc.Patch(context.Background(), member(1, viewerRole), 1, &title, nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed", patched.Title)
	assert.Equal(t, "keep me", patched.Description)
	assert.Equal(t, int64(1), patched.OwnerID)

	desc := "replaced"
	patched, err = svc.Patch(context.Background(), member(1, viewerRole), 1, nil, &desc)
	require.NoError(t, err)
	assert.Equal(t, "renamed", patched.Title)
	assert.Equal(t, "replaced", patched.Description)
}

func TestPatchForbiddenOnForeignTask(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	seedTasks(t, repo)

	title := "hijacked"
	_, err := svc.Patch(context.Background(), member(1, viewerRole), 3, &title, nil)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestDeleteOwnershipRules(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	seedTasks(t, repo)

	err := svc.Delete(context.Background(), member(1, viewerRole), 3)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), member(1, viewerRole), 1))
	_, err = repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), member(9, managerRole), 3))
}

func TestRuleStoreFailureSurfaces(t *testing.T) {
	repo := newMemRepository()
	seedTasks(t, repo)
	boom := errors.New("connection reset")
	svc := NewService(repo, rbac.NewEnforcer(&fakeRuleStore{err: boom}, nil, nil))

	_, err := svc.List(context.Background(), member(1, viewerRole))
	assert.ErrorIs(t, err, boom)

	_, err = svc.Get(context.Background(), member(1, viewerRole), 1)
	assert.ErrorIs(t, err, boom)
}
