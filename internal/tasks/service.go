package tasks

import (
	"context"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/rbac"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Service applies the authorization contract around task persistence. The
// principal is an explicit parameter on every call; nothing identity-related
// is read from ambient state.
type Service struct {
	repo     Repository
	enforcer *rbac.Enforcer
}

// NewService constructs a Service.
func NewService(repo Repository, enforcer *rbac.Enforcer) *Service {
	return &Service{repo: repo, enforcer: enforcer}
}

// List returns the tasks visible to the principal: every task when the rule
// grants read_all, otherwise only tasks the principal owns. The collection
// gate has already run; this only shapes the query.
func (s *Service) List(ctx context.Context, p auth.Principal) ([]Task, error) {
	if p.IsAnonymous() {
		return nil, shared.ErrUnauthenticated
	}
	all, err := s.enforcer.CanReadAll(ctx, p, ResourceCode)
	if err != nil {
		return nil, err
	}
	if all {
		return s.repo.List(ctx)
	}
	return s.repo.ListByOwner(ctx, p.AccountID())
}

// Get fetches a single task after the object-level read check. A task the
// principal may not see is reported as forbidden, not hidden as absent.
func (s *Service) Get(ctx context.Context, p auth.Principal, id int64) (Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := s.authorizeObject(ctx, p, rbac.ActionRead, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Create stores a new task owned by the principal.
func (s *Service) Create(ctx context.Context, p auth.Principal, title, description string) (Task, error) {
	if p.IsAnonymous() {
		return Task{}, shared.ErrUnauthenticated
	}
	return s.repo.Create(ctx, Task{
		Title:       title,
		Description: description,
		OwnerID:     p.AccountID(),
	})
}

// Update modifies a task after the object-level update check. Ownership
// never changes on update.
func (s *Service) Update(ctx context.Context, p auth.Principal, id int64, title, description string) (Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := s.authorizeObject(ctx, p, rbac.ActionUpdate, task); err != nil {
		return Task{}, err
	}
	task.Title = title
	task.Description = description
	return s.repo.Update(ctx, task)
}

// Patch applies a partial update after the object-level update check.
// Fields left nil keep their current value.
func (s *Service) Patch(ctx context.Context, p auth.Principal, id int64, title, description *string) (Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := s.authorizeObject(ctx, p, rbac.ActionUpdate, task); err != nil {
		return Task{}, err
	}
	if title != nil {
		task.Title = *title
	}
	if description != nil {
		task.Description = *description
	}
	return s.repo.Update(ctx, task)
}

// Delete removes a task after the object-level delete check.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id int64) error {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeObject(ctx, p, rbac.ActionDelete, task); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorizeObject(ctx context.Context, p auth.Principal, action rbac.Action, task Task) error {
	if p.IsAnonymous() {
		return shared.ErrUnauthenticated
	}
	allowed, err := s.enforcer.AuthorizeObject(ctx, p, ResourceCode, action, task)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.ErrForbidden
	}
	return nil
}
