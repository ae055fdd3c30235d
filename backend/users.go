package backend

import (
	"context"
	"net/http"

	"taskboard/domain"
)

// UserService covers /users.
type UserService service

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return get[[]domain.User](ctx, s.r, "/users", nil)
}

func (s *UserService) Get(ctx context.Context, userID int64) (domain.User, error) {
	return get[domain.User](ctx, s.r, pathf("/users/%d", userID), nil)
}

func (s *UserService) Search(ctx context.Context, keyword string) ([]domain.User, error) {
	return get[[]domain.User](ctx, s.r, "/users/search", params("keyword", keyword))
}

func (s *UserService) Update(ctx context.Context, userID int64, in domain.UserUpdate) (domain.User, error) {
	return call[domain.User](ctx, s.r, http.MethodPut, pathf("/users/%d", userID), nil, in)
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, in domain.PasswordChange) error {
	return exec(ctx, s.r, http.MethodPut, pathf("/users/%d/change-password", userID), nil, in)
}

// SetRoles replaces the user's roles. Admin only upstream.
func (s *UserService) SetRoles(ctx context.Context, userID int64, roles []string) (domain.User, error) {
	return call[domain.User](ctx, s.r, http.MethodPut, pathf("/users/%d/roles", userID), nil, roles)
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/users/%d", userID), nil, nil)
}

func (s *UserService) Activate(ctx context.Context, userID int64) (domain.User, error) {
	return call[domain.User](ctx, s.r, http.MethodPut, pathf("/users/%d/activate", userID), nil, nil)
}

// ActivityService covers /projects/{id}/activity.
type ActivityService service

func (s *ActivityService) List(ctx context.Context, projectID int64) ([]domain.ActivityEntry, error) {
	return get[[]domain.ActivityEntry](ctx, s.r, pathf("/projects/%d/activity", projectID), nil)
}

func (s *ActivityService) Timeline(ctx context.Context, projectID int64) ([]domain.ActivityEntry, error) {
	return get[[]domain.ActivityEntry](ctx, s.r, pathf("/projects/%d/activity/timeline", projectID), nil)
}

func (s *ActivityService) Stats(ctx context.Context, projectID int64) (domain.Report, error) {
	return get[domain.Report](ctx, s.r, pathf("/projects/%d/activity/stats", projectID), nil)
}

func (s *ActivityService) ByUser(ctx context.Context, projectID, userID int64) ([]domain.ActivityEntry, error) {
	return get[[]domain.ActivityEntry](ctx, s.r, pathf("/projects/%d/activity/user/%d", projectID, userID), nil)
}
