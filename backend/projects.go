package backend

import (
	"context"
	"net/http"
	"strconv"

	"taskboard/domain"
)

// ProjectService covers /projects.
type ProjectService service

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return get[[]domain.Project](ctx, s.r, "/projects", nil)
}

func (s *ProjectService) Get(ctx context.Context, projectID int64) (domain.Project, error) {
	return get[domain.Project](ctx, s.r, pathf("/projects/%d", projectID), nil)
}

func (s *ProjectService) Create(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	return call[domain.Project](ctx, s.r, http.MethodPost, "/projects", nil, in)
}

func (s *ProjectService) Update(ctx context.Context, projectID int64, in domain.ProjectInput) (domain.Project, error) {
	return call[domain.Project](ctx, s.r, http.MethodPut, pathf("/projects/%d", projectID), nil, in)
}

func (s *ProjectService) Archive(ctx context.Context, projectID int64) (domain.Project, error) {
	return call[domain.Project](ctx, s.r, http.MethodPut, pathf("/projects/%d/archive", projectID), nil, nil)
}

func (s *ProjectService) Unarchive(ctx context.Context, projectID int64) (domain.Project, error) {
	return call[domain.Project](ctx, s.r, http.MethodPut, pathf("/projects/%d/unarchive", projectID), nil, nil)
}

func (s *ProjectService) Delete(ctx context.Context, projectID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/projects/%d", projectID), nil, nil)
}

func (s *ProjectService) AddMember(ctx context.Context, projectID, userID int64) (domain.Project, error) {
	return call[domain.Project](ctx, s.r, http.MethodPost, pathf("/projects/%d/members/%d", projectID, userID), nil, nil)
}

func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/projects/%d/members/%d", projectID, userID), nil, nil)
}

// Invite sends a membership invitation by e-mail. The upstream answers 403
// when the owner's subscription has no free seat.
func (s *ProjectService) Invite(ctx context.Context, projectID int64, in domain.MemberInvite) (domain.Invitation, error) {
	return call[domain.Invitation](ctx, s.r, http.MethodPost, pathf("/projects/%d/invite", projectID), nil, in)
}

func (s *ProjectService) Search(ctx context.Context, keyword string) ([]domain.Project, error) {
	return get[[]domain.Project](ctx, s.r, "/projects/search", params("keyword", keyword))
}

func (s *ProjectService) ByStatus(ctx context.Context, status domain.ProjectStatus) ([]domain.Project, error) {
	return get[[]domain.Project](ctx, s.r, "/projects/by-status", params("status", string(status)))
}

func (s *ProjectService) UpcomingDeadlines(ctx context.Context, days int) ([]domain.Project, error) {
	if days <= 0 {
		days = 7
	}
	return get[[]domain.Project](ctx, s.r, "/projects/upcoming-deadlines", params("days", strconv.Itoa(days)))
}
