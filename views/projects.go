package views

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"taskboard/backend"
	"taskboard/domain"
	"taskboard/query"
	"taskboard/session"
)

func decorate(projects []domain.Project, viewerID int64) []domain.ProjectView {
	out := make([]domain.ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, domain.NewProjectView(p, viewerID))
	}
	return out
}

// Projects lists the viewer's projects with their derived progress and status.
func (s *Service) Projects(ctx context.Context, sess *session.Session) ([]domain.ProjectView, error) {
	projects, err := fetch(ctx, s, sess, query.Key{Resource: query.Projects}, func(ctx context.Context, api *backend.API) ([]domain.Project, error) {
		return api.Projects.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return decorate(projects, sess.ViewerID()), nil
}

// Project returns one project with its derived progress and status.
func (s *Service) Project(ctx context.Context, sess *session.Session, projectID int64) (domain.ProjectView, error) {
	p, err := s.rawProject(ctx, sess, projectID)
	if err != nil {
		return domain.ProjectView{}, err
	}
	return domain.NewProjectView(p, sess.ViewerID()), nil
}

func (s *Service) rawProject(ctx context.Context, sess *session.Session, projectID int64) (domain.Project, error) {
	key := query.Key{Resource: query.Project, Scope: projectScope(projectID)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) (domain.Project, error) {
		return api.Projects.Get(ctx, projectID)
	})
}

func (s *Service) SearchProjects(ctx context.Context, sess *session.Session, keyword string) ([]domain.ProjectView, error) {
	projects, err := pass(ctx, s, sess, func(ctx context.Context, api *backend.API) ([]domain.Project, error) {
		return api.Projects.Search(ctx, keyword)
	})
	if err != nil {
		return nil, err
	}
	return decorate(projects, sess.ViewerID()), nil
}

func (s *Service) ProjectsByStatus(ctx context.Context, sess *session.Session, status domain.ProjectStatus) ([]domain.ProjectView, error) {
	key := query.Key{Resource: query.Projects, Variant: "status=" + string(status)}
	projects, err := fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Project, error) {
		return api.Projects.ByStatus(ctx, status)
	})
	if err != nil {
		return nil, err
	}
	return decorate(projects, sess.ViewerID()), nil
}

func (s *Service) UpcomingDeadlines(ctx context.Context, sess *session.Session, days int) ([]domain.ProjectView, error) {
	key := query.Key{Resource: query.Projects, Variant: fmt.Sprintf("deadlineDays=%d", days)}
	projects, err := fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Project, error) {
		return api.Projects.UpcomingDeadlines(ctx, days)
	})
	if err != nil {
		return nil, err
	}
	return decorate(projects, sess.ViewerID()), nil
}

func (s *Service) CreateProject(ctx context.Context, sess *session.Session, in domain.ProjectInput) (domain.ProjectView, error) {
	p, err := mutate(ctx, s, sess, query.ProjectCreate, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Project, error) {
		return api.Projects.Create(ctx, in)
	})
	if err != nil {
		return domain.ProjectView{}, err
	}
	return domain.NewProjectView(p, sess.ViewerID()), nil
}

func (s *Service) UpdateProject(ctx context.Context, sess *session.Session, projectID int64, in domain.ProjectInput) (domain.ProjectView, error) {
	p, err := mutate(ctx, s, sess, query.ProjectUpdate, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.Project, error) {
		return api.Projects.Update(ctx, projectID, in)
	})
	if err != nil {
		return domain.ProjectView{}, err
	}
	return domain.NewProjectView(p, sess.ViewerID()), nil
}

func (s *Service) ArchiveProject(ctx context.Context, sess *session.Session, projectID int64) (domain.ProjectView, error) {
	p, err := mutate(ctx, s, sess, query.ProjectArchive, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.Project, error) {
		return api.Projects.Archive(ctx, projectID)
	})
	if err != nil {
		return domain.ProjectView{}, err
	}
	return domain.NewProjectView(p, sess.ViewerID()), nil
}

func (s *Service) UnarchiveProject(ctx context.Context, sess *session.Session, projectID int64) (domain.ProjectView, error) {
	p, err := mutate(ctx, s, sess, query.ProjectUnarchive, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.Project, error) {
		return api.Projects.Unarchive(ctx, projectID)
	})
	if err != nil {
		return domain.ProjectView{}, err
	}
	return domain.NewProjectView(p, sess.ViewerID()), nil
}

// ToggleArchive archives an active project or restores an archived one.
func (s *Service) ToggleArchive(ctx context.Context, sess *session.Session, projectID int64) (domain.ProjectView, error) {
	p, err := s.rawProject(ctx, sess, projectID)
	if err != nil {
		return domain.ProjectView{}, err
	}
	if p.Archived {
		return s.UnarchiveProject(ctx, sess, projectID)
	}
	return s.ArchiveProject(ctx, sess, projectID)
}

func (s *Service) DeleteProject(ctx context.Context, sess *session.Session, projectID int64) error {
	return mutateErr(ctx, s, sess, query.ProjectDelete, projectScope(projectID), func(ctx context.Context, api *backend.API) error {
		return api.Projects.Delete(ctx, projectID)
	})
}

func (s *Service) AddMember(ctx context.Context, sess *session.Session, projectID, userID int64) (domain.ProjectView, error) {
	p, err := mutate(ctx, s, sess, query.ProjectMemberAdd, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.Project, error) {
		return api.Projects.AddMember(ctx, projectID, userID)
	})
	if err != nil {
		return domain.ProjectView{}, err
	}
	return domain.NewProjectView(p, sess.ViewerID()), nil
}

func (s *Service) RemoveMember(ctx context.Context, sess *session.Session, projectID, userID int64) error {
	return mutateErr(ctx, s, sess, query.ProjectMemberRemove, projectScope(projectID), func(ctx context.Context, api *backend.API) error {
		return api.Projects.RemoveMember(ctx, projectID, userID)
	})
}

// InviteMember sends a membership invitation. An upstream 403 means the
// subscription has no free seat and is reported as ErrSeatLimit wrapping the
// upstream error; any other failure is returned unchanged.
func (s *Service) InviteMember(ctx context.Context, sess *session.Session, projectID int64, in domain.MemberInvite) (domain.Invitation, error) {
	inv, err := mutate(ctx, s, sess, query.ProjectInvite, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.Invitation, error) {
		return api.Projects.Invite(ctx, projectID, in)
	})
	if backend.IsForbidden(err) {
		return inv, fmt.Errorf("%w: %w", ErrSeatLimit, err)
	}
	return inv, err
}

// SyncStatus re-reads the project from the upstream, derives its status for
// the viewer and persists the mapped status when it differs from the stored
// one. It reports whether a write happened.
func (s *Service) SyncStatus(ctx context.Context, sess *session.Session, projectID int64) (domain.ProjectView, bool, error) {
	p, err := pass(ctx, s, sess, func(ctx context.Context, api *backend.API) (domain.Project, error) {
		return api.Projects.Get(ctx, projectID)
	})
	if err != nil {
		return domain.ProjectView{}, false, err
	}

	view := domain.DeriveProjectView(p, sess.ViewerID())
	next := domain.PersistedStatusFor(view.ViewStatus, p.Status)
	if next == p.Status {
		return domain.NewProjectView(p, sess.ViewerID()), false, nil
	}

	s.log.WithFields(log.Fields{
		"project_id": projectID,
		"from":       p.Status,
		"to":         next,
	}).Info("persisting derived project status")
	updated, err := mutate(ctx, s, sess, query.ProjectStatusUpdate, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.Project, error) {
		return api.Projects.Update(ctx, projectID, domain.ProjectInput{Status: next})
	})
	if err != nil {
		return domain.ProjectView{}, false, err
	}
	return domain.NewProjectView(updated, sess.ViewerID()), true, nil
}
