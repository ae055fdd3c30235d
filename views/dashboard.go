package views

import (
	"context"

	"golang.org/x/sync/errgroup"

	"taskboard/domain"
	"taskboard/session"
)

// Dashboard is everything the landing page shows.
type Dashboard struct {
	Projects       []domain.ProjectView `json:"projects"`
	UnreadCount    int64                `json:"unreadCount"`
	TodayReminders []domain.Reminder    `json:"todayReminders"`
}

// Dashboard loads the landing page reads concurrently. The first failure
// cancels the others and is returned.
func (s *Service) Dashboard(ctx context.Context, sess *session.Session) (Dashboard, error) {
	var d Dashboard
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		projects, err := s.Projects(gCtx, sess)
		d.Projects = projects
		return err
	})
	g.Go(func() error {
		n, err := s.UnreadCount(gCtx, sess)
		d.UnreadCount = n
		return err
	})
	g.Go(func() error {
		reminders, err := s.TodayReminders(gCtx, sess)
		d.TodayReminders = reminders
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
