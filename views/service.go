// Package views runs the reads and writes behind every screen of the task
// board: reads go through the per-viewer query cache, writes go upstream and
// invalidate what they made stale.
package views

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"taskboard/backend"
	"taskboard/domain"
	"taskboard/query"
	"taskboard/session"
)

var (
	// ErrSessionExpired is returned when the upstream rejected the session
	// token. The session has been cleared by the time it is returned.
	ErrSessionExpired = errors.New("session expired")
	// ErrSeatLimit is returned by InviteMember when the owner's subscription
	// has no free member seat.
	ErrSeatLimit = errors.New("subscription member limit reached, upgrade your plan")
)

// Service orchestrates upstream calls for authenticated viewers. Methods taking
// a *session.Session require a non-nil session.
type Service struct {
	client   *backend.Client
	cache    *query.Cache
	sessions session.Store
	log      *log.Logger
}

// New creates a Service.
func New(client *backend.Client, cache *query.Cache, sessions session.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{client: client, cache: cache, sessions: sessions, log: logger}
}

// guard clears the session when the upstream answered 401.
func (s *Service) guard(ctx context.Context, sess *session.Session, err error) error {
	if err == nil || !backend.IsUnauthorized(err) {
		return err
	}
	s.log.WithField("subject", sess.Subject).Info("upstream rejected session token, clearing session")
	s.forget(ctx, sess.Subject)
	return fmt.Errorf("%w: %w", ErrSessionExpired, err)
}

func (s *Service) forget(ctx context.Context, subject string) {
	if err := s.sessions.Clear(ctx, subject); err != nil {
		s.log.WithError(err).WithField("subject", subject).Warn("clear session failed")
	}
	s.cache.Purge(ctx, subject)
}

// fetch is a cached read of key.
func fetch[T any](ctx context.Context, s *Service, sess *session.Session, key query.Key, load func(context.Context, *backend.API) (T, error)) (T, error) {
	api := s.client.As(sess)
	v, err := query.Fetch(ctx, s.cache, sess.Subject, key, func(ctx context.Context) (T, error) {
		return load(ctx, api)
	})
	return v, s.guard(ctx, sess, err)
}

// pass is an uncached read.
func pass[T any](ctx context.Context, s *Service, sess *session.Session, load func(context.Context, *backend.API) (T, error)) (T, error) {
	v, err := load(ctx, s.client.As(sess))
	return v, s.guard(ctx, sess, err)
}

// mutate runs a write and, only when it succeeded, invalidates what m makes
// stale within scope.
func mutate[T any](ctx context.Context, s *Service, sess *session.Session, m query.Mutation, scope query.Scope, write func(context.Context, *backend.API) (T, error)) (T, error) {
	v, err := write(ctx, s.client.As(sess))
	if err != nil {
		return v, s.guard(ctx, sess, err)
	}
	s.cache.Invalidate(ctx, sess.Subject, m, scope)
	return v, nil
}

func mutateErr(ctx context.Context, s *Service, sess *session.Session, m query.Mutation, scope query.Scope, write func(context.Context, *backend.API) error) error {
	_, err := mutate(ctx, s, sess, m, scope, func(ctx context.Context, api *backend.API) (struct{}, error) {
		return struct{}{}, write(ctx, api)
	})
	return err
}

func projectScope(projectID int64) query.Scope { return query.Scope{ProjectID: projectID} }

func taskScope(projectID, taskID int64) query.Scope {
	return query.Scope{ProjectID: projectID, TaskID: taskID}
}

// Login exchanges credentials for an upstream token and stores the new
// session under the token's subject.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*session.Session, error) {
	resp, err := s.client.As(backend.StaticToken("")).Auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, resp)
}

// Register creates an upstream account and signs it in.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (*session.Session, error) {
	resp, err := s.client.As(backend.StaticToken("")).Auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, resp)
}

func (s *Service) open(ctx context.Context, resp domain.AuthResponse) (*session.Session, error) {
	subject, err := session.SubjectFromToken(resp.Token)
	if err != nil {
		return nil, err
	}
	sess := &session.Session{Subject: subject, AccessToken: resp.Token, User: resp.User}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resume returns the stored session for subject when it holds token, and
// otherwise rebuilds it from the upstream profile of token's owner.
func (s *Service) Resume(ctx context.Context, subject, token string) (*session.Session, error) {
	sess, err := s.sessions.Load(ctx, subject)
	switch {
	case err == nil && sess.AccessToken == token:
		return sess, nil
	case err != nil && !errors.Is(err, session.ErrNoSession):
		s.log.WithError(err).WithField("subject", subject).Warn("load session failed, rebuilding")
	}

	user, err := s.client.As(backend.StaticToken(token)).Auth.Me(ctx)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.forget(ctx, subject)
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return nil, err
	}
	sess = &session.Session{Subject: subject, AccessToken: token, User: user}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout clears the session and everything cached for it.
func (s *Service) Logout(ctx context.Context, sess *session.Session) {
	s.forget(ctx, sess.Subject)
}

// CurrentUser returns the upstream profile of the viewer.
func (s *Service) CurrentUser(ctx context.Context, sess *session.Session) (domain.User, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.CurrentUser}, func(ctx context.Context, api *backend.API) (domain.User, error) {
		return api.Auth.Me(ctx)
	})
}
