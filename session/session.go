// Package session holds the explicit per-viewer session: the bearer token
// issued upstream and the profile of the user it belongs to.
package session

import (
	"context"
	"errors"

	"taskboard/domain"
)

// ErrNoSession is returned by Store.Load when nothing is stored for the
// subject.
var ErrNoSession = errors.New("session not found")

// Session is threaded through every call that talks to the upstream. A nil
// *Session is an anonymous caller.
type Session struct {
	Subject     string
	AccessToken string
	User        domain.User
}

// Token implements backend.TokenSource.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// ViewerID is the id the status deriver compares project creators against.
func (s *Session) ViewerID() int64 {
	if s == nil {
		return 0
	}
	return s.User.ID
}

// Store persists sessions keyed by subject.
type Store interface {
	Load(ctx context.Context, subject string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context, subject string) error
}
