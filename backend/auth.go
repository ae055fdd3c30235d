package backend

import (
	"context"
	"net/http"

	"taskboard/domain"
)

// AuthService covers /auth.
type AuthService service

// Login exchanges credentials for a token and the user profile.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error) {
	return call[domain.AuthResponse](ctx, s.r, http.MethodPost, "/auth/login", nil, creds)
}

// Register creates an account and returns its token.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (domain.AuthResponse, error) {
	return call[domain.AuthResponse](ctx, s.r, http.MethodPost, "/auth/register", nil, reg)
}

// Me returns the profile of the token's owner.
func (s *AuthService) Me(ctx context.Context) (domain.User, error) {
	return get[domain.User](ctx, s.r, "/auth/me", nil)
}
