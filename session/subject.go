package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// SubjectFromToken reads the subject claim of a token freshly issued by the
// upstream. The signature is not checked; requests presenting the token to
// this service are verified separately.
func SubjectFromToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
