package session

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
)

func TestSubjectFromToken(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "kim@example.com"}).SignedString([]byte("any"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	sub, err := SubjectFromToken(signed)
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if sub != "kim@example.com" {
		t.Fatalf("unexpected subject: %s", sub)
	}
}

func TestSubjectFromTokenRejects(t *testing.T) {
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "x"}).SignedString([]byte("any"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	for _, tok := range []string{"", "not-a-jwt", noSub} {
		if _, err := SubjectFromToken(tok); err == nil {
			t.Fatalf("expected error for %q", tok)
		}
	}
}
