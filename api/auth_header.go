package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

const (
	bearerPrefix = "Bearer "
	// tokenQueryParam carries the token for EventSource clients, which cannot
	// set headers.
	tokenQueryParam = "token"
)

func bearerTokenFromRequest(req *http.Request) (string, error) {
	if values := req.Header.Values(echo.HeaderAuthorization); len(values) > 0 {
		return bearerTokenFromString(values[0])
	}
	if token := req.URL.Query().Get(tokenQueryParam); token != "" {
		return bearerTokenFromString(bearerPrefix + token)
	}
	return "", errMissingAuthorization
}

func bearerTokenFromString(raw string) (string, error) {
	trimmed := strings.Trim(raw, " ")
	if trimmed == "" {
		return "", errMissingAuthorization
	}
	if len(trimmed) <= len(bearerPrefix) || !strings.HasPrefix(trimmed, bearerPrefix) {
		return "", errBadAuthorization
	}
	token := trimmed[len(bearerPrefix):]
	if strings.Count(token, ".") != 2 {
		return "", errBadAuthorization
	}
	return token, nil
}
