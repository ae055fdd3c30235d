// Package api is the HTTP surface of the task board BFF.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/domain"
	"taskboard/notify"
	"taskboard/views"
)

// Nudger asks every stream of a viewer to refresh its unread count.
type Nudger interface {
	Nudge(ctx context.Context, subject string)
}

// Server holds the handler dependencies.
type Server struct {
	views  *views.Service
	auth   Authenticator
	hub    *notify.Hub
	nudger Nudger
	dedup  Deduper
	log    *log.Logger
}

// Register wires up all API routes on the provided Echo instance, together
// with the JSON codec, validator and error handler they rely on.
func Register(e *echo.Echo, svc *views.Service, auth Authenticator, hub *notify.Hub, nudger Nudger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Server{views: svc, auth: auth, hub: hub, nudger: nudger, log: logger}

	e.JSONSerializer = sonicSerializer{}
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.GET("/healthz", healthz)
	e.POST("/api/auth/login", s.login)
	e.POST("/api/auth/register", s.register)

	g := e.Group("/api", s.requireSession, s.idempotent)
	g.POST("/auth/logout", s.logout)
	g.GET("/auth/me", s.me)
	g.GET("/dashboard", s.dashboard)

	s.registerProjects(g)
	s.registerTasks(g)
	s.registerCollaboration(g)
	s.registerAccount(g)
	return s
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (s *Server) login(c echo.Context) error {
	var creds domain.Credentials
	if err := bind(c, &creds); err != nil {
		return err
	}
	sess, err := s.views.Login(c.Request().Context(), creds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.AuthResponse{Token: sess.AccessToken, User: sess.User})
}

func (s *Server) register(c echo.Context) error {
	var reg domain.Registration
	if err := bind(c, &reg); err != nil {
		return err
	}
	sess, err := s.views.Register(c.Request().Context(), reg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, domain.AuthResponse{Token: sess.AccessToken, User: sess.User})
}

func (s *Server) logout(c echo.Context) error {
	s.views.Logout(c.Request().Context(), sessionFrom(c))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) me(c echo.Context) error {
	user, err := s.views.CurrentUser(c.Request().Context(), sessionFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) dashboard(c echo.Context) error {
	d, err := s.views.Dashboard(c.Request().Context(), sessionFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// nudge refreshes the viewer's unread count streams after a notification
// write.
func (s *Server) nudge(c echo.Context) {
	if s.nudger == nil {
		return
	}
	s.nudger.Nudge(c.Request().Context(), sessionFrom(c).Subject)
}

func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}

// respond writes v as JSON or returns err.
func respond[T any](c echo.Context, status int, v T, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(status, v)
}

func noContent(c echo.Context, err error) error {
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
