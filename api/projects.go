package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"taskboard/domain"
)

func (s *Server) registerProjects(g *echo.Group) {
	g.GET("/projects", s.listProjects)
	g.POST("/projects", s.createProject)
	g.GET("/projects/search", s.searchProjects)
	g.GET("/projects/status/:status", s.projectsByStatus)
	g.GET("/projects/upcoming", s.upcomingDeadlines)
	g.GET("/projects/:projectId", s.getProject)
	g.PUT("/projects/:projectId", s.updateProject)
	g.DELETE("/projects/:projectId", s.deleteProject)
	g.POST("/projects/:projectId/archive", s.archiveProject)
	g.POST("/projects/:projectId/unarchive", s.unarchiveProject)
	g.POST("/projects/:projectId/toggle-archive", s.toggleArchive)
	g.POST("/projects/:projectId/sync-status", s.syncStatus)
	g.POST("/projects/:projectId/members/:userId", s.addMember)
	g.DELETE("/projects/:projectId/members/:userId", s.removeMember)
	g.POST("/projects/:projectId/invitations", s.inviteMember)
}

func (s *Server) listProjects(c echo.Context) (err error) {
	ctx := c.Request().Context()
	metrics, spanCtx := newProjectRequestMetrics(ctx, s.log)
	if spanCtx != nil {
		c.SetRequest(c.Request().WithContext(spanCtx))
		ctx = spanCtx
	}
	defer func() {
		status := c.Response().Status
		var serverErr error
		if err != nil {
			status, _ = httpError(err)
			if status >= http.StatusInternalServerError {
				serverErr = err
			}
		}
		metrics.Log(status, serverErr)
	}()

	fetchStart := time.Now()
	projects, fetchErr := s.views.Projects(ctx, sessionFrom(c))
	metrics.ObserveFetch(time.Since(fetchStart))
	if fetchErr != nil {
		metrics.SetErrorStage("upstream")
		return fetchErr
	}
	done := 0
	for _, p := range projects {
		if p.ViewStatus == domain.ProjectDone {
			done++
		}
	}
	metrics.SetProjectsReturned(len(projects), done)

	encodeStart := time.Now()
	err = c.JSON(http.StatusOK, projects)
	metrics.ObserveEncode(time.Since(encodeStart))
	if err != nil {
		metrics.SetErrorStage("encode_response")
	}
	return err
}

func (s *Server) getProject(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	p, err := s.views.Project(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, p, err)
}

func (s *Server) searchProjects(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("keyword"))
	if keyword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "keyword is required")
	}
	projects, err := s.views.SearchProjects(c.Request().Context(), sessionFrom(c), keyword)
	return respond(c, http.StatusOK, projects, err)
}

func (s *Server) projectsByStatus(c echo.Context) error {
	status := domain.ProjectStatus(strings.ToUpper(c.Param("status")))
	if status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	projects, err := s.views.ProjectsByStatus(c.Request().Context(), sessionFrom(c), status)
	return respond(c, http.StatusOK, projects, err)
}

func (s *Server) upcomingDeadlines(c echo.Context) error {
	days, err := intQuery(c, "days", 7)
	if err != nil {
		return err
	}
	projects, err := s.views.UpcomingDeadlines(c.Request().Context(), sessionFrom(c), days)
	return respond(c, http.StatusOK, projects, err)
}

func (s *Server) createProject(c echo.Context) error {
	var in domain.ProjectInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := s.views.CreateProject(c.Request().Context(), sessionFrom(c), in)
	return respond(c, http.StatusCreated, p, err)
}

func (s *Server) updateProject(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	var in domain.ProjectInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := s.views.UpdateProject(c.Request().Context(), sessionFrom(c), id, in)
	return respond(c, http.StatusOK, p, err)
}

func (s *Server) deleteProject(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	return noContent(c, s.views.DeleteProject(c.Request().Context(), sessionFrom(c), id))
}

func (s *Server) archiveProject(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	p, err := s.views.ArchiveProject(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, p, err)
}

func (s *Server) unarchiveProject(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	p, err := s.views.UnarchiveProject(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, p, err)
}

func (s *Server) toggleArchive(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	p, err := s.views.ToggleArchive(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, p, err)
}

type syncStatusResponse struct {
	Project domain.ProjectView `json:"project"`
	Changed bool               `json:"changed"`
}

func (s *Server) syncStatus(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	p, changed, err := s.views.SyncStatus(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, syncStatusResponse{Project: p, Changed: changed}, err)
}

func (s *Server) addMember(c echo.Context) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	p, err := s.views.AddMember(c.Request().Context(), sessionFrom(c), projectID, userID)
	return respond(c, http.StatusOK, p, err)
}

func (s *Server) removeMember(c echo.Context) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	return noContent(c, s.views.RemoveMember(c.Request().Context(), sessionFrom(c), projectID, userID))
}

func (s *Server) inviteMember(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	var in domain.MemberInvite
	if err := bind(c, &in); err != nil {
		return err
	}
	inv, err := s.views.InviteMember(c.Request().Context(), sessionFrom(c), id, in)
	return respond(c, http.StatusCreated, inv, err)
}
