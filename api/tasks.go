package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"taskboard/domain"
)

func (s *Server) registerTasks(g *echo.Group) {
	g.GET("/tasks/mine", s.myTasks)
	g.GET("/processes/:processId/tasks", s.processTasks)

	g.GET("/projects/:projectId/tasks", s.listTasks)
	g.POST("/projects/:projectId/tasks", s.createTask)
	g.GET("/projects/:projectId/tasks/search", s.searchTasks)
	g.GET("/projects/:projectId/tasks/upcoming", s.upcomingTasks)
	g.GET("/projects/:projectId/tasks/overdue", s.overdueTasks)
	g.GET("/projects/:projectId/tasks/:taskId", s.getTask)
	g.PUT("/projects/:projectId/tasks/:taskId", s.updateTask)
	g.DELETE("/projects/:projectId/tasks/:taskId", s.deleteTask)
	g.PUT("/projects/:projectId/tasks/:taskId/move", s.moveTask)
	g.POST("/projects/:projectId/tasks/:taskId/assignees/:userId", s.assignTask)
	g.DELETE("/projects/:projectId/tasks/:taskId/assignees/:userId", s.unassignTask)
	g.GET("/projects/:projectId/tasks/:taskId/subtasks", s.listSubtasks)
	g.POST("/projects/:projectId/tasks/:taskId/subtasks", s.createSubtask)
	g.PUT("/projects/:projectId/tasks/:taskId/subtasks/:subtaskId", s.updateSubtask)

	g.GET("/projects/:projectId/processes", s.listProcesses)
	g.POST("/projects/:projectId/processes", s.createProcess)
	g.POST("/projects/:projectId/processes/defaults", s.createDefaultProcesses)
	g.PUT("/projects/:projectId/processes/:processId", s.updateProcess)
	g.PUT("/projects/:projectId/processes/:processId/position", s.reorderProcess)
	g.DELETE("/projects/:projectId/processes/:processId", s.deleteProcess)
}

// projectTask parses the project and task ids of a task route.
func projectTask(c echo.Context) (int64, int64, error) {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return 0, 0, err
	}
	taskID, err := idParam(c, "taskId")
	if err != nil {
		return 0, 0, err
	}
	return projectID, taskID, nil
}

func (s *Server) myTasks(c echo.Context) error {
	tasks, err := s.views.MyTasks(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, tasks, err)
}

func (s *Server) processTasks(c echo.Context) error {
	id, err := idParam(c, "processId")
	if err != nil {
		return err
	}
	tasks, err := s.views.ProcessTasks(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, tasks, err)
}

func (s *Server) listTasks(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	tasks, err := s.views.Tasks(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, tasks, err)
}

func (s *Server) searchTasks(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	keyword := strings.TrimSpace(c.QueryParam("keyword"))
	if keyword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "keyword is required")
	}
	tasks, err := s.views.SearchTasks(c.Request().Context(), sessionFrom(c), id, keyword)
	return respond(c, http.StatusOK, tasks, err)
}

func (s *Server) upcomingTasks(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	days, err := intQuery(c, "days", 7)
	if err != nil {
		return err
	}
	tasks, err := s.views.UpcomingTasks(c.Request().Context(), sessionFrom(c), id, days)
	return respond(c, http.StatusOK, tasks, err)
}

func (s *Server) overdueTasks(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	tasks, err := s.views.OverdueTasks(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, tasks, err)
}

func (s *Server) getTask(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	task, err := s.views.Task(c.Request().Context(), sessionFrom(c), projectID, taskID)
	return respond(c, http.StatusOK, task, err)
}

func (s *Server) createTask(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	var in domain.TaskInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if strings.TrimSpace(in.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	task, err := s.views.CreateTask(c.Request().Context(), sessionFrom(c), id, in)
	return respond(c, http.StatusCreated, task, err)
}

func (s *Server) updateTask(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	var in domain.TaskInput
	if err := bind(c, &in); err != nil {
		return err
	}
	task, err := s.views.UpdateTask(c.Request().Context(), sessionFrom(c), projectID, taskID, in)
	return respond(c, http.StatusOK, task, err)
}

func (s *Server) deleteTask(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	return noContent(c, s.views.DeleteTask(c.Request().Context(), sessionFrom(c), projectID, taskID))
}

func (s *Server) moveTask(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	var mv domain.TaskMove
	if err := bind(c, &mv); err != nil {
		return err
	}
	task, err := s.views.MoveTask(c.Request().Context(), sessionFrom(c), projectID, taskID, mv)
	return respond(c, http.StatusOK, task, err)
}

func (s *Server) assignTask(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	task, err := s.views.AssignTask(c.Request().Context(), sessionFrom(c), projectID, taskID, userID)
	return respond(c, http.StatusOK, task, err)
}

func (s *Server) unassignTask(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	task, err := s.views.UnassignTask(c.Request().Context(), sessionFrom(c), projectID, taskID, userID)
	return respond(c, http.StatusOK, task, err)
}

func (s *Server) listSubtasks(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	tasks, err := s.views.Subtasks(c.Request().Context(), sessionFrom(c), projectID, taskID)
	return respond(c, http.StatusOK, tasks, err)
}

func (s *Server) createSubtask(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	var in domain.TaskInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if strings.TrimSpace(in.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	task, err := s.views.CreateSubtask(c.Request().Context(), sessionFrom(c), projectID, taskID, in)
	return respond(c, http.StatusCreated, task, err)
}

func (s *Server) updateSubtask(c echo.Context) error {
	projectID, taskID, err := projectTask(c)
	if err != nil {
		return err
	}
	subtaskID, err := idParam(c, "subtaskId")
	if err != nil {
		return err
	}
	var in domain.TaskInput
	if err := bind(c, &in); err != nil {
		return err
	}
	task, err := s.views.UpdateSubtask(c.Request().Context(), sessionFrom(c), projectID, taskID, subtaskID, in)
	return respond(c, http.StatusOK, task, err)
}

func (s *Server) listProcesses(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	processes, err := s.views.Processes(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, processes, err)
}

func (s *Server) createProcess(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	var in domain.ProcessInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := s.views.CreateProcess(c.Request().Context(), sessionFrom(c), id, in)
	return respond(c, http.StatusCreated, p, err)
}

func (s *Server) createDefaultProcesses(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	processes, err := s.views.CreateDefaultProcesses(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusCreated, processes, err)
}

func (s *Server) updateProcess(c echo.Context) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	processID, err := idParam(c, "processId")
	if err != nil {
		return err
	}
	var in domain.ProcessInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := s.views.UpdateProcess(c.Request().Context(), sessionFrom(c), projectID, processID, in)
	return respond(c, http.StatusOK, p, err)
}

type positionRequest struct {
	Position *int `json:"position" validate:"required,min=0"`
}

func (s *Server) reorderProcess(c echo.Context) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	processID, err := idParam(c, "processId")
	if err != nil {
		return err
	}
	var in positionRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	processes, err := s.views.ReorderProcess(c.Request().Context(), sessionFrom(c), projectID, processID, *in.Position)
	return respond(c, http.StatusOK, processes, err)
}

func (s *Server) deleteProcess(c echo.Context) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	processID, err := idParam(c, "processId")
	if err != nil {
		return err
	}
	return noContent(c, s.views.DeleteProcess(c.Request().Context(), sessionFrom(c), projectID, processID))
}
