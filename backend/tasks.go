package backend

import (
	"context"
	"net/http"
	"strconv"

	"taskboard/domain"
)

// TaskService covers /projects/{id}/tasks and the task-scoped shortcuts.
type TaskService service

func (s *TaskService) ListByProject(ctx context.Context, projectID int64) ([]domain.Task, error) {
	return get[[]domain.Task](ctx, s.r, pathf("/projects/%d/tasks", projectID), nil)
}

func (s *TaskService) ListByProcess(ctx context.Context, processID int64) ([]domain.Task, error) {
	return get[[]domain.Task](ctx, s.r, pathf("/processes/%d/tasks", processID), nil)
}

func (s *TaskService) Get(ctx context.Context, projectID, taskID int64) (domain.Task, error) {
	return get[domain.Task](ctx, s.r, pathf("/projects/%d/tasks/%d", projectID, taskID), nil)
}

func (s *TaskService) Create(ctx context.Context, projectID int64, in domain.TaskInput) (domain.Task, error) {
	return call[domain.Task](ctx, s.r, http.MethodPost, pathf("/projects/%d/tasks", projectID), nil, in)
}

func (s *TaskService) Update(ctx context.Context, projectID, taskID int64, in domain.TaskInput) (domain.Task, error) {
	return call[domain.Task](ctx, s.r, http.MethodPut, pathf("/projects/%d/tasks/%d", projectID, taskID), nil, in)
}

func (s *TaskService) Move(ctx context.Context, projectID, taskID int64, mv domain.TaskMove) (domain.Task, error) {
	return call[domain.Task](ctx, s.r, http.MethodPost, pathf("/projects/%d/tasks/%d/move", projectID, taskID), nil, mv)
}

func (s *TaskService) Assign(ctx context.Context, projectID, taskID, userID int64) (domain.Task, error) {
	return call[domain.Task](ctx, s.r, http.MethodPost, pathf("/projects/%d/tasks/%d/assignees/%d", projectID, taskID, userID), nil, nil)
}

func (s *TaskService) Unassign(ctx context.Context, projectID, taskID, userID int64) (domain.Task, error) {
	return call[domain.Task](ctx, s.r, http.MethodDelete, pathf("/projects/%d/tasks/%d/assignees/%d", projectID, taskID, userID), nil, nil)
}

func (s *TaskService) Subtasks(ctx context.Context, projectID, taskID int64) ([]domain.Task, error) {
	return get[[]domain.Task](ctx, s.r, pathf("/projects/%d/tasks/%d/subtasks", projectID, taskID), nil)
}

func (s *TaskService) Search(ctx context.Context, projectID int64, keyword string) ([]domain.Task, error) {
	return get[[]domain.Task](ctx, s.r, pathf("/projects/%d/tasks/search", projectID), params("keyword", keyword))
}

func (s *TaskService) Upcoming(ctx context.Context, projectID int64, days int) ([]domain.Task, error) {
	if days <= 0 {
		days = 7
	}
	return get[[]domain.Task](ctx, s.r, pathf("/projects/%d/tasks/upcoming", projectID), params("days", strconv.Itoa(days)))
}

func (s *TaskService) Overdue(ctx context.Context, projectID int64) ([]domain.Task, error) {
	return get[[]domain.Task](ctx, s.r, pathf("/projects/%d/tasks/overdue", projectID), nil)
}

func (s *TaskService) Delete(ctx context.Context, projectID, taskID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/projects/%d/tasks/%d", projectID, taskID), nil, nil)
}

// Mine lists the tasks assigned to the token's owner across projects.
func (s *TaskService) Mine(ctx context.Context) ([]domain.Task, error) {
	return get[[]domain.Task](ctx, s.r, "/tasks/my-tasks", nil)
}
