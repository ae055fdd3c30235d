package backend

import (
	"context"
	"net/http"

	"taskboard/domain"
)

// ProcessService covers /projects/{id}/processes, the Kanban columns.
type ProcessService service

func (s *ProcessService) List(ctx context.Context, projectID int64) ([]domain.Process, error) {
	return get[[]domain.Process](ctx, s.r, pathf("/projects/%d/processes", projectID), nil)
}

func (s *ProcessService) Create(ctx context.Context, projectID int64, in domain.ProcessInput) (domain.Process, error) {
	return call[domain.Process](ctx, s.r, http.MethodPost, pathf("/projects/%d/processes", projectID), nil, in)
}

func (s *ProcessService) Update(ctx context.Context, projectID, processID int64, in domain.ProcessInput) (domain.Process, error) {
	return call[domain.Process](ctx, s.r, http.MethodPut, pathf("/projects/%d/processes/%d", projectID, processID), nil, in)
}

func (s *ProcessService) Reorder(ctx context.Context, projectID, processID int64, newPosition int) ([]domain.Process, error) {
	body := struct {
		NewPosition int `json:"newPosition"`
	}{newPosition}
	return call[[]domain.Process](ctx, s.r, http.MethodPost, pathf("/projects/%d/processes/%d/reorder", projectID, processID), nil, body)
}

func (s *ProcessService) Delete(ctx context.Context, projectID, processID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/projects/%d/processes/%d", projectID, processID), nil, nil)
}

// CreateDefaults seeds the standard columns of a new project.
func (s *ProcessService) CreateDefaults(ctx context.Context, projectID int64) ([]domain.Process, error) {
	return call[[]domain.Process](ctx, s.r, http.MethodPost, pathf("/projects/%d/processes/defaults", projectID), nil, nil)
}
