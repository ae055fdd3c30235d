package backend

import (
	"context"
	"io"
	"net/http"

	"taskboard/domain"
)

// ExportService covers /exports.
type ExportService service

func (s *ExportService) Project(ctx context.Context, projectID int64, in domain.ExportRequest) (domain.ExportJob, error) {
	return call[domain.ExportJob](ctx, s.r, http.MethodPost, pathf("/exports/project/%d", projectID), nil, in)
}

func (s *ExportService) UserData(ctx context.Context, format string) (domain.ExportJob, error) {
	return call[domain.ExportJob](ctx, s.r, http.MethodPost, "/exports/user-data", params("format", format), nil)
}

func (s *ExportService) Mine(ctx context.Context) ([]domain.ExportJob, error) {
	return get[[]domain.ExportJob](ctx, s.r, "/exports/my-exports", nil)
}

func (s *ExportService) Get(ctx context.Context, jobID int64) (domain.ExportJob, error) {
	return get[domain.ExportJob](ctx, s.r, pathf("/exports/%d", jobID), nil)
}

// Download streams a finished export. The caller must close the body.
func (s *ExportService) Download(ctx context.Context, jobID int64) (io.ReadCloser, string, error) {
	resp, err := s.r.send(ctx, request{method: http.MethodGet, path: pathf("/exports/%d/download", jobID)})
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (s *ExportService) Delete(ctx context.Context, jobID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/exports/%d", jobID), nil, nil)
}
