package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"taskboard/domain"
)

// AttachmentService covers /tasks/{id}/attachments.
type AttachmentService service

func (s *AttachmentService) List(ctx context.Context, taskID int64) ([]domain.Attachment, error) {
	return get[[]domain.Attachment](ctx, s.r, pathf("/tasks/%d/attachments", taskID), nil)
}

// Upload sends file as the multipart "file" part together with its
// description.
func (s *AttachmentService) Upload(ctx context.Context, taskID int64, fileName string, file io.Reader, description string) (domain.Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return domain.Attachment{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return domain.Attachment{}, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.WriteField("description", description); err != nil {
		return domain.Attachment{}, err
	}
	if err := mw.Close(); err != nil {
		return domain.Attachment{}, err
	}

	var out domain.Attachment
	err = s.r.do(ctx, request{
		method:      http.MethodPost,
		path:        pathf("/tasks/%d/attachments", taskID),
		raw:         &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	return out, err
}

func (s *AttachmentService) Update(ctx context.Context, taskID, attachmentID int64, description string) (domain.Attachment, error) {
	return call[domain.Attachment](ctx, s.r, http.MethodPut, pathf("/tasks/%d/attachments/%d", taskID, attachmentID), params("description", description), nil)
}

// Download streams the stored file. The caller must close the body.
func (s *AttachmentService) Download(ctx context.Context, attachmentID int64) (io.ReadCloser, string, error) {
	resp, err := s.r.send(ctx, request{method: http.MethodGet, path: pathf("/attachments/%d/download", attachmentID)})
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (s *AttachmentService) Delete(ctx context.Context, taskID, attachmentID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/tasks/%d/attachments/%d", taskID, attachmentID), nil, nil)
}
