package backend

import (
	"context"
	"net/http"

	"taskboard/domain"
)

// CommentService covers /tasks/{id}/comments.
type CommentService service

func (s *CommentService) List(ctx context.Context, taskID int64) ([]domain.Comment, error) {
	return get[[]domain.Comment](ctx, s.r, pathf("/tasks/%d/comments", taskID), nil)
}

func (s *CommentService) Create(ctx context.Context, taskID int64, content string) (domain.Comment, error) {
	body := struct {
		Content string `json:"content"`
	}{content}
	return call[domain.Comment](ctx, s.r, http.MethodPost, pathf("/tasks/%d/comments", taskID), nil, body)
}

func (s *CommentService) Delete(ctx context.Context, taskID, commentID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/tasks/%d/comments/%d", taskID, commentID), nil, nil)
}
