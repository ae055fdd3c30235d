package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"taskboard/domain"
)

// ChatService covers /projects/{id}/chat/messages.
type ChatService service

func chatPath(projectID int64) string {
	return pathf("/projects/%d/chat/messages", projectID)
}

func (s *ChatService) Send(ctx context.Context, projectID int64, in domain.ChatMessageInput) (domain.ChatMessage, error) {
	return call[domain.ChatMessage](ctx, s.r, http.MethodPost, chatPath(projectID), nil, in)
}

func (s *ChatService) List(ctx context.Context, projectID int64) ([]domain.ChatMessage, error) {
	return get[[]domain.ChatMessage](ctx, s.r, chatPath(projectID), nil)
}

func (s *ChatService) Recent(ctx context.Context, projectID int64, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	return get[[]domain.ChatMessage](ctx, s.r, chatPath(projectID)+"/recent", params("limit", strconv.Itoa(limit)))
}

func (s *ChatService) Replies(ctx context.Context, projectID, messageID int64) ([]domain.ChatMessage, error) {
	return get[[]domain.ChatMessage](ctx, s.r, pathf("%s/%d/replies", chatPath(projectID), messageID), nil)
}

func (s *ChatService) React(ctx context.Context, projectID, messageID int64, emoji string) (domain.ChatMessage, error) {
	body := struct {
		Emoji string `json:"emoji"`
	}{emoji}
	return call[domain.ChatMessage](ctx, s.r, http.MethodPost, pathf("%s/%d/reactions", chatPath(projectID), messageID), nil, body)
}

func (s *ChatService) Unreact(ctx context.Context, projectID, messageID int64, emoji string) (domain.ChatMessage, error) {
	return call[domain.ChatMessage](ctx, s.r, http.MethodDelete, pathf("%s/%d/reactions/%s", chatPath(projectID), messageID, url.PathEscape(emoji)), nil, nil)
}

func (s *ChatService) Pin(ctx context.Context, projectID, messageID int64) (domain.ChatMessage, error) {
	return call[domain.ChatMessage](ctx, s.r, http.MethodPut, pathf("%s/%d/pin", chatPath(projectID), messageID), nil, nil)
}

func (s *ChatService) Unpin(ctx context.Context, projectID, messageID int64) (domain.ChatMessage, error) {
	return call[domain.ChatMessage](ctx, s.r, http.MethodDelete, pathf("%s/%d/pin", chatPath(projectID), messageID), nil, nil)
}

func (s *ChatService) Pinned(ctx context.Context, projectID int64) ([]domain.ChatMessage, error) {
	return get[[]domain.ChatMessage](ctx, s.r, chatPath(projectID)+"/pinned", nil)
}

func (s *ChatService) Search(ctx context.Context, projectID int64, query string) ([]domain.ChatMessage, error) {
	return get[[]domain.ChatMessage](ctx, s.r, chatPath(projectID)+"/search", params("query", query))
}

// DirectMessageService covers /direct-messages.
type DirectMessageService service

// Conversation returns the messages exchanged with peerID.
func (s *DirectMessageService) Conversation(ctx context.Context, peerID int64) ([]domain.DirectMessage, error) {
	return get[[]domain.DirectMessage](ctx, s.r, pathf("/direct-messages/conversation/%d", peerID), nil)
}

// Conversations lists the latest message of each conversation.
func (s *DirectMessageService) Conversations(ctx context.Context) ([]domain.DirectMessage, error) {
	return get[[]domain.DirectMessage](ctx, s.r, "/direct-messages/conversations", nil)
}

func (s *DirectMessageService) Send(ctx context.Context, in domain.DirectMessageInput) (domain.DirectMessage, error) {
	return call[domain.DirectMessage](ctx, s.r, http.MethodPost, "/direct-messages", nil, in)
}
