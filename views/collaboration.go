package views

import (
	"context"
	"io"
	"strconv"

	"taskboard/backend"
	"taskboard/domain"
	"taskboard/query"
	"taskboard/session"
)

func (s *Service) Comments(ctx context.Context, sess *session.Session, taskID int64) ([]domain.Comment, error) {
	key := query.Key{Resource: query.Comments, Scope: query.Scope{TaskID: taskID}}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Comment, error) {
		return api.Comments.List(ctx, taskID)
	})
}

func (s *Service) AddComment(ctx context.Context, sess *session.Session, taskID int64, content string) (domain.Comment, error) {
	return mutate(ctx, s, sess, query.CommentCreate, query.Scope{TaskID: taskID}, func(ctx context.Context, api *backend.API) (domain.Comment, error) {
		return api.Comments.Create(ctx, taskID, content)
	})
}

func (s *Service) DeleteComment(ctx context.Context, sess *session.Session, taskID, commentID int64) error {
	return mutateErr(ctx, s, sess, query.CommentDelete, query.Scope{TaskID: taskID}, func(ctx context.Context, api *backend.API) error {
		return api.Comments.Delete(ctx, taskID, commentID)
	})
}

func (s *Service) Attachments(ctx context.Context, sess *session.Session, taskID int64) ([]domain.Attachment, error) {
	key := query.Key{Resource: query.Attachments, Scope: query.Scope{TaskID: taskID}}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Attachment, error) {
		return api.Attachments.List(ctx, taskID)
	})
}

// UploadAttachment forwards file to the upstream as a multipart upload.
func (s *Service) UploadAttachment(ctx context.Context, sess *session.Session, taskID int64, fileName string, file io.Reader, description string) (domain.Attachment, error) {
	return mutate(ctx, s, sess, query.AttachmentUpload, query.Scope{TaskID: taskID}, func(ctx context.Context, api *backend.API) (domain.Attachment, error) {
		return api.Attachments.Upload(ctx, taskID, fileName, file, description)
	})
}

func (s *Service) UpdateAttachment(ctx context.Context, sess *session.Session, taskID, attachmentID int64, description string) (domain.Attachment, error) {
	return mutate(ctx, s, sess, query.AttachmentUpdate, query.Scope{TaskID: taskID}, func(ctx context.Context, api *backend.API) (domain.Attachment, error) {
		return api.Attachments.Update(ctx, taskID, attachmentID, description)
	})
}

func (s *Service) DeleteAttachment(ctx context.Context, sess *session.Session, taskID, attachmentID int64) error {
	return mutateErr(ctx, s, sess, query.AttachmentDelete, query.Scope{TaskID: taskID}, func(ctx context.Context, api *backend.API) error {
		return api.Attachments.Delete(ctx, taskID, attachmentID)
	})
}

// Download is the body and content type of a streamed file.
type Download struct {
	Body        io.ReadCloser
	ContentType string
}

// DownloadAttachment streams an attachment. The caller closes Body.
func (s *Service) DownloadAttachment(ctx context.Context, sess *session.Session, attachmentID int64) (Download, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) (Download, error) {
		body, contentType, err := api.Attachments.Download(ctx, attachmentID)
		return Download{Body: body, ContentType: contentType}, err
	})
}

func (s *Service) ChatMessages(ctx context.Context, sess *session.Session, projectID int64) ([]domain.ChatMessage, error) {
	key := query.Key{Resource: query.Chat, Scope: projectScope(projectID)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.ChatMessage, error) {
		return api.Chat.List(ctx, projectID)
	})
}

func (s *Service) RecentChatMessages(ctx context.Context, sess *session.Session, projectID int64, limit int) ([]domain.ChatMessage, error) {
	key := query.Key{Resource: query.Chat, Scope: projectScope(projectID), Variant: "recent=" + strconv.Itoa(limit)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.ChatMessage, error) {
		return api.Chat.Recent(ctx, projectID, limit)
	})
}

func (s *Service) ChatReplies(ctx context.Context, sess *session.Session, projectID, messageID int64) ([]domain.ChatMessage, error) {
	key := query.Key{Resource: query.Chat, Scope: projectScope(projectID), Variant: "replies=" + strconv.FormatInt(messageID, 10)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.ChatMessage, error) {
		return api.Chat.Replies(ctx, projectID, messageID)
	})
}

func (s *Service) PinnedMessages(ctx context.Context, sess *session.Session, projectID int64) ([]domain.ChatMessage, error) {
	key := query.Key{Resource: query.PinnedMessages, Scope: projectScope(projectID)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.ChatMessage, error) {
		return api.Chat.Pinned(ctx, projectID)
	})
}

func (s *Service) SearchChat(ctx context.Context, sess *session.Session, projectID int64, q string) ([]domain.ChatMessage, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) ([]domain.ChatMessage, error) {
		return api.Chat.Search(ctx, projectID, q)
	})
}

func (s *Service) SendChatMessage(ctx context.Context, sess *session.Session, projectID int64, in domain.ChatMessageInput) (domain.ChatMessage, error) {
	return mutate(ctx, s, sess, query.ChatSend, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.ChatMessage, error) {
		return api.Chat.Send(ctx, projectID, in)
	})
}

func (s *Service) React(ctx context.Context, sess *session.Session, projectID, messageID int64, emoji string) (domain.ChatMessage, error) {
	return mutate(ctx, s, sess, query.ChatReact, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.ChatMessage, error) {
		return api.Chat.React(ctx, projectID, messageID, emoji)
	})
}

func (s *Service) Unreact(ctx context.Context, sess *session.Session, projectID, messageID int64, emoji string) (domain.ChatMessage, error) {
	return mutate(ctx, s, sess, query.ChatUnreact, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.ChatMessage, error) {
		return api.Chat.Unreact(ctx, projectID, messageID, emoji)
	})
}

func (s *Service) PinMessage(ctx context.Context, sess *session.Session, projectID, messageID int64) (domain.ChatMessage, error) {
	return mutate(ctx, s, sess, query.ChatPin, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.ChatMessage, error) {
		return api.Chat.Pin(ctx, projectID, messageID)
	})
}

func (s *Service) UnpinMessage(ctx context.Context, sess *session.Session, projectID, messageID int64) (domain.ChatMessage, error) {
	return mutate(ctx, s, sess, query.ChatUnpin, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.ChatMessage, error) {
		return api.Chat.Unpin(ctx, projectID, messageID)
	})
}

func (s *Service) Conversation(ctx context.Context, sess *session.Session, peerID int64) ([]domain.DirectMessage, error) {
	key := query.Key{Resource: query.DirectMessages, Scope: query.Scope{PeerID: peerID}}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.DirectMessage, error) {
		return api.DirectMessages.Conversation(ctx, peerID)
	})
}

func (s *Service) Conversations(ctx context.Context, sess *session.Session) ([]domain.DirectMessage, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Conversations}, func(ctx context.Context, api *backend.API) ([]domain.DirectMessage, error) {
		return api.DirectMessages.Conversations(ctx)
	})
}

func (s *Service) SendDirectMessage(ctx context.Context, sess *session.Session, in domain.DirectMessageInput) (domain.DirectMessage, error) {
	return mutate(ctx, s, sess, query.DirectMessageSend, query.Scope{PeerID: in.RecipientID}, func(ctx context.Context, api *backend.API) (domain.DirectMessage, error) {
		return api.DirectMessages.Send(ctx, in)
	})
}
