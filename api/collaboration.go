package api

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"taskboard/domain"
)

func (s *Server) registerCollaboration(g *echo.Group) {
	g.GET("/tasks/:taskId/comments", s.listComments)
	g.POST("/tasks/:taskId/comments", s.addComment)
	g.DELETE("/tasks/:taskId/comments/:commentId", s.deleteComment)

	g.GET("/tasks/:taskId/attachments", s.listAttachments)
	g.POST("/tasks/:taskId/attachments", s.uploadAttachment)
	g.PUT("/tasks/:taskId/attachments/:attachmentId", s.updateAttachment)
	g.DELETE("/tasks/:taskId/attachments/:attachmentId", s.deleteAttachment)
	g.GET("/attachments/:attachmentId/download", s.downloadAttachment)

	g.GET("/projects/:projectId/chat", s.listChat)
	g.POST("/projects/:projectId/chat", s.sendChat)
	g.GET("/projects/:projectId/chat/recent", s.recentChat)
	g.GET("/projects/:projectId/chat/pinned", s.pinnedChat)
	g.GET("/projects/:projectId/chat/search", s.searchChat)
	g.GET("/projects/:projectId/chat/:messageId/replies", s.chatReplies)
	g.POST("/projects/:projectId/chat/:messageId/reactions", s.react)
	g.DELETE("/projects/:projectId/chat/:messageId/reactions/:emoji", s.unreact)
	g.POST("/projects/:projectId/chat/:messageId/pin", s.pinMessage)
	g.DELETE("/projects/:projectId/chat/:messageId/pin", s.unpinMessage)

	g.GET("/direct-messages/conversations", s.conversations)
	g.GET("/direct-messages/:userId", s.conversation)
	g.POST("/direct-messages", s.sendDirectMessage)
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (s *Server) listComments(c echo.Context) error {
	id, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	comments, err := s.views.Comments(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, comments, err)
}

func (s *Server) addComment(c echo.Context) error {
	id, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	var in commentRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	comment, err := s.views.AddComment(c.Request().Context(), sessionFrom(c), id, in.Content)
	return respond(c, http.StatusCreated, comment, err)
}

func (s *Server) deleteComment(c echo.Context) error {
	taskID, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	commentID, err := idParam(c, "commentId")
	if err != nil {
		return err
	}
	return noContent(c, s.views.DeleteComment(c.Request().Context(), sessionFrom(c), taskID, commentID))
}

func (s *Server) listAttachments(c echo.Context) error {
	id, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	attachments, err := s.views.Attachments(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, attachments, err)
}

func (s *Server) uploadAttachment(c echo.Context) error {
	id, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer f.Close()
	a, err := s.views.UploadAttachment(c.Request().Context(), sessionFrom(c), id, fh.Filename, f, c.FormValue("description"))
	return respond(c, http.StatusCreated, a, err)
}

type descriptionRequest struct {
	Description string `json:"description"`
}

func (s *Server) updateAttachment(c echo.Context) error {
	taskID, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	attachmentID, err := idParam(c, "attachmentId")
	if err != nil {
		return err
	}
	var in descriptionRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	a, err := s.views.UpdateAttachment(c.Request().Context(), sessionFrom(c), taskID, attachmentID, in.Description)
	return respond(c, http.StatusOK, a, err)
}

func (s *Server) deleteAttachment(c echo.Context) error {
	taskID, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	attachmentID, err := idParam(c, "attachmentId")
	if err != nil {
		return err
	}
	return noContent(c, s.views.DeleteAttachment(c.Request().Context(), sessionFrom(c), taskID, attachmentID))
}

func (s *Server) downloadAttachment(c echo.Context) error {
	id, err := idParam(c, "attachmentId")
	if err != nil {
		return err
	}
	d, err := s.views.DownloadAttachment(c.Request().Context(), sessionFrom(c), id)
	if err != nil {
		return err
	}
	return stream(c, d.ContentType, d.Body)
}

// stream copies body to the response and closes it.
func stream(c echo.Context, contentType string, body io.ReadCloser) error {
	defer body.Close()
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, body)
}

func (s *Server) listChat(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	msgs, err := s.views.ChatMessages(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, msgs, err)
}

func (s *Server) recentChat(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return err
	}
	msgs, err := s.views.RecentChatMessages(c.Request().Context(), sessionFrom(c), id, limit)
	return respond(c, http.StatusOK, msgs, err)
}

func (s *Server) pinnedChat(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	msgs, err := s.views.PinnedMessages(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, msgs, err)
}

func (s *Server) searchChat(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	msgs, err := s.views.SearchChat(c.Request().Context(), sessionFrom(c), id, q)
	return respond(c, http.StatusOK, msgs, err)
}

func (s *Server) sendChat(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	var in domain.ChatMessageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	msg, err := s.views.SendChatMessage(c.Request().Context(), sessionFrom(c), id, in)
	return respond(c, http.StatusCreated, msg, err)
}

// projectMessage parses the project and message ids of a chat route.
func projectMessage(c echo.Context) (int64, int64, error) {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return 0, 0, err
	}
	messageID, err := idParam(c, "messageId")
	if err != nil {
		return 0, 0, err
	}
	return projectID, messageID, nil
}

func (s *Server) chatReplies(c echo.Context) error {
	projectID, messageID, err := projectMessage(c)
	if err != nil {
		return err
	}
	msgs, err := s.views.ChatReplies(c.Request().Context(), sessionFrom(c), projectID, messageID)
	return respond(c, http.StatusOK, msgs, err)
}

type reactionRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

func (s *Server) react(c echo.Context) error {
	projectID, messageID, err := projectMessage(c)
	if err != nil {
		return err
	}
	var in reactionRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	msg, err := s.views.React(c.Request().Context(), sessionFrom(c), projectID, messageID, in.Emoji)
	return respond(c, http.StatusOK, msg, err)
}

func (s *Server) unreact(c echo.Context) error {
	projectID, messageID, err := projectMessage(c)
	if err != nil {
		return err
	}
	emoji, err := url.PathUnescape(c.Param("emoji"))
	if err != nil || emoji == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "emoji is required")
	}
	msg, err := s.views.Unreact(c.Request().Context(), sessionFrom(c), projectID, messageID, emoji)
	return respond(c, http.StatusOK, msg, err)
}

func (s *Server) pinMessage(c echo.Context) error {
	projectID, messageID, err := projectMessage(c)
	if err != nil {
		return err
	}
	msg, err := s.views.PinMessage(c.Request().Context(), sessionFrom(c), projectID, messageID)
	return respond(c, http.StatusOK, msg, err)
}

func (s *Server) unpinMessage(c echo.Context) error {
	projectID, messageID, err := projectMessage(c)
	if err != nil {
		return err
	}
	msg, err := s.views.UnpinMessage(c.Request().Context(), sessionFrom(c), projectID, messageID)
	return respond(c, http.StatusOK, msg, err)
}

func (s *Server) conversations(c echo.Context) error {
	msgs, err := s.views.Conversations(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, msgs, err)
}

func (s *Server) conversation(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	msgs, err := s.views.Conversation(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, msgs, err)
}

func (s *Server) sendDirectMessage(c echo.Context) error {
	var in domain.DirectMessageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	msg, err := s.views.SendDirectMessage(c.Request().Context(), sessionFrom(c), in)
	return respond(c, http.StatusCreated, msg, err)
}
