package api

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// keepAliveInterval spaces the SSE comment lines written while the count is
// unchanged.
const keepAliveInterval = 15 * time.Second

// streamUnreadCount pushes the viewer's unread notification count as
// server-sent events for as long as the client stays connected.
func (s *Server) streamUnreadCount(c echo.Context) error {
	sess := sessionFrom(c)
	updates, cancel := s.hub.Subscribe(sess.Subject, func(ctx context.Context) (int64, error) {
		return s.views.RefreshUnreadCount(ctx, sess)
	})
	defer cancel()

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "stream unsupported")
	}
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := c.Request().Context()
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepAlive.C:
			if _, err := c.Response().Write([]byte(": keep-alive\n\n")); err != nil {
				return nil
			}
			flusher.Flush()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			data, err := sonic.Marshal(unreadCountResponse{Count: u.Count})
			if err != nil {
				return nil
			}
			if _, err := c.Response().Write([]byte("event: unread\ndata: ")); err != nil {
				return nil
			}
			if _, err := c.Response().Write(data); err != nil {
				return nil
			}
			if _, err := c.Response().Write([]byte("\n\n")); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}
