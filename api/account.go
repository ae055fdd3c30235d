package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"taskboard/domain"
)

func (s *Server) registerAccount(g *echo.Group) {
	g.GET("/notifications", s.listNotifications)
	g.GET("/notifications/unread/count", s.unreadCount)
	g.GET("/notifications/unread/stream", s.streamUnreadCount)
	g.PUT("/notifications/read-all", s.markAllRead)
	g.PUT("/notifications/:notificationId/read", s.markRead)
	g.PUT("/notifications/:notificationId/archive", s.archiveNotification)
	g.DELETE("/notifications/:notificationId", s.deleteNotification)
	g.GET("/notifications/settings", s.notificationSettings)
	g.PUT("/notifications/settings", s.updateNotificationSettings)
	g.POST("/notifications/settings/reset", s.resetNotificationSettings)

	g.GET("/invitations", s.pendingInvitations)
	g.POST("/invitations/:invitationId/respond", s.respondInvitation)

	g.GET("/subscription", s.subscription)
	g.POST("/subscription", s.subscribe)
	g.GET("/subscription/usage", s.subscriptionUsage)
	g.PUT("/subscription/plan", s.changePlan)
	g.POST("/subscription/cancel", s.cancelSubscription)
	g.POST("/subscription/reactivate", s.reactivateSubscription)
	g.GET("/plans", s.plans)
	g.GET("/plans/popular", s.popularPlans)
	g.GET("/plans/:planId", s.plan)
	g.GET("/reports/subscriptions/dashboard", s.subscriptionDashboard)
	g.GET("/reports/subscriptions/growth", s.subscriptionGrowth)

	g.GET("/reminders", s.reminders)
	g.POST("/reminders", s.createReminder)
	g.GET("/reminders/today", s.todayReminders)
	g.PUT("/reminders/:reminderId/snooze", s.snoozeReminder)
	g.PUT("/reminders/:reminderId/dismiss", s.dismissReminder)
	g.DELETE("/reminders/:reminderId", s.deleteReminder)
	g.POST("/tasks/:taskId/reminders", s.remindForTask)

	g.GET("/users", s.users)
	g.GET("/users/search", s.searchUsers)
	g.GET("/users/:userId", s.user)
	g.PUT("/users/:userId", s.updateUser)
	g.PUT("/users/:userId/password", s.changePassword)
	g.PUT("/users/:userId/roles", s.assignRoles)
	g.PUT("/users/:userId/activate", s.activateUser)
	g.DELETE("/users/:userId", s.deleteUser)

	g.GET("/projects/:projectId/activity", s.activity)
	g.GET("/projects/:projectId/activity/timeline", s.activityTimeline)
	g.GET("/projects/:projectId/activity/stats", s.activityStats)
	g.GET("/projects/:projectId/activity/users/:userId", s.userActivity)

	g.GET("/exports", s.exports)
	g.POST("/exports/user-data", s.exportUserData)
	g.GET("/exports/:jobId", s.exportStatus)
	g.GET("/exports/:jobId/download", s.downloadExport)
	g.DELETE("/exports/:jobId", s.cancelExport)
	g.POST("/projects/:projectId/exports", s.exportProject)
}

func (s *Server) listNotifications(c echo.Context) error {
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))
	list, err := s.views.Notifications(c.Request().Context(), sessionFrom(c), unreadOnly)
	return respond(c, http.StatusOK, list, err)
}

type unreadCountResponse struct {
	Count int64 `json:"count"`
}

func (s *Server) unreadCount(c echo.Context) error {
	n, err := s.views.UnreadCount(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, unreadCountResponse{Count: n}, err)
}

func (s *Server) markRead(c echo.Context) error {
	id, err := idParam(c, "notificationId")
	if err != nil {
		return err
	}
	if err := s.views.MarkNotificationRead(c.Request().Context(), sessionFrom(c), id); err != nil {
		return err
	}
	s.nudge(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) markAllRead(c echo.Context) error {
	if err := s.views.MarkAllNotificationsRead(c.Request().Context(), sessionFrom(c)); err != nil {
		return err
	}
	s.nudge(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) archiveNotification(c echo.Context) error {
	id, err := idParam(c, "notificationId")
	if err != nil {
		return err
	}
	if err := s.views.ArchiveNotification(c.Request().Context(), sessionFrom(c), id); err != nil {
		return err
	}
	s.nudge(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteNotification(c echo.Context) error {
	id, err := idParam(c, "notificationId")
	if err != nil {
		return err
	}
	if err := s.views.DeleteNotification(c.Request().Context(), sessionFrom(c), id); err != nil {
		return err
	}
	s.nudge(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) notificationSettings(c echo.Context) error {
	settings, err := s.views.NotificationSettings(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, settings, err)
}

func (s *Server) updateNotificationSettings(c echo.Context) error {
	var in domain.NotificationSettings
	if err := bind(c, &in); err != nil {
		return err
	}
	settings, err := s.views.UpdateNotificationSettings(c.Request().Context(), sessionFrom(c), in)
	return respond(c, http.StatusOK, settings, err)
}

func (s *Server) resetNotificationSettings(c echo.Context) error {
	settings, err := s.views.ResetNotificationSettings(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, settings, err)
}

func (s *Server) pendingInvitations(c echo.Context) error {
	list, err := s.views.PendingInvitations(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) respondInvitation(c echo.Context) error {
	id, err := idParam(c, "invitationId")
	if err != nil {
		return err
	}
	var reply domain.InvitationReply
	if err := bind(c, &reply); err != nil {
		return err
	}
	inv, err := s.views.RespondInvitation(c.Request().Context(), sessionFrom(c), id, reply)
	if err != nil {
		return err
	}
	s.nudge(c)
	return c.JSON(http.StatusOK, inv)
}

func (s *Server) subscription(c echo.Context) error {
	sub, err := s.views.Subscription(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, sub, err)
}

func (s *Server) subscriptionUsage(c echo.Context) error {
	usage, err := s.views.SubscriptionUsage(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, usage, err)
}

func (s *Server) subscribe(c echo.Context) error {
	var in domain.SubscriptionRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	sub, err := s.views.Subscribe(c.Request().Context(), sessionFrom(c), in)
	return respond(c, http.StatusCreated, sub, err)
}

func (s *Server) changePlan(c echo.Context) error {
	var in domain.SubscriptionRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	sub, err := s.views.ChangePlan(c.Request().Context(), sessionFrom(c), in)
	return respond(c, http.StatusOK, sub, err)
}

func (s *Server) cancelSubscription(c echo.Context) error {
	var in domain.CancelRequest
	// The body is optional.
	if c.Request().ContentLength != 0 {
		if err := bind(c, &in); err != nil {
			return err
		}
	}
	sub, err := s.views.CancelSubscription(c.Request().Context(), sessionFrom(c), in)
	return respond(c, http.StatusOK, sub, err)
}

func (s *Server) reactivateSubscription(c echo.Context) error {
	sub, err := s.views.ReactivateSubscription(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, sub, err)
}

func (s *Server) plans(c echo.Context) error {
	list, err := s.views.Plans(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) popularPlans(c echo.Context) error {
	list, err := s.views.PopularPlans(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) plan(c echo.Context) error {
	id, err := idParam(c, "planId")
	if err != nil {
		return err
	}
	p, err := s.views.Plan(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, p, err)
}

func (s *Server) subscriptionDashboard(c echo.Context) error {
	report, err := s.views.SubscriptionDashboard(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, report, err)
}

func (s *Server) subscriptionGrowth(c echo.Context) error {
	start, end := c.QueryParam("startDate"), c.QueryParam("endDate")
	if start == "" || end == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "startDate and endDate are required")
	}
	report, err := s.views.SubscriptionGrowth(c.Request().Context(), sessionFrom(c), start, end)
	return respond(c, http.StatusOK, report, err)
}

func (s *Server) reminders(c echo.Context) error {
	list, err := s.views.Reminders(c.Request().Context(), sessionFrom(c), strings.ToUpper(c.QueryParam("status")))
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) todayReminders(c echo.Context) error {
	list, err := s.views.TodayReminders(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) createReminder(c echo.Context) error {
	var in domain.ReminderInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := s.views.CreateReminder(c.Request().Context(), sessionFrom(c), in)
	return respond(c, http.StatusCreated, r, err)
}

func (s *Server) remindForTask(c echo.Context) error {
	id, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	advance, err := intQuery(c, "advanceMinutes", 30)
	if err != nil {
		return err
	}
	r, err := s.views.RemindForTask(c.Request().Context(), sessionFrom(c), id, advance)
	return respond(c, http.StatusCreated, r, err)
}

func (s *Server) snoozeReminder(c echo.Context) error {
	id, err := idParam(c, "reminderId")
	if err != nil {
		return err
	}
	minutes, err := intQuery(c, "minutes", 10)
	if err != nil {
		return err
	}
	r, err := s.views.SnoozeReminder(c.Request().Context(), sessionFrom(c), id, minutes)
	return respond(c, http.StatusOK, r, err)
}

func (s *Server) dismissReminder(c echo.Context) error {
	id, err := idParam(c, "reminderId")
	if err != nil {
		return err
	}
	r, err := s.views.DismissReminder(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, r, err)
}

func (s *Server) deleteReminder(c echo.Context) error {
	id, err := idParam(c, "reminderId")
	if err != nil {
		return err
	}
	return noContent(c, s.views.DeleteReminder(c.Request().Context(), sessionFrom(c), id))
}

func (s *Server) users(c echo.Context) error {
	list, err := s.views.Users(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) searchUsers(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("keyword"))
	if keyword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "keyword is required")
	}
	list, err := s.views.SearchUsers(c.Request().Context(), sessionFrom(c), keyword)
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) user(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	u, err := s.views.User(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, u, err)
}

func (s *Server) updateUser(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	var in domain.UserUpdate
	if err := bind(c, &in); err != nil {
		return err
	}
	u, err := s.views.UpdateUser(c.Request().Context(), sessionFrom(c), id, in)
	return respond(c, http.StatusOK, u, err)
}

func (s *Server) changePassword(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	var in domain.PasswordChange
	if err := bind(c, &in); err != nil {
		return err
	}
	return noContent(c, s.views.ChangePassword(c.Request().Context(), sessionFrom(c), id, in))
}

type rolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}

func (s *Server) assignRoles(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	var in rolesRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	u, err := s.views.AssignRoles(c.Request().Context(), sessionFrom(c), id, in.Roles)
	return respond(c, http.StatusOK, u, err)
}

func (s *Server) activateUser(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	u, err := s.views.ActivateUser(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, u, err)
}

func (s *Server) deleteUser(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	return noContent(c, s.views.DeleteUser(c.Request().Context(), sessionFrom(c), id))
}

func (s *Server) activity(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	list, err := s.views.Activity(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) activityTimeline(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	list, err := s.views.ActivityTimeline(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) activityStats(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	report, err := s.views.ActivityStats(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, report, err)
}

func (s *Server) userActivity(c echo.Context) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	list, err := s.views.UserActivity(c.Request().Context(), sessionFrom(c), projectID, userID)
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) exports(c echo.Context) error {
	list, err := s.views.Exports(c.Request().Context(), sessionFrom(c))
	return respond(c, http.StatusOK, list, err)
}

func (s *Server) exportStatus(c echo.Context) error {
	id, err := idParam(c, "jobId")
	if err != nil {
		return err
	}
	job, err := s.views.ExportStatus(c.Request().Context(), sessionFrom(c), id)
	return respond(c, http.StatusOK, job, err)
}

func (s *Server) exportProject(c echo.Context) error {
	id, err := idParam(c, "projectId")
	if err != nil {
		return err
	}
	var in domain.ExportRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	job, err := s.views.ExportProject(c.Request().Context(), sessionFrom(c), id, in)
	return respond(c, http.StatusAccepted, job, err)
}

func (s *Server) exportUserData(c echo.Context) error {
	format := strings.ToUpper(c.QueryParam("format"))
	if format == "" {
		format = "JSON"
	}
	job, err := s.views.ExportUserData(c.Request().Context(), sessionFrom(c), format)
	return respond(c, http.StatusAccepted, job, err)
}

func (s *Server) downloadExport(c echo.Context) error {
	id, err := idParam(c, "jobId")
	if err != nil {
		return err
	}
	d, err := s.views.DownloadExport(c.Request().Context(), sessionFrom(c), id)
	if err != nil {
		return err
	}
	return stream(c, d.ContentType, d.Body)
}

func (s *Server) cancelExport(c echo.Context) error {
	id, err := idParam(c, "jobId")
	if err != nil {
		return err
	}
	return noContent(c, s.views.CancelExport(c.Request().Context(), sessionFrom(c), id))
}
