package views

import (
	"context"

	"taskboard/backend"
	"taskboard/domain"
	"taskboard/query"
	"taskboard/session"
)

func (s *Service) Notifications(ctx context.Context, sess *session.Session, unreadOnly bool) ([]domain.Notification, error) {
	key := query.Key{Resource: query.Notifications}
	if unreadOnly {
		key.Variant = "unread"
	}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Notification, error) {
		if unreadOnly {
			return api.Notifications.Unread(ctx)
		}
		return api.Notifications.List(ctx)
	})
}

func (s *Service) UnreadCount(ctx context.Context, sess *session.Session) (int64, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.UnreadCount}, func(ctx context.Context, api *backend.API) (int64, error) {
		return api.Notifications.UnreadCount(ctx)
	})
}

// RefreshUnreadCount asks the upstream for the unread count regardless of
// what is cached and caches the answer.
func (s *Service) RefreshUnreadCount(ctx context.Context, sess *session.Session) (int64, error) {
	api := s.client.As(sess)
	n, err := query.Refresh(ctx, s.cache, sess.Subject, query.Key{Resource: query.UnreadCount}, func(ctx context.Context) (int64, error) {
		return api.Notifications.UnreadCount(ctx)
	})
	return n, s.guard(ctx, sess, err)
}

func (s *Service) MarkNotificationRead(ctx context.Context, sess *session.Session, notificationID int64) error {
	return mutateErr(ctx, s, sess, query.NotificationRead, query.Scope{}, func(ctx context.Context, api *backend.API) error {
		return api.Notifications.MarkRead(ctx, notificationID)
	})
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, sess *session.Session) error {
	return mutateErr(ctx, s, sess, query.NotificationReadAll, query.Scope{}, func(ctx context.Context, api *backend.API) error {
		return api.Notifications.MarkAllRead(ctx)
	})
}

func (s *Service) ArchiveNotification(ctx context.Context, sess *session.Session, notificationID int64) error {
	return mutateErr(ctx, s, sess, query.NotificationArchive, query.Scope{}, func(ctx context.Context, api *backend.API) error {
		return api.Notifications.Archive(ctx, notificationID)
	})
}

func (s *Service) DeleteNotification(ctx context.Context, sess *session.Session, notificationID int64) error {
	return mutateErr(ctx, s, sess, query.NotificationDelete, query.Scope{}, func(ctx context.Context, api *backend.API) error {
		return api.Notifications.Delete(ctx, notificationID)
	})
}

func (s *Service) NotificationSettings(ctx context.Context, sess *session.Session) (domain.NotificationSettings, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.NotificationSettings}, func(ctx context.Context, api *backend.API) (domain.NotificationSettings, error) {
		return api.Settings.Get(ctx)
	})
}

func (s *Service) UpdateNotificationSettings(ctx context.Context, sess *session.Session, in domain.NotificationSettings) (domain.NotificationSettings, error) {
	return mutate(ctx, s, sess, query.SettingsUpdate, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.NotificationSettings, error) {
		return api.Settings.Update(ctx, in)
	})
}

func (s *Service) ResetNotificationSettings(ctx context.Context, sess *session.Session) (domain.NotificationSettings, error) {
	return mutate(ctx, s, sess, query.SettingsReset, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.NotificationSettings, error) {
		return api.Settings.Reset(ctx)
	})
}

func (s *Service) PendingInvitations(ctx context.Context, sess *session.Session) ([]domain.Invitation, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Invitations}, func(ctx context.Context, api *backend.API) ([]domain.Invitation, error) {
		return api.Invitations.Pending(ctx)
	})
}

// RespondInvitation accepts or rejects an invitation. Accepting adds a project
// to the viewer's list.
func (s *Service) RespondInvitation(ctx context.Context, sess *session.Session, invitationID int64, reply domain.InvitationReply) (domain.Invitation, error) {
	return mutate(ctx, s, sess, query.InvitationRespond, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Invitation, error) {
		return api.Invitations.Respond(ctx, invitationID, reply)
	})
}

func (s *Service) Subscription(ctx context.Context, sess *session.Session) (domain.Subscription, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Subscription}, func(ctx context.Context, api *backend.API) (domain.Subscription, error) {
		return api.Subscriptions.Current(ctx)
	})
}

func (s *Service) SubscriptionUsage(ctx context.Context, sess *session.Session) (domain.SubscriptionUsage, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.SubscriptionUsage}, func(ctx context.Context, api *backend.API) (domain.SubscriptionUsage, error) {
		return api.Subscriptions.Usage(ctx)
	})
}

func (s *Service) Subscribe(ctx context.Context, sess *session.Session, in domain.SubscriptionRequest) (domain.Subscription, error) {
	return mutate(ctx, s, sess, query.SubscriptionCreate, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Subscription, error) {
		return api.Subscriptions.Create(ctx, in)
	})
}

func (s *Service) ChangePlan(ctx context.Context, sess *session.Session, in domain.SubscriptionRequest) (domain.Subscription, error) {
	return mutate(ctx, s, sess, query.SubscriptionChange, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Subscription, error) {
		return api.Subscriptions.ChangePlan(ctx, in)
	})
}

func (s *Service) CancelSubscription(ctx context.Context, sess *session.Session, in domain.CancelRequest) (domain.Subscription, error) {
	return mutate(ctx, s, sess, query.SubscriptionCancel, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Subscription, error) {
		return api.Subscriptions.Cancel(ctx, in)
	})
}

func (s *Service) ReactivateSubscription(ctx context.Context, sess *session.Session) (domain.Subscription, error) {
	return mutate(ctx, s, sess, query.SubscriptionReactivate, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Subscription, error) {
		return api.Subscriptions.Reactivate(ctx)
	})
}

func (s *Service) Plans(ctx context.Context, sess *session.Session) ([]domain.Plan, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Plans}, func(ctx context.Context, api *backend.API) ([]domain.Plan, error) {
		return api.Plans.List(ctx)
	})
}

func (s *Service) Plan(ctx context.Context, sess *session.Session, planID int64) (domain.Plan, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) (domain.Plan, error) {
		return api.Plans.Get(ctx, planID)
	})
}

func (s *Service) PopularPlans(ctx context.Context, sess *session.Session) ([]domain.Plan, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Plans, Variant: "popular"}, func(ctx context.Context, api *backend.API) ([]domain.Plan, error) {
		return api.Plans.Popular(ctx)
	})
}

func (s *Service) Reminders(ctx context.Context, sess *session.Session, status string) ([]domain.Reminder, error) {
	key := query.Key{Resource: query.Reminders}
	if status != "" {
		key.Variant = "status=" + status
	}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Reminder, error) {
		return api.Reminders.List(ctx, status)
	})
}

func (s *Service) TodayReminders(ctx context.Context, sess *session.Session) ([]domain.Reminder, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Reminders, Variant: "today"}, func(ctx context.Context, api *backend.API) ([]domain.Reminder, error) {
		return api.Reminders.Today(ctx)
	})
}

func (s *Service) CreateReminder(ctx context.Context, sess *session.Session, in domain.ReminderInput) (domain.Reminder, error) {
	return mutate(ctx, s, sess, query.ReminderCreate, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Reminder, error) {
		return api.Reminders.Create(ctx, in)
	})
}

func (s *Service) RemindForTask(ctx context.Context, sess *session.Session, taskID int64, advanceMinutes int) (domain.Reminder, error) {
	return mutate(ctx, s, sess, query.ReminderForTask, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Reminder, error) {
		return api.Reminders.ForTask(ctx, taskID, advanceMinutes)
	})
}

func (s *Service) SnoozeReminder(ctx context.Context, sess *session.Session, reminderID int64, minutes int) (domain.Reminder, error) {
	return mutate(ctx, s, sess, query.ReminderSnooze, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Reminder, error) {
		return api.Reminders.Snooze(ctx, reminderID, minutes)
	})
}

func (s *Service) DismissReminder(ctx context.Context, sess *session.Session, reminderID int64) (domain.Reminder, error) {
	return mutate(ctx, s, sess, query.ReminderDismiss, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.Reminder, error) {
		return api.Reminders.Dismiss(ctx, reminderID)
	})
}

func (s *Service) DeleteReminder(ctx context.Context, sess *session.Session, reminderID int64) error {
	return mutateErr(ctx, s, sess, query.ReminderDelete, query.Scope{}, func(ctx context.Context, api *backend.API) error {
		return api.Reminders.Delete(ctx, reminderID)
	})
}

func (s *Service) SubscriptionDashboard(ctx context.Context, sess *session.Session) (domain.Report, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Reports, Variant: "dashboard"}, func(ctx context.Context, api *backend.API) (domain.Report, error) {
		return api.Reports.Dashboard(ctx)
	})
}

func (s *Service) SubscriptionGrowth(ctx context.Context, sess *session.Session, startDate, endDate string) (domain.Report, error) {
	key := query.Key{Resource: query.Reports, Variant: "growth=" + startDate + ".." + endDate}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) (domain.Report, error) {
		return api.Reports.Growth(ctx, startDate, endDate)
	})
}

func (s *Service) Users(ctx context.Context, sess *session.Session) ([]domain.User, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Users}, func(ctx context.Context, api *backend.API) ([]domain.User, error) {
		return api.Users.List(ctx)
	})
}

func (s *Service) User(ctx context.Context, sess *session.Session, userID int64) (domain.User, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) (domain.User, error) {
		return api.Users.Get(ctx, userID)
	})
}

func (s *Service) SearchUsers(ctx context.Context, sess *session.Session, keyword string) ([]domain.User, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) ([]domain.User, error) {
		return api.Users.Search(ctx, keyword)
	})
}

// UpdateUser updates a profile. When the viewer updates their own profile the
// stored session picks up the new copy.
func (s *Service) UpdateUser(ctx context.Context, sess *session.Session, userID int64, in domain.UserUpdate) (domain.User, error) {
	u, err := mutate(ctx, s, sess, query.UserUpdate, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.User, error) {
		return api.Users.Update(ctx, userID, in)
	})
	if err != nil || userID != sess.ViewerID() {
		return u, err
	}
	sess.User = u
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.log.WithError(err).WithField("subject", sess.Subject).Warn("save refreshed session failed")
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, sess *session.Session, userID int64, in domain.PasswordChange) error {
	return mutateErr(ctx, s, sess, query.UserPasswordChange, query.Scope{}, func(ctx context.Context, api *backend.API) error {
		return api.Users.ChangePassword(ctx, userID, in)
	})
}

func (s *Service) AssignRoles(ctx context.Context, sess *session.Session, userID int64, roles []string) (domain.User, error) {
	return mutate(ctx, s, sess, query.UserRolesAssign, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.User, error) {
		return api.Users.SetRoles(ctx, userID, roles)
	})
}

func (s *Service) DeleteUser(ctx context.Context, sess *session.Session, userID int64) error {
	return mutateErr(ctx, s, sess, query.UserDelete, query.Scope{}, func(ctx context.Context, api *backend.API) error {
		return api.Users.Delete(ctx, userID)
	})
}

func (s *Service) ActivateUser(ctx context.Context, sess *session.Session, userID int64) (domain.User, error) {
	return mutate(ctx, s, sess, query.UserActivate, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.User, error) {
		return api.Users.Activate(ctx, userID)
	})
}

func (s *Service) Activity(ctx context.Context, sess *session.Session, projectID int64) ([]domain.ActivityEntry, error) {
	key := query.Key{Resource: query.Activity, Scope: projectScope(projectID)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.ActivityEntry, error) {
		return api.Activity.List(ctx, projectID)
	})
}

func (s *Service) ActivityTimeline(ctx context.Context, sess *session.Session, projectID int64) ([]domain.ActivityEntry, error) {
	key := query.Key{Resource: query.Activity, Scope: projectScope(projectID), Variant: "timeline"}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.ActivityEntry, error) {
		return api.Activity.Timeline(ctx, projectID)
	})
}

func (s *Service) ActivityStats(ctx context.Context, sess *session.Session, projectID int64) (domain.Report, error) {
	key := query.Key{Resource: query.Activity, Scope: projectScope(projectID), Variant: "stats"}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) (domain.Report, error) {
		return api.Activity.Stats(ctx, projectID)
	})
}

func (s *Service) UserActivity(ctx context.Context, sess *session.Session, projectID, userID int64) ([]domain.ActivityEntry, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) ([]domain.ActivityEntry, error) {
		return api.Activity.ByUser(ctx, projectID, userID)
	})
}

func (s *Service) Exports(ctx context.Context, sess *session.Session) ([]domain.ExportJob, error) {
	return fetch(ctx, s, sess, query.Key{Resource: query.Exports}, func(ctx context.Context, api *backend.API) ([]domain.ExportJob, error) {
		return api.Exports.Mine(ctx)
	})
}

// ExportStatus is always read from the upstream since jobs progress on their
// own.
func (s *Service) ExportStatus(ctx context.Context, sess *session.Session, jobID int64) (domain.ExportJob, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) (domain.ExportJob, error) {
		return api.Exports.Get(ctx, jobID)
	})
}

func (s *Service) ExportProject(ctx context.Context, sess *session.Session, projectID int64, in domain.ExportRequest) (domain.ExportJob, error) {
	return mutate(ctx, s, sess, query.ExportProject, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.ExportJob, error) {
		return api.Exports.Project(ctx, projectID, in)
	})
}

func (s *Service) ExportUserData(ctx context.Context, sess *session.Session, format string) (domain.ExportJob, error) {
	return mutate(ctx, s, sess, query.ExportUserData, query.Scope{}, func(ctx context.Context, api *backend.API) (domain.ExportJob, error) {
		return api.Exports.UserData(ctx, format)
	})
}

func (s *Service) DownloadExport(ctx context.Context, sess *session.Session, jobID int64) (Download, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) (Download, error) {
		body, contentType, err := api.Exports.Download(ctx, jobID)
		return Download{Body: body, ContentType: contentType}, err
	})
}

func (s *Service) CancelExport(ctx context.Context, sess *session.Session, jobID int64) error {
	return mutateErr(ctx, s, sess, query.ExportDelete, query.Scope{}, func(ctx context.Context, api *backend.API) error {
		return api.Exports.Delete(ctx, jobID)
	})
}
