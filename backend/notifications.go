package backend

import (
	"context"
	"net/http"

	"taskboard/domain"
)

// NotificationService covers /notifications.
type NotificationService service

func (s *NotificationService) List(ctx context.Context) ([]domain.Notification, error) {
	return get[[]domain.Notification](ctx, s.r, "/notifications", nil)
}

func (s *NotificationService) Unread(ctx context.Context) ([]domain.Notification, error) {
	return get[[]domain.Notification](ctx, s.r, "/notifications", params("unread", "true"))
}

// UnreadCount returns the number of unread notifications. The upstream
// answers with a bare JSON number.
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	return get[int64](ctx, s.r, "/notifications/unread/count", nil)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID int64) error {
	return exec(ctx, s.r, http.MethodPut, pathf("/notifications/%d/read", notificationID), nil, nil)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return exec(ctx, s.r, http.MethodPut, "/notifications/mark-all-read", nil, nil)
}

func (s *NotificationService) Archive(ctx context.Context, notificationID int64) error {
	return exec(ctx, s.r, http.MethodPut, pathf("/notifications/%d/archive", notificationID), nil, nil)
}

func (s *NotificationService) Delete(ctx context.Context, notificationID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/notifications/%d", notificationID), nil, nil)
}

// SettingsService covers /notifications/settings.
type SettingsService service

func (s *SettingsService) Get(ctx context.Context) (domain.NotificationSettings, error) {
	return get[domain.NotificationSettings](ctx, s.r, "/notifications/settings", nil)
}

func (s *SettingsService) Update(ctx context.Context, in domain.NotificationSettings) (domain.NotificationSettings, error) {
	return call[domain.NotificationSettings](ctx, s.r, http.MethodPut, "/notifications/settings", nil, in)
}

// Reset restores the upstream defaults.
func (s *SettingsService) Reset(ctx context.Context) (domain.NotificationSettings, error) {
	return call[domain.NotificationSettings](ctx, s.r, http.MethodPost, "/notifications/settings/reset", nil, nil)
}

// InvitationService covers /invitations.
type InvitationService service

func (s *InvitationService) Pending(ctx context.Context) ([]domain.Invitation, error) {
	return get[[]domain.Invitation](ctx, s.r, "/invitations/pending", nil)
}

func (s *InvitationService) Respond(ctx context.Context, invitationID int64, reply domain.InvitationReply) (domain.Invitation, error) {
	return call[domain.Invitation](ctx, s.r, http.MethodPut, pathf("/invitations/%d/respond", invitationID), nil, reply)
}
