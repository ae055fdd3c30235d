package backend

import (
	"context"
	"net/http"
	"strconv"

	"taskboard/domain"
)

// ReminderService covers /reminders.
type ReminderService service

// List returns the viewer's reminders, optionally filtered by status.
func (s *ReminderService) List(ctx context.Context, status string) ([]domain.Reminder, error) {
	return get[[]domain.Reminder](ctx, s.r, "/reminders", params("status", status))
}

func (s *ReminderService) Today(ctx context.Context) ([]domain.Reminder, error) {
	return get[[]domain.Reminder](ctx, s.r, "/reminders/today", nil)
}

func (s *ReminderService) Create(ctx context.Context, in domain.ReminderInput) (domain.Reminder, error) {
	return call[domain.Reminder](ctx, s.r, http.MethodPost, "/reminders", nil, in)
}

// ForTask schedules a reminder advanceMinutes before the task is due.
func (s *ReminderService) ForTask(ctx context.Context, taskID int64, advanceMinutes int) (domain.Reminder, error) {
	return call[domain.Reminder](ctx, s.r, http.MethodPost, pathf("/tasks/%d/reminder", taskID), params("advanceMinutes", strconv.Itoa(advanceMinutes)), nil)
}

func (s *ReminderService) Snooze(ctx context.Context, reminderID int64, minutes int) (domain.Reminder, error) {
	body := struct {
		Minutes int `json:"minutes"`
	}{minutes}
	return call[domain.Reminder](ctx, s.r, http.MethodPut, pathf("/reminders/%d/snooze", reminderID), nil, body)
}

func (s *ReminderService) Dismiss(ctx context.Context, reminderID int64) (domain.Reminder, error) {
	return call[domain.Reminder](ctx, s.r, http.MethodPut, pathf("/reminders/%d/dismiss", reminderID), nil, nil)
}

func (s *ReminderService) Delete(ctx context.Context, reminderID int64) error {
	return exec(ctx, s.r, http.MethodDelete, pathf("/reminders/%d", reminderID), nil, nil)
}
